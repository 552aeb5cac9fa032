package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	checkInHandler *CheckInHandler,
	assignmentHandler *AssignmentHandler,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		// --- Check-in submission engine ---
		checkInGroup := apiV1.Group("/check-ins")
		{
			// GET /api/v1/check-ins/{reference} - resolve a real or virtual reference
			checkInGroup.GET("/:reference", checkInHandler.GetCheckIn)
			// POST /api/v1/check-ins/{reference}/submissions - submit, exactly once
			checkInGroup.POST("/:reference/submissions", checkInHandler.SubmitCheckIn)
		}

		// --- Scheduling and review glue ---
		// POST /api/v1/assignments - create the week-1 assignment of a schedule
		apiV1.POST("/assignments", assignmentHandler.CreateAssignment)
		// GET /api/v1/clients/{clientId}/assignments - coach review listing
		apiV1.GET("/clients/:clientId/assignments", assignmentHandler.GetClientAssignments)
		// GET /api/v1/responses/{id} - fetch one submitted response
		apiV1.GET("/responses/:id", assignmentHandler.GetResponse)
	}
}
