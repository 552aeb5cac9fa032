package api

import (
	"errors"
	"net/http"
	"time"

	"coachsync/wellness-app/internal/domain"
	"coachsync/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// --- DTOs ---

type CheckInWindowRequest struct {
	Enabled   bool   `json:"enabled"`
	StartDay  string `json:"startDay"`
	StartTime string `json:"startTime"`
	EndDay    string `json:"endDay"`
	EndTime   string `json:"endTime"`
}

type CreateAssignmentRequest struct {
	ClientID      string               `json:"clientId" binding:"required"`
	CoachID       string               `json:"coachId" binding:"required"`
	FormID        string               `json:"formId" binding:"required"`
	TotalWeeks    int                  `json:"totalWeeks" binding:"omitempty,min=1"`
	DueDate       time.Time            `json:"dueDate" binding:"required"`
	CheckInWindow CheckInWindowRequest `json:"checkInWindow"`
}

// CreateAssignment creates the week-1 assignment of a recurring schedule.
// Later weeks are never created here; they materialize on first submission.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}
	coachID, err := primitive.ObjectIDFromHex(req.CoachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coach ID format.")
		return
	}
	formID, err := primitive.ObjectIDFromHex(req.FormID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid form ID format.")
		return
	}

	assignment, err := h.assignmentService.CreateAssignment(c.Request.Context(), service.CreateAssignmentInput{
		ClientID:   clientID,
		CoachID:    coachID,
		FormID:     formID,
		TotalWeeks: req.TotalWeeks,
		DueDate:    req.DueDate,
		CheckInWindow: domain.CheckInWindow{
			Enabled:   req.CheckInWindow.Enabled,
			StartDay:  req.CheckInWindow.StartDay,
			StartTime: req.CheckInWindow.StartTime,
			EndDay:    req.CheckInWindow.EndDay,
			EndTime:   req.CheckInWindow.EndTime,
		},
	})
	if err != nil {
		if errors.Is(err, service.ErrAssignmentAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create assignment.")
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetClientAssignments lists a client's assignments, newest due date first.
func (h *AssignmentHandler) GetClientAssignments(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	assignments, err := h.assignmentService.GetClientAssignments(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}
	if assignments == nil {
		c.JSON(http.StatusOK, []domain.Assignment{})
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// GetResponse fetches one submitted check-in response.
func (h *AssignmentHandler) GetResponse(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid response ID format.")
		return
	}

	response, err := h.assignmentService.GetResponse(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve response.")
		return
	}
	c.JSON(http.StatusOK, response)
}
