package api

import (
	"github.com/gin-gonic/gin"
)

// abortWithError sends a standardized JSON error response and stops the chain.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": message})
}
