package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured success response. The success flag mirrors
// the callable-operation contract consumed by the web clients.
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response with a machine-readable
// category and a human-readable message.
func JSONError(c *gin.Context, status int, category string, err error, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"code":    category,
		"message": message,
		"error":   err.Error(),
	})
}
