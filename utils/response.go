package utils

import "github.com/gin-gonic/gin"

// Error writes the uniform error body. Callers pass a generic message for 5xx
// statuses; the specific cause stays in the server log.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}
