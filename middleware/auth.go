package middleware

import (
	"net/http"
	"strings"

	"campuspay/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthStudentMiddleware validates the bearer token issued by the
// platform's auth service and exposes the student id on the context.
func JWTAuthStudentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		studentID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || studentID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set("studentID", studentID)
		c.Next()
	}
}
