package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminSubjectKey holds the authenticated admin username in the gin context
const AdminSubjectKey = "adminSubject"

// TokenValidator validates an access token and returns its subject
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AdminAuth requires a valid admin bearer token
func AdminAuth(validator TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}

		subject, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug("Invalid admin token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AdminSubjectKey, subject)
		c.Next()
	}
}
