package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traveldesk/internal/models"
)

// AdminOnly rejects requests whose actor is not an administrator. Must be
// mounted after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ActorKey)
		if !exists {
			abortUnauthenticated(c, "Authentication required")
			return
		}

		actor, ok := value.(*models.User)
		if !ok || !actor.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Only administrators can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
