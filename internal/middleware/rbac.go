package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
	"github.com/examdesk/complaints-api/pkg/response"
)

// RequireRoles gates a route to the listed identity roles. The session
// middleware must run first.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		identity := Identity(c)
		if identity == nil {
			response.Error(c, appErrors.ErrNotAuthenticated)
			c.Abort()
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
