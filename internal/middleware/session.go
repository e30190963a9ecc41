package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/examdesk/complaints-api/internal/models"
	"github.com/examdesk/complaints-api/internal/session"
	"github.com/examdesk/complaints-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved identity.
const ContextIdentityKey = "currentIdentity"

// Session authenticates requests by handing every configured credential
// carrier to the resolver. Cookie values are passed raw; the resolver owns
// the URL-decode step. Handlers never read cookies directly.
func Session(resolver *session.Resolver, carrierNames []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		carriers := make([]session.Carrier, 0, len(carrierNames))
		for _, name := range carrierNames {
			if cookie, err := c.Request.Cookie(name); err == nil && cookie != nil {
				carriers = append(carriers, session.Carrier{Name: name, Value: cookie.Value})
			}
		}

		identity, err := resolver.Resolve(carriers)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// Identity returns the resolved identity for the request, if any.
func Identity(c *gin.Context) *models.Identity {
	if v, exists := c.Get(ContextIdentityKey); exists {
		if identity, ok := v.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}
