package middleware

import (
	"github.com/CareTrackHQ/caretrack_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is a private type for context keys defined in this package.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	actorCtxKey  = contextKey("actor")
)

// GetActorFromContext retrieves the authenticated actor from the Gin context.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	if v, exists := c.Get(string(actorCtxKey)); exists {
		if actor, ok := v.(domain.Actor); ok {
			return actor, true
		}
	}
	// check in the request context as well
	if v := c.Request.Context().Value(actorCtxKey); v != nil {
		if actor, ok := v.(domain.Actor); ok {
			return actor, true
		}
	}
	return domain.Actor{}, false
}
