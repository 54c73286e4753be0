package middleware

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const ContextCreator = "creator"

type CreatorLookup interface {
	FindCreator(ctx context.Context, id string) (*catalog.Creator, error)
}

// RequireCreator only lets through callers that own a creator profile. It
// must run after AuthMiddleware.
func RequireCreator(store CreatorLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUser(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
			return
		}

		creator, err := store.FindCreator(c.Request.Context(), userID)
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Create your creator profile first",
			})
			return
		}
		if err != nil {
			log.WithError(err).WithField("identity", userID).Error("failed to load creator")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load creator profile"})
			return
		}

		c.Set(ContextCreator, creator)
		c.Next()
	}
}
