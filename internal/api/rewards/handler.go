package rewards

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/app/rewards"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Redeemer interface {
	Redeem(ctx context.Context, token string) (*rewards.Redemption, error)
}

type Handler struct {
	rewards Redeemer
}

func NewHandler(r Redeemer) *Handler {
	return &Handler{rewards: r}
}

// GET /rewards/:token opens the content a fan paid for.
func (h *Handler) Redeem(c *gin.Context) {
	r, err := h.rewards.Redeem(c.Request.Context(), c.Param("token"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, r)
	case errors.Is(err, rewards.ErrRewardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
	case errors.Is(err, rewards.ErrRewardExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Reward access has expired"})
	default:
		log.WithError(err).Error("failed to redeem reward")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reward"})
	}
}
