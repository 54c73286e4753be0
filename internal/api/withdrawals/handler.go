package withdrawals

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/app/earnings"
	"mimo-api/internal/app/http/middleware"
	"mimo-api/internal/domain/billing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Earnings interface {
	Balance(ctx context.Context, creatorID string) (billing.Balance, error)
	Withdrawals(ctx context.Context, creatorID string) ([]billing.Withdrawal, error)
	Request(ctx context.Context, creatorID string, amount float64, pixKey string) (*billing.Withdrawal, error)
}

type Handler struct {
	earnings Earnings
}

func NewHandler(e Earnings) *Handler {
	return &Handler{earnings: e}
}

// GET /balance
func (h *Handler) Balance(c *gin.Context) {
	b, err := h.earnings.Balance(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		log.WithError(err).Error("failed to compute balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load balance"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /withdrawals
func (h *Handler) List(c *gin.Context) {
	ws, err := h.earnings.Withdrawals(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		log.WithError(err).Error("failed to list withdrawals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": ws})
}

type createRequest struct {
	Amount float64 `json:"amount"`
	PixKey string  `json:"pix_key"`
}

// POST /withdrawals
func (h *Handler) Create(c *gin.Context) {
	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal payload"})
		return
	}

	w, err := h.earnings.Request(c.Request.Context(), middleware.CurrentUser(c), body.Amount, body.PixKey)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, w)
	case errors.Is(err, earnings.ErrInvalidAmount), errors.Is(err, earnings.ErrMissingPixKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient balance"})
	default:
		log.WithError(err).Error("failed to create withdrawal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
	}
}
