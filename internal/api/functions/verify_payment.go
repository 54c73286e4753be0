package functions

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/app/rewards"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Verifier interface {
	Verify(ctx context.Context, sessionID, transactionID string) (rewards.Result, error)
}

type Handler struct {
	issuer Verifier
}

func NewHandler(issuer Verifier) *Handler {
	return &Handler{issuer: issuer}
}

type verifyPaymentRequest struct {
	SessionID     string `json:"session_id"`
	TransactionID string `json:"transaction_id"`
}

// POST /functions/v1/verify-payment
func (h *Handler) VerifyPayment(c *gin.Context) {
	var body verifyPaymentRequest
	// A missing or malformed body is the same client error as missing ids.
	if err := c.ShouldBindJSON(&body); err != nil {
		log.WithError(err).Debug("verify-payment body could not be decoded")
	}

	res, err := h.issuer.Verify(c.Request.Context(), body.SessionID, body.TransactionID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, rewards.ErrMissingParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID or transaction ID"})
	case errors.Is(err, rewards.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, rewards.ErrSessionMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment session does not match transaction"})
	default:
		log.WithError(err).
			WithField("transaction_id", body.TransactionID).
			Error("verify-payment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
