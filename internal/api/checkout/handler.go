package checkout

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/app/checkout"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Creator interface {
	Create(ctx context.Context, username string, req checkout.Request) (*checkout.Session, error)
}

type Handler struct {
	checkout Creator
}

func NewHandler(c Creator) *Handler {
	return &Handler{checkout: c}
}

// POST /checkout/:username
func (h *Handler) Create(c *gin.Context) {
	var body checkout.Request
	if err := c.ShouldBindJSON(&body); err != nil || body.PackageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid package_id"})
		return
	}

	session, err := h.checkout.Create(c.Request.Context(), c.Param("username"), body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, session)
	case errors.Is(err, checkout.ErrCreatorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found"})
	case errors.Is(err, checkout.ErrPackageUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": "Package not available"})
	case errors.Is(err, checkout.ErrPaymentsUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
	default:
		log.WithError(err).WithField("username", c.Param("username")).Error("checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
	}
}
