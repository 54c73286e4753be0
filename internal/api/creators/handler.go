package creators

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/app/http/middleware"
	"mimo-api/internal/app/profile"
	"mimo-api/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Profiles interface {
	Load(ctx context.Context, identity string) (*catalog.Creator, bool)
	Save(ctx context.Context, identity string, c catalog.Creator) (*catalog.Creator, error)
	Public(ctx context.Context, username string) (*catalog.Creator, error)
}

type Handler struct {
	profiles Profiles
}

func NewHandler(p Profiles) *Handler {
	return &Handler{profiles: p}
}

// GET /creators/:username
func (h *Handler) Public(c *gin.Context) {
	creator, err := h.profiles.Public(c.Request.Context(), c.Param("username"))
	if errors.Is(err, profile.ErrCreatorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found"})
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to load creator page")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load creator"})
		return
	}
	c.JSON(http.StatusOK, creator)
}

// GET /profile
func (h *Handler) Me(c *gin.Context) {
	creator, ok := h.profiles.Load(c.Request.Context(), middleware.CurrentUser(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, creator)
}

// PUT /profile. A profile that only reached the local mirror is still
// returned, with synced=false.
func (h *Handler) Update(c *gin.Context) {
	var body catalog.Creator
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload"})
		return
	}

	creator, err := h.profiles.Save(c.Request.Context(), middleware.CurrentUser(c), body)
	switch {
	case errors.Is(err, catalog.ErrInvalidCreator):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, profile.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	case errors.Is(err, profile.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	case err != nil && creator == nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	if err != nil {
		log.WithError(err).WithField("identity", middleware.CurrentUser(c)).Warn("profile kept locally only")
	}
	c.JSON(http.StatusOK, gin.H{"profile": creator, "synced": err == nil})
}
