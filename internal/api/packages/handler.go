package packages

import (
	"context"
	"errors"
	"net/http"

	"mimo-api/internal/app/http/middleware"
	syncer "mimo-api/internal/app/packages"
	"mimo-api/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Synchronizer interface {
	Load(ctx context.Context, identity string) []catalog.Package
	Save(ctx context.Context, identity string, pkgs []catalog.Package) syncer.SaveResult
	Delete(ctx context.Context, identity string, id catalog.ID) error
	PackagesByUsername(ctx context.Context, username, caller string) ([]catalog.Package, error)
}

type Handler struct {
	sync Synchronizer
}

func NewHandler(s Synchronizer) *Handler {
	return &Handler{sync: s}
}

// GET /packages
func (h *Handler) List(c *gin.Context) {
	pkgs := h.sync.Load(c.Request.Context(), middleware.CurrentUser(c))
	c.JSON(http.StatusOK, gin.H{"packages": pkgs})
}

// PUT /packages replaces the caller's whole collection. The body is the
// package array; the response carries the same array with server ids filled
// in plus the per-package outcome.
func (h *Handler) Save(c *gin.Context) {
	var body []catalog.Package
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid packages payload"})
		return
	}
	for i := range body {
		body[i] = body[i].Sanitized()
	}

	res := h.sync.Save(c.Request.Context(), middleware.CurrentUser(c), body)
	if len(res.Failed) > 0 {
		log.WithField("failed", len(res.Failed)).
			WithField("ok", res.OK).
			Warn("packages saved with failures")
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /packages/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil || id.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid package id"})
		return
	}
	err = h.sync.Delete(c.Request.Context(), middleware.CurrentUser(c), id)
	if errors.Is(err, syncer.ErrNotAuthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete package"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /creators/:username/packages
func (h *Handler) ByUsername(c *gin.Context) {
	pkgs, err := h.sync.PackagesByUsername(c.Request.Context(), c.Param("username"), middleware.CurrentUser(c))
	if err != nil {
		log.WithError(err).WithField("username", c.Param("username")).Error("failed to list public packages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": pkgs})
}
