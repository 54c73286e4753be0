package media

import (
	"context"
	"errors"
	"io"
	"net/http"

	"mimo-api/internal/app/http/middleware"
	"mimo-api/internal/domain/media"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MaxUploadSize bounds one media upload.
const MaxUploadSize = 50 << 20

type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type Handler struct {
	store Uploader
}

// NewHandler accepts a nil store; uploads then answer 503.
func NewHandler(store Uploader) *Handler {
	return &Handler{store: store}
}

type uploadResponse struct {
	Type media.Type `json:"type"`
	URL  string     `json:"url"`
}

// POST /media (multipart, field "file")
func (h *Handler) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media storage not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fh.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	kind, ok := media.TypeFromMIME(mt.String())
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only image, video or audio files are accepted", "mime": mt.String()})
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read file"})
		return
	}

	userID := middleware.CurrentUser(c)
	key := "creators/" + userID + "/" + uuid.NewString() + mt.Extension()
	url, err := h.store.Put(c.Request.Context(), key, f, fh.Size, mt.String())
	if err != nil {
		log.WithError(err).WithField("identity", userID).Error("media upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store file"})
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{Type: kind, URL: url})
}
