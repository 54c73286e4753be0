package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mimo-api/internal/app/mirror"
	"mimo-api/internal/domain/catalog"

	"github.com/sirupsen/logrus"
)

type Store interface {
	FindCreator(ctx context.Context, id string) (*catalog.Creator, error)
	CreatorByUsername(ctx context.Context, username string) (*catalog.Creator, error)
	// UpsertCreator inserts or fully updates the creator row. A username
	// owned by another creator gives catalog.ErrConflict.
	UpsertCreator(ctx context.Context, c *catalog.Creator) error
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrCreatorNotFound  = errors.New("creator not found")
)

// Service keeps the creator profile in the catalog store, mirrored locally
// the same way packages are.
type Service struct {
	store   Store
	mirror  *mirror.Mirror
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewService(store Store, m *mirror.Mirror, timeout time.Duration, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, mirror: m, timeout: timeout, log: log}
}

func (s *Service) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// Load returns the caller's profile, remote first. When the store fails the
// mirrored copy is used. ok is false when neither has one.
func (s *Service) Load(ctx context.Context, identity string) (*catalog.Creator, bool) {
	if identity == "" {
		return nil, false
	}
	log := s.log.WithField("identity", identity)

	rctx, cancel := s.remoteContext(ctx)
	c, err := s.store.FindCreator(rctx, identity)
	cancel()
	switch {
	case err == nil:
		s.mirror.SetCreator(ctx, identity, *c)
		return c, true
	case errors.Is(err, catalog.ErrNotFound):
		log.Debug("no remote profile, using local mirror")
	default:
		log.WithError(err).Warn("failed to load profile remotely, using local mirror")
	}
	return s.mirror.Creator(ctx, identity)
}

// Save cleans and validates the profile, writes it remotely and mirrors it.
// Validation errors and username conflicts are returned without touching the
// mirror; other store failures still mirror the profile and return the error.
func (s *Service) Save(ctx context.Context, identity string, in catalog.Creator) (*catalog.Creator, error) {
	if identity == "" {
		return nil, ErrNotAuthenticated
	}
	c := in.Sanitized()
	c.ID = identity
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rctx, cancel := s.remoteContext(ctx)
	err := s.store.UpsertCreator(rctx, &c)
	cancel()
	if errors.Is(err, catalog.ErrConflict) {
		return nil, ErrUsernameTaken
	}

	s.mirror.SetCreator(context.WithoutCancel(ctx), identity, c)
	if err != nil {
		return &c, fmt.Errorf("failed to save profile: %w", err)
	}
	return &c, nil
}

// Public resolves a creator page header by username.
func (s *Service) Public(ctx context.Context, username string) (*catalog.Creator, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrCreatorNotFound
	}
	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	c, err := s.store.CreatorByUsername(rctx, username)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	return c, nil
}
