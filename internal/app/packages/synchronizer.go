package packages

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

// Synchronizer reconciles a creator's packages between the remote catalog
// store and the local mirror. The remote store is the source of truth when
// it answers; the mirror covers for it otherwise and always ends up holding
// what was last returned to the caller.
type Synchronizer struct {
	store   Store
	mirror  *mirror.Mirror
	timeout time.Duration
	now     func() time.Time
	log     logrus.FieldLogger
}

type Option func(*Synchronizer)

// WithTimeout bounds the remote part of Load and Save. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Synchronizer) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Synchronizer) { s.log = l }
}

func New(store Store, m *mirror.Mirror, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:  store,
		mirror: m,
		now:    time.Now,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Synchronizer) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// Load returns the identity's packages. An empty identity gets an empty
// collection. Remote errors and empty remote results both fall back to the
// mirror, so packages that only ever reached the mirror are not lost.
func (s *Synchronizer) Load(ctx context.Context, identity string) []catalog.Package {
	if identity == "" {
		return []catalog.Package{}
	}
	log := s.log.WithField("identity", identity)

	rctx, cancel := s.remoteContext(ctx)
	rows, err := s.store.ListPackages(rctx, identity)
	cancel()
	if err != nil {
		log.WithError(err).Warn("failed to load packages remotely, using local mirror")
		return s.mirror.Packages(ctx, identity)
	}
	if len(rows) == 0 {
		log.Debug("no remote packages, using local mirror")
		return s.mirror.Packages(ctx, identity)
	}

	pkgs := make([]catalog.Package, 0, len(rows))
	for _, r := range rows {
		pkgs = append(pkgs, catalog.PackageFromRow(r))
	}
	s.mirror.SetPackages(ctx, identity, pkgs)
	return pkgs
}

// Failure is a package that could not be written remotely. It still reaches
// the mirror.
type Failure struct {
	ID     catalog.ID `json:"id"`
	Reason string     `json:"reason"`
	Err    error      `json:"-"`
}

type SaveResult struct {
	// OK is false when nothing was attempted (no identity) or when the remote
	// phase was aborted as a whole (timeout, cancellation, creator setup).
	// Individual package failures do not clear it; see Failed.
	OK bool `json:"ok"`
	// Packages is the saved collection with every id that was assigned by the
	// remote store filled in. It is exactly what the mirror now holds.
	Packages  []catalog.Package `json:"packages"`
	Succeeded []catalog.ID      `json:"succeeded"`
	Failed    []Failure         `json:"failed"`
}

// Complete reports whether every package was written remotely.
func (r SaveResult) Complete() bool { return r.OK && len(r.Failed) == 0 }

// Save upserts every package remotely, one at a time in input order, then
// writes the resulting collection to the mirror whatever the remote outcome.
// A failing package is recorded and does not stop the others.
func (s *Synchronizer) Save(ctx context.Context, identity string, pkgs []catalog.Package) SaveResult {
	out := SaveResult{
		Packages:  clonePackages(pkgs),
		Succeeded: []catalog.ID{},
		Failed:    []Failure{},
	}
	if identity == "" {
		return out
	}
	log := s.log.WithField("identity", identity)

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	out.OK = true
	if err := s.store.EnsureCreator(rctx, catalog.PlaceholderCreator(identity)); err != nil {
		log.WithError(err).Error("failed to ensure creator, keeping packages locally")
		out.OK = false
		for _, p := range out.Packages {
			out.Failed = append(out.Failed, failure(p.ID, err))
		}
	} else {
		for i := range out.Packages {
			p := &out.Packages[i]
			if err := rctx.Err(); err != nil {
				out.OK = false
				out.Failed = append(out.Failed, failure(p.ID, err))
				continue
			}
			if err := s.savePackage(rctx, identity, p); err != nil {
				log.WithError(err).WithField("package_id", p.ID.String()).Warn("failed to save package")
				out.Failed = append(out.Failed, failure(p.ID, err))
				continue
			}
			out.Succeeded = append(out.Succeeded, p.ID)
		}
		if rctx.Err() != nil {
			out.OK = false
		}
	}

	s.mirror.SetPackages(context.WithoutCancel(ctx), identity, out.Packages)
	return out
}

func failure(id catalog.ID, err error) Failure {
	return Failure{ID: id, Reason: err.Error(), Err: err}
}

func (s *Synchronizer) savePackage(ctx context.Context, creatorID string, p *catalog.Package) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.ID.IsRemote() {
		_, err := s.store.FindPackage(ctx, creatorID, p.ID.Remote())
		switch {
		case err == nil:
			return s.updatePackage(ctx, p)
		case errors.Is(err, catalog.ErrNotFound):
			// Deleted remotely since it was synced: store it again.
		default:
			return fmt.Errorf("lookup package: %w", err)
		}
	}
	return s.insertPackage(ctx, creatorID, p)
}

func (s *Synchronizer) updatePackage(ctx context.Context, p *catalog.Package) error {
	id := p.ID.Remote()
	err := s.store.UpdatePackage(ctx, id, PackageFields{
		Title:       p.Title,
		Price:       p.Price,
		Highlighted: p.Highlighted,
		IsHidden:    p.IsHidden,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	if err := s.store.ReplaceFeatures(ctx, id, p.Features); err != nil {
		return fmt.Errorf("replace features: %w", err)
	}

	keep := make([]string, 0, len(p.Media))
	for i := range p.Media {
		m := &p.Media[i]
		if err := s.upsertMedia(ctx, id, m); err != nil {
			return err
		}
		keep = append(keep, m.ID.Remote())
	}
	if err := s.store.PruneMedia(ctx, id, keep); err != nil {
		return fmt.Errorf("prune media: %w", err)
	}
	return nil
}

func (s *Synchronizer) upsertMedia(ctx context.Context, packageID string, m *catalog.MediaItem) error {
	if m.ID.IsRemote() {
		_, err := s.store.FindMedia(ctx, packageID, m.ID.Remote())
		switch {
		case err == nil:
			row := mediaRow(packageID, *m)
			row.ID = m.ID.Remote()
			if err := s.store.UpdateMedia(ctx, row); err != nil {
				return fmt.Errorf("update media %s: %w", m.ID, err)
			}
			return nil
		case errors.Is(err, catalog.ErrNotFound):
		default:
			return fmt.Errorf("lookup media %s: %w", m.ID, err)
		}
	}
	return s.insertMedia(ctx, packageID, m)
}

// insertPackage creates the row and its children. The package id is replaced
// as soon as the row exists, so a later child failure never leaves the old
// local id behind.
func (s *Synchronizer) insertPackage(ctx context.Context, creatorID string, p *catalog.Package) error {
	row := catalog.PackageRow{
		CreatorID:   creatorID,
		Title:       p.Title,
		Price:       p.Price,
		Highlighted: p.Highlighted,
		IsHidden:    p.IsHidden,
	}
	if err := s.store.InsertPackage(ctx, &row); err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	if row.ID == "" {
		return errors.New("insert package: store returned no id")
	}
	p.ID = catalog.RemoteID(row.ID)

	if len(p.Features) > 0 {
		if err := s.store.ReplaceFeatures(ctx, row.ID, p.Features); err != nil {
			return fmt.Errorf("insert features: %w", err)
		}
	}
	for i := range p.Media {
		if err := s.insertMedia(ctx, row.ID, &p.Media[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) insertMedia(ctx context.Context, packageID string, m *catalog.MediaItem) error {
	row := mediaRow(packageID, *m)
	if err := s.store.InsertMedia(ctx, &row); err != nil {
		return fmt.Errorf("insert media %s: %w", m.ID, err)
	}
	if row.ID == "" {
		return fmt.Errorf("insert media %s: store returned no id", m.ID)
	}
	m.ID = catalog.RemoteID(row.ID)
	return nil
}

func mediaRow(packageID string, m catalog.MediaItem) catalog.MediaRow {
	return catalog.MediaRow{
		PackageID: packageID,
		Type:      m.Type,
		URL:       m.URL,
		Caption:   m.Caption,
		IsPreview: m.IsPreview,
	}
}

// Delete removes one package. Remote packages are deleted remotely first
// (media and features cascade); the mirror drops it either way.
func (s *Synchronizer) Delete(ctx context.Context, identity string, id catalog.ID) error {
	if identity == "" {
		return ErrNotAuthenticated
	}
	if id.IsRemote() {
		rctx, cancel := s.remoteContext(ctx)
		err := s.store.DeletePackage(rctx, identity, id.Remote())
		cancel()
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("delete package: %w", err)
		}
	}

	cached := s.mirror.Packages(ctx, identity)
	kept := make([]catalog.Package, 0, len(cached))
	for _, p := range cached {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.mirror.SetPackages(ctx, identity, kept)
	return nil
}

var ErrNotAuthenticated = errors.New("not authenticated")

// PackagesByUsername is the public listing of a creator page. Hidden
// packages and non-preview media are left out, except when the caller owns
// the page: then it is the caller's own Load, so an unpublished page still
// previews. Unknown usernames give an empty list.
func (s *Synchronizer) PackagesByUsername(ctx context.Context, username, caller string) ([]catalog.Package, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	creator, err := s.store.CreatorByUsername(rctx, username)
	if err != nil {
		if s.ownsCachedUsername(ctx, caller, username) {
			return s.Load(ctx, caller), nil
		}
		if errors.Is(err, catalog.ErrNotFound) {
			return []catalog.Package{}, nil
		}
		return nil, fmt.Errorf("lookup creator: %w", err)
	}

	if caller != "" && creator.ID == caller {
		return s.Load(ctx, caller), nil
	}

	rows, err := s.store.PublicPackages(rctx, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("list public packages: %w", err)
	}
	out := make([]catalog.Package, 0, len(rows))
	for _, r := range rows {
		if r.IsHidden {
			continue
		}
		out = append(out, catalog.PackageFromRow(r).Previews())
	}
	return out, nil
}

func (s *Synchronizer) ownsCachedUsername(ctx context.Context, caller, username string) bool {
	if caller == "" {
		return false
	}
	c, ok := s.mirror.Creator(ctx, caller)
	return ok && strings.EqualFold(c.Username, username)
}

func clonePackages(in []catalog.Package) []catalog.Package {
	out := make([]catalog.Package, len(in))
	for i, p := range in {
		p.Features = append([]string(nil), p.Features...)
		if p.Features == nil {
			p.Features = []string{}
		}
		p.Media = append([]catalog.MediaItem(nil), p.Media...)
		if p.Media == nil {
			p.Media = []catalog.MediaItem{}
		}
		out[i] = p
	}
	return out
}
