package mirror

import (
	"context"
	"encoding/json"

	"mimo-api/internal/domain/catalog"

	"github.com/sirupsen/logrus"
)

// Mirror is the per-identity cache of the creator profile and package
// collection. Every collection is read and written as a whole, and nothing in
// here returns an error: the mirror is always secondary to the catalog store
// and to what the caller already holds.
//
// Writes are last-writer-wins per key. Two concurrent saves for the same
// identity may interleave and either may end up stored.
type Mirror struct {
	storage Storage
	prefix  string
	log     logrus.FieldLogger
}

func New(storage Storage, prefix string, log logrus.FieldLogger) *Mirror {
	if prefix == "" {
		prefix = "mimo"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mirror{storage: storage, prefix: prefix, log: log}
}

func (m *Mirror) CreatorKey(identityID string) string {
	return m.prefix + ":creator:" + identityID
}

func (m *Mirror) PackagesKey(identityID string) string {
	return m.prefix + ":packages:" + identityID
}

// Packages returns the cached collection, or an empty one when nothing is
// cached or the blob cannot be parsed. A corrupt blob is replaced by an empty
// collection so the mirror matches what the caller was given.
func (m *Mirror) Packages(ctx context.Context, identityID string) []catalog.Package {
	key := m.PackagesKey(identityID)
	raw, found, err := m.storage.Get(ctx, key)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Warn("failed to read cached packages")
		return []catalog.Package{}
	}
	if !found || len(raw) == 0 {
		return []catalog.Package{}
	}
	var pkgs []catalog.Package
	if err := json.Unmarshal(raw, &pkgs); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("cached packages are corrupt, resetting")
		m.set(ctx, key, []catalog.Package{})
		return []catalog.Package{}
	}
	if pkgs == nil {
		pkgs = []catalog.Package{}
	}
	return pkgs
}

func (m *Mirror) SetPackages(ctx context.Context, identityID string, pkgs []catalog.Package) {
	if pkgs == nil {
		pkgs = []catalog.Package{}
	}
	m.set(ctx, m.PackagesKey(identityID), pkgs)
}

func (m *Mirror) Creator(ctx context.Context, identityID string) (*catalog.Creator, bool) {
	key := m.CreatorKey(identityID)
	raw, found, err := m.storage.Get(ctx, key)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Warn("failed to read cached creator")
		return nil, false
	}
	if !found || len(raw) == 0 {
		return nil, false
	}
	var c catalog.Creator
	if err := json.Unmarshal(raw, &c); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("cached creator is corrupt, ignoring")
		return nil, false
	}
	if c.ID == "" {
		c.ID = identityID
	}
	return &c, true
}

func (m *Mirror) SetCreator(ctx context.Context, identityID string, c catalog.Creator) {
	m.set(ctx, m.CreatorKey(identityID), c)
}

func (m *Mirror) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		m.log.WithError(err).WithField("key", key).Error("failed to encode mirror value")
		return
	}
	if err := m.storage.Set(ctx, key, raw); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("failed to write mirror value")
	}
}
