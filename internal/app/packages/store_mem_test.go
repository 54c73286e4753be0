package packages

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mimo-api/internal/domain/catalog"

	"github.com/google/uuid"
)

// memStore is an in-memory Store with failure injection.
type memStore struct {
	mu       sync.Mutex
	creators map[string]catalog.Creator
	packages map[string]*catalog.PackageRow
	order    []string
	seq      int

	writes int

	listErr         error
	ensureErr       error
	failInsertTitle string
	block           bool
}

func newMemStore() *memStore {
	return &memStore{
		creators: make(map[string]catalog.Creator),
		packages: make(map[string]*catalog.PackageRow),
	}
}

func (m *memStore) wait(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (m *memStore) EnsureCreator(ctx context.Context, c catalog.Creator) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureErr != nil {
		return m.ensureErr
	}
	if _, ok := m.creators[c.ID]; !ok {
		m.writes++
		m.creators[c.ID] = c
	}
	return nil
}

func (m *memStore) CreatorByUsername(ctx context.Context, username string) (*catalog.Creator, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.creators {
		if c.Username == username {
			c := c
			return &c, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *memStore) ListPackages(ctx context.Context, creatorID string) ([]catalog.PackageRow, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []catalog.PackageRow
	for _, id := range m.order {
		if p, ok := m.packages[id]; ok && p.CreatorID == creatorID {
			out = append(out, copyRow(*p))
		}
	}
	return out, nil
}

func (m *memStore) PublicPackages(ctx context.Context, creatorID string) ([]catalog.PackageRow, error) {
	rows, err := m.ListPackages(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if !r.IsHidden {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Highlighted != out[j].Highlighted {
			return out[i].Highlighted
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) FindPackage(ctx context.Context, creatorID, id string) (*catalog.PackageRow, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok || p.CreatorID != creatorID {
		return nil, catalog.ErrNotFound
	}
	row := copyRow(*p)
	return &row, nil
}

func (m *memStore) InsertPackage(ctx context.Context, row *catalog.PackageRow) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertTitle != "" && row.Title == m.failInsertTitle {
		return errors.New("insert rejected")
	}
	m.writes++
	m.seq++
	row.ID = uuid.NewString()
	row.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	stored := copyRow(*row)
	m.packages[row.ID] = &stored
	m.order = append(m.order, row.ID)
	return nil
}

func (m *memStore) UpdatePackage(ctx context.Context, id string, f PackageFields) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok {
		return catalog.ErrNotFound
	}
	m.writes++
	p.Title, p.Price, p.Highlighted, p.IsHidden, p.UpdatedAt = f.Title, f.Price, f.Highlighted, f.IsHidden, f.UpdatedAt
	return nil
}

func (m *memStore) DeletePackage(ctx context.Context, creatorID, id string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[id]
	if !ok || p.CreatorID != creatorID {
		return catalog.ErrNotFound
	}
	m.writes++
	delete(m.packages, id)
	return nil
}

func (m *memStore) ReplaceFeatures(ctx context.Context, packageID string, features []string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[packageID]
	if !ok {
		return catalog.ErrNotFound
	}
	m.writes++
	p.Features = nil
	for i, f := range features {
		p.Features = append(p.Features, catalog.FeatureRow{PackageID: packageID, Position: i, Feature: f})
	}
	return nil
}

func (m *memStore) FindMedia(ctx context.Context, packageID, id string) (*catalog.MediaRow, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.packages[packageID]; ok {
		for _, r := range p.Media {
			if r.ID == id {
				r := r
				return &r, nil
			}
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *memStore) InsertMedia(ctx context.Context, row *catalog.MediaRow) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[row.PackageID]
	if !ok {
		return catalog.ErrNotFound
	}
	m.writes++
	row.ID = uuid.NewString()
	p.Media = append(p.Media, *row)
	return nil
}

func (m *memStore) UpdateMedia(ctx context.Context, row catalog.MediaRow) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[row.PackageID]
	if !ok {
		return catalog.ErrNotFound
	}
	for i := range p.Media {
		if p.Media[i].ID == row.ID {
			m.writes++
			p.Media[i] = row
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (m *memStore) PruneMedia(ctx context.Context, packageID string, keep []string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.packages[packageID]
	if !ok {
		return catalog.ErrNotFound
	}
	kept := p.Media[:0]
	for _, r := range p.Media {
		for _, k := range keep {
			if r.ID == k {
				kept = append(kept, r)
				break
			}
		}
	}
	p.Media = kept
	return nil
}

func (m *memStore) row(id string) catalog.PackageRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRow(*m.packages[id])
}

func copyRow(r catalog.PackageRow) catalog.PackageRow {
	r.Features = append([]catalog.FeatureRow(nil), r.Features...)
	r.Media = append([]catalog.MediaRow(nil), r.Media...)
	return r
}
