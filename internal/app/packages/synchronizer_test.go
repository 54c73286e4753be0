package packages

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mimo-api/internal/app/mirror"
	"mimo-api/internal/domain/catalog"
	"mimo-api/internal/domain/media"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store  *memStore
	mirror *mirror.Mirror
	sync   *Synchronizer
}

func newFixture(opts ...Option) fixture {
	st := newMemStore()
	m := mirror.New(mirror.NewMemoryStorage(), "mimo", quietLogger())
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return fixture{store: st, mirror: m, sync: New(st, m, opts...)}
}

func basicPackage() catalog.Package {
	return catalog.Package{
		ID:       catalog.LocalID(101),
		Title:    "Basic",
		Price:    10,
		Features: []string{"A"},
		Media:    []catalog.MediaItem{},
	}
}

func TestLoadWithoutIdentity(t *testing.T) {
	f := newFixture()
	got := f.sync.Load(context.Background(), "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadFallsBackToMirrorWhenRemoteIsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	cached := []catalog.Package{basicPackage()}
	f.mirror.SetPackages(ctx, "U1", cached)

	got := f.sync.Load(ctx, "U1")

	assert.Equal(t, cached, got)
	assert.Equal(t, cached, f.mirror.Packages(ctx, "U1"))
}

func TestLoadFallsBackToMirrorOnRemoteError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.listErr = errors.New("connection reset")
	cached := []catalog.Package{basicPackage()}
	f.mirror.SetPackages(ctx, "U1", cached)

	assert.Equal(t, cached, f.sync.Load(ctx, "U1"))
}

func TestLoadFallsBackToMirrorOnTimeout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(WithTimeout(20 * time.Millisecond))
	f.store.block = true
	cached := []catalog.Package{basicPackage()}
	f.mirror.SetPackages(ctx, "U1", cached)

	assert.Equal(t, cached, f.sync.Load(ctx, "U1"))
}

func TestLoadRefreshesMirrorFromRemote(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.mirror.SetPackages(ctx, "U1", []catalog.Package{basicPackage()})

	res := f.sync.Save(ctx, "U1", []catalog.Package{{
		ID: catalog.LocalID(7), Title: "Gold", Price: 50, Features: []string{"x", "y"},
		Media: []catalog.MediaItem{{ID: catalog.LocalID(8), Type: media.TypeImage, URL: "https://cdn/x.png"}},
	}})
	require.True(t, res.Complete())

	// The mirror was overwritten by something else in the meantime.
	f.mirror.SetPackages(ctx, "U1", []catalog.Package{})

	got := f.sync.Load(ctx, "U1")
	require.Len(t, got, 1)
	assert.Equal(t, "Gold", got[0].Title)
	assert.Equal(t, []string{"x", "y"}, got[0].Features)
	assert.Equal(t, got, f.mirror.Packages(ctx, "U1"))
}

func TestSaveWithoutIdentityWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res := f.sync.Save(ctx, "", []catalog.Package{basicPackage()})

	assert.False(t, res.OK)
	assert.Zero(t, f.store.writes)
	assert.Empty(t, f.mirror.Packages(ctx, ""))
}

func TestSaveRemapsEveryLocalID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	in := []catalog.Package{{
		ID: catalog.LocalID(1712345678901), Title: "VIP", Price: 99, Highlighted: true,
		Features: []string{"a", "a", "b"},
		Media: []catalog.MediaItem{
			{ID: catalog.LocalID(1), Type: media.TypeImage, URL: "data:image/png;base64,AA", IsPreview: true},
			{ID: catalog.LocalID(2), Type: media.TypeVideo, URL: "https://cdn/v.mp4", Caption: "full"},
		},
	}}

	res := f.sync.Save(ctx, "U1", in)

	require.True(t, res.Complete())
	require.Len(t, res.Packages, 1)
	p := res.Packages[0]
	assert.True(t, p.ID.IsRemote())
	for _, m := range p.Media {
		assert.True(t, m.ID.IsRemote())
	}
	assert.Equal(t, []catalog.ID{p.ID}, res.Succeeded)

	// the input is not mutated
	assert.Equal(t, catalog.LocalID(1712345678901), in[0].ID)

	cached := f.mirror.Packages(ctx, "U1")
	assert.Equal(t, res.Packages, cached)
	for _, c := range cached {
		assert.NotEqual(t, catalog.LocalID(1712345678901), c.ID)
	}

	row := f.store.row(p.ID.Remote())
	assert.Equal(t, "U1", row.CreatorID)
	require.Len(t, row.Features, 3)
	assert.Equal(t, "b", row.Features[2].Feature)
	assert.Len(t, row.Media, 2)
}

func TestSaveCreatesPlaceholderCreator(t *testing.T) {
	f := newFixture()
	f.sync.Save(context.Background(), "0b5f4c1e-2a57-4d2e-9d0c-8a1f3e6b7c21", []catalog.Package{basicPackage()})

	c, ok := f.store.creators["0b5f4c1e-2a57-4d2e-9d0c-8a1f3e6b7c21"]
	require.True(t, ok)
	assert.Equal(t, "user-0b5f4c1e", c.Username)
}

func TestSaveUpdatesExistingPackage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first := f.sync.Save(ctx, "U1", []catalog.Package{{
		ID: catalog.LocalID(1), Title: "Basic", Price: 10, Features: []string{"old"},
		Media: []catalog.MediaItem{
			{ID: catalog.LocalID(1), Type: media.TypeImage, URL: "https://cdn/1.png"},
			{ID: catalog.LocalID(2), Type: media.TypeImage, URL: "https://cdn/2.png"},
		},
	}})
	require.True(t, first.Complete())
	synced := first.Packages[0]
	keptMedia := synced.Media[0]

	edited := synced
	edited.Title = "Basic+"
	edited.Price = 12
	edited.IsHidden = true
	edited.Features = []string{"new", "new"}
	keptMedia.Caption = "edited"
	edited.Media = []catalog.MediaItem{
		keptMedia,
		{ID: catalog.LocalID(3), Type: media.TypeAudio, URL: "https://cdn/3.mp3"},
	}

	res := f.sync.Save(ctx, "U1", []catalog.Package{edited})
	require.True(t, res.Complete())

	p := res.Packages[0]
	assert.Equal(t, synced.ID, p.ID, "a synced package keeps its id")
	assert.Equal(t, keptMedia.ID, p.Media[0].ID, "a synced media item keeps its id")
	assert.True(t, p.Media[1].ID.IsRemote())

	row := f.store.row(p.ID.Remote())
	assert.Equal(t, "Basic+", row.Title)
	assert.Equal(t, 12.0, row.Price)
	assert.True(t, row.IsHidden)
	assert.False(t, row.UpdatedAt.IsZero())
	require.Len(t, row.Features, 2)
	assert.Equal(t, "new", row.Features[0].Feature)
	require.Len(t, row.Media, 2, "removed media is pruned")
	assert.Equal(t, "edited", row.Media[0].Caption)
}

func TestSaveReinsertsPackageDeletedRemotely(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	gone := basicPackage()
	gone.ID = catalog.RemoteID("8f14e45f-ceea-467f-a0e6-1a2b3c4d5e6f")

	res := f.sync.Save(ctx, "U1", []catalog.Package{gone})

	require.True(t, res.Complete())
	assert.True(t, res.Packages[0].ID.IsRemote())
	assert.NotEqual(t, gone.ID, res.Packages[0].ID)
}

func TestSaveContinuesAfterPackageFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.failInsertTitle = "Broken"

	broken := basicPackage()
	broken.Title = "Broken"
	invalid := basicPackage()
	invalid.ID = catalog.LocalID(5)
	invalid.Price = 0
	good := basicPackage()
	good.ID = catalog.LocalID(6)

	res := f.sync.Save(ctx, "U1", []catalog.Package{broken, invalid, good})

	assert.True(t, res.OK)
	assert.False(t, res.Complete())
	require.Len(t, res.Failed, 2)
	assert.Equal(t, catalog.LocalID(101), res.Failed[0].ID)
	assert.Equal(t, catalog.LocalID(5), res.Failed[1].ID)
	assert.ErrorIs(t, res.Failed[1].Err, catalog.ErrInvalidPackage)
	require.Len(t, res.Succeeded, 1)
	assert.True(t, res.Succeeded[0].IsRemote())

	cached := f.mirror.Packages(ctx, "U1")
	require.Len(t, cached, 3, "failed packages still reach the mirror")
	assert.Equal(t, res.Packages, cached)
}

func TestSaveMirrorsWhenCreatorSetupFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.ensureErr = errors.New("database down")

	res := f.sync.Save(ctx, "U1", []catalog.Package{basicPackage()})

	assert.False(t, res.OK)
	assert.Len(t, res.Failed, 1)
	assert.Equal(t, []catalog.Package{basicPackage()}, f.mirror.Packages(ctx, "U1"))
}

func TestSaveTimeoutReportsFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(WithTimeout(20 * time.Millisecond))
	f.store.block = true

	res := f.sync.Save(ctx, "U1", []catalog.Package{basicPackage()})

	assert.False(t, res.OK)
	assert.Equal(t, []catalog.Package{basicPackage()}, f.mirror.Packages(ctx, "U1"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.sync.Save(ctx, "U1", []catalog.Package{basicPackage()})
	id := res.Packages[0].ID

	require.NoError(t, f.sync.Delete(ctx, "U1", id))

	assert.Empty(t, f.mirror.Packages(ctx, "U1"))
	_, err := f.store.FindPackage(ctx, "U1", id.Remote())
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.ErrorIs(t, f.sync.Delete(ctx, "", id), ErrNotAuthenticated)
}

func TestPackagesByUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.creators["U1"] = catalog.Creator{ID: "U1", Username: "ana"}

	res := f.sync.Save(ctx, "U1", []catalog.Package{
		{ID: catalog.LocalID(1), Title: "Plain", Price: 5},
		{ID: catalog.LocalID(2), Title: "Secret", Price: 5, IsHidden: true},
		{ID: catalog.LocalID(3), Title: "Star", Price: 5, Highlighted: true, Media: []catalog.MediaItem{
			{ID: catalog.LocalID(1), Type: media.TypeImage, URL: "https://cdn/p.png", IsPreview: true},
			{ID: catalog.LocalID(2), Type: media.TypeVideo, URL: "https://cdn/full.mp4"},
		}},
	})
	require.True(t, res.Complete())

	public, err := f.sync.PackagesByUsername(ctx, "Ana", "someone-else")
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Star", public[0].Title, "highlighted first")
	assert.Equal(t, "Plain", public[1].Title)
	assert.Len(t, public[0].Media, 1, "only previews are public")
	for _, p := range public {
		assert.False(t, p.IsHidden)
	}

	own, err := f.sync.PackagesByUsername(ctx, "ana", "U1")
	require.NoError(t, err)
	assert.Len(t, own, 3)

	unknown, err := f.sync.PackagesByUsername(ctx, "nobody", "")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestPackagesByUsernameFallsBackToOwnCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.mirror.SetCreator(ctx, "U2", catalog.Creator{ID: "U2", Username: "draft-page"})
	f.mirror.SetPackages(ctx, "U2", []catalog.Package{basicPackage()})

	own, err := f.sync.PackagesByUsername(ctx, "draft-page", "U2")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Package{basicPackage()}, own)

	other, err := f.sync.PackagesByUsername(ctx, "draft-page", "U3")
	require.NoError(t, err)
	assert.Empty(t, other)
}
