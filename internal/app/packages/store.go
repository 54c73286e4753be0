package packages

import (
	"context"
	"time"

	"mimo-api/internal/domain/catalog"
)

// Store is the remote catalog as the synchronizer uses it. Lookups scoped by
// creator return catalog.ErrNotFound for rows owned by someone else.
type Store interface {
	EnsureCreator(ctx context.Context, c catalog.Creator) error
	CreatorByUsername(ctx context.Context, username string) (*catalog.Creator, error)

	// ListPackages returns every package of a creator with features in
	// position order and media preloaded.
	ListPackages(ctx context.Context, creatorID string) ([]catalog.PackageRow, error)
	// PublicPackages returns visible packages only, highlighted first, then
	// newest first.
	PublicPackages(ctx context.Context, creatorID string) ([]catalog.PackageRow, error)

	FindPackage(ctx context.Context, creatorID, id string) (*catalog.PackageRow, error)
	InsertPackage(ctx context.Context, row *catalog.PackageRow) error
	UpdatePackage(ctx context.Context, id string, f PackageFields) error
	DeletePackage(ctx context.Context, creatorID, id string) error

	// ReplaceFeatures deletes every feature of the package and inserts the
	// given ones in order.
	ReplaceFeatures(ctx context.Context, packageID string, features []string) error

	FindMedia(ctx context.Context, packageID, id string) (*catalog.MediaRow, error)
	InsertMedia(ctx context.Context, row *catalog.MediaRow) error
	UpdateMedia(ctx context.Context, row catalog.MediaRow) error
	// PruneMedia deletes media of the package whose id is not in keep.
	PruneMedia(ctx context.Context, packageID string, keep []string) error
}

// PackageFields are the mutable scalar columns of a package.
type PackageFields struct {
	Title       string
	Price       float64
	Highlighted bool
	IsHidden    bool
	UpdatedAt   time.Time
}
