package postgres

import (
	"errors"
	"fmt"

	"mimo-api/internal/domain/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogStore is the remote catalog: creators, packages with their features
// and media, transactions, rewards and withdrawals. The gorm handle must be
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalog.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", catalog.ErrConflict, err)
	default:
		return err
	}
}

// affected turns an update or delete that matched no row into ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// isUUID reports whether id can be compared with a uuid column. Any other
// value matches no row, and Postgres rejects it instead of returning none.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
