package postgres

import (
	"context"

	"mimo-api/internal/app/packages"
	"mimo-api/internal/domain/catalog"

	"gorm.io/gorm"
)

func (s *CatalogStore) ListPackages(ctx context.Context, creatorID string) ([]catalog.PackageRow, error) {
	var rows []catalog.PackageRow
	err := creatorPackagesQuery(s.db.WithContext(ctx), creatorID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, mapErr(err)
}

func (s *CatalogStore) PublicPackages(ctx context.Context, creatorID string) ([]catalog.PackageRow, error) {
	var rows []catalog.PackageRow
	err := creatorPackagesQuery(s.db.WithContext(ctx), creatorID).
		Where("is_hidden = ?", false).
		Order("highlighted DESC, created_at DESC").
		Find(&rows).Error
	return rows, mapErr(err)
}

func (s *CatalogStore) FindPackage(ctx context.Context, creatorID, id string) (*catalog.PackageRow, error) {
	if !isUUID(id) {
		return nil, catalog.ErrNotFound
	}
	var row catalog.PackageRow
	err := creatorPackagesQuery(s.db.WithContext(ctx), creatorID).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &row, nil
}

func (s *CatalogStore) FindPackageByID(ctx context.Context, id string) (*catalog.PackageRow, error) {
	if !isUUID(id) {
		return nil, catalog.ErrNotFound
	}
	var row catalog.PackageRow
	if err := withChildren(s.db.WithContext(ctx)).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	return &row, nil
}

// InsertPackage stores the package row alone; row.ID is filled in from the
// database default.
func (s *CatalogStore) InsertPackage(ctx context.Context, row *catalog.PackageRow) error {
	return mapErr(s.db.WithContext(ctx).Omit("Features", "Media").Create(row).Error)
}

func (s *CatalogStore) UpdatePackage(ctx context.Context, id string, f packages.PackageFields) error {
	res := s.db.WithContext(ctx).
		Model(&catalog.PackageRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       f.Title,
			"price":       f.Price,
			"highlighted": f.Highlighted,
			"is_hidden":   f.IsHidden,
			"updated_at":  f.UpdatedAt,
		})
	return affected(res)
}

// DeletePackage removes the package; features and media go with it through
// ON DELETE CASCADE.
func (s *CatalogStore) DeletePackage(ctx context.Context, creatorID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&catalog.PackageRow{})
	return affected(res)
}

func (s *CatalogStore) ReplaceFeatures(ctx context.Context, packageID string, features []string) error {
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", packageID).Delete(&catalog.FeatureRow{}).Error; err != nil {
			return err
		}
		if len(features) == 0 {
			return nil
		}
		rows := make([]catalog.FeatureRow, 0, len(features))
		for i, f := range features {
			rows = append(rows, catalog.FeatureRow{PackageID: packageID, Position: i, Feature: f})
		}
		return tx.Create(&rows).Error
	}))
}

func (s *CatalogStore) FindMedia(ctx context.Context, packageID, id string) (*catalog.MediaRow, error) {
	var row catalog.MediaRow
	err := s.db.WithContext(ctx).
		Where("package_id = ? AND id = ?", packageID, id).
		First(&row).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &row, nil
}

func (s *CatalogStore) InsertMedia(ctx context.Context, row *catalog.MediaRow) error {
	return mapErr(s.db.WithContext(ctx).Create(row).Error)
}

func (s *CatalogStore) UpdateMedia(ctx context.Context, row catalog.MediaRow) error {
	res := s.db.WithContext(ctx).
		Model(&catalog.MediaRow{}).
		Where("id = ? AND package_id = ?", row.ID, row.PackageID).
		Updates(map[string]interface{}{
			"type":       row.Type,
			"url":        row.URL,
			"caption":    row.Caption,
			"is_preview": row.IsPreview,
		})
	return affected(res)
}

func (s *CatalogStore) PruneMedia(ctx context.Context, packageID string, keep []string) error {
	q := s.db.WithContext(ctx).Where("package_id = ?", packageID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return mapErr(q.Delete(&catalog.MediaRow{}).Error)
}
