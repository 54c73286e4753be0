package postgres

import (
	"context"
	"errors"
	"strings"

	"mimo-api/internal/domain/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// EnsureCreator inserts c unless a creator with its id exists. When the
// placeholder username is taken by someone else a random one is used.
func (s *CatalogStore) EnsureCreator(ctx context.Context, c catalog.Creator) error {
	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&catalog.Creator{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
		return mapErr(err)
	}
	if n > 0 {
		return nil
	}

	err := mapErr(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&c).Error)
	if errors.Is(err, catalog.ErrConflict) {
		c.Username = fallbackUsername()
		err = mapErr(db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&c).Error)
	}
	return err
}

func fallbackUsername() string {
	return "user-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *CatalogStore) FindCreator(ctx context.Context, id string) (*catalog.Creator, error) {
	var c catalog.Creator
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *CatalogStore) CreatorByUsername(ctx context.Context, username string) (*catalog.Creator, error) {
	var c catalog.Creator
	err := s.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(username)).
		First(&c).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *CatalogStore) UpsertCreator(ctx context.Context, c *catalog.Creator) error {
	if c.SocialLinks == nil {
		c.SocialLinks = []catalog.SocialLink{}
	}
	return mapErr(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "name", "avatar", "cover", "description", "about", "social_links", "updated_at",
		}),
	}).Create(c).Error)
}
