package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mimo-api/internal/domain/media"
)

// Package is the purchasable reward offer as clients and the local mirror see
// it. Features keep their order; duplicates are allowed.
type Package struct {
	ID          ID          `json:"id"`
	Title       string      `json:"title"`
	Price       float64     `json:"price"`
	Features    []string    `json:"features"`
	Highlighted bool        `json:"highlighted"`
	IsHidden    bool        `json:"isHidden"`
	Media       []MediaItem `json:"media"`
}

type MediaItem struct {
	ID        ID         `json:"id"`
	Type      media.Type `json:"type"`
	URL       string     `json:"url"`
	Caption   string     `json:"caption,omitempty"`
	IsPreview bool       `json:"isPreview"`
}

var ErrInvalidPackage = errors.New("invalid package")

func (p Package) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPackage)
	}
	if !(p.Price > 0) {
		return fmt.Errorf("%w: price must be positive", ErrInvalidPackage)
	}
	for i, m := range p.Media {
		if !m.Type.Valid() {
			return fmt.Errorf("%w: media %d has unknown type %q", ErrInvalidPackage, i, m.Type)
		}
		if strings.TrimSpace(m.URL) == "" {
			return fmt.Errorf("%w: media %d has no url", ErrInvalidPackage, i)
		}
	}
	return nil
}

// Previews returns a copy of p carrying only its preview media, the form
// shown on a public sales page before purchase.
func (p Package) Previews() Package {
	out := p
	out.Media = make([]MediaItem, 0, len(p.Media))
	for _, m := range p.Media {
		if m.IsPreview {
			out.Media = append(out.Media, m)
		}
	}
	return out
}

// ---------- rows

type PackageRow struct {
	ID        string `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID string `gorm:"type:text;not null;index"`

	Title       string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
	Highlighted bool    `gorm:"not null;default:false"`
	IsHidden    bool    `gorm:"not null;default:false;index"`

	Features []FeatureRow `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE;"`
	Media    []MediaRow   `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PackageRow) TableName() string { return "packages" }

type FeatureRow struct {
	ID        uint   `gorm:"primaryKey"`
	PackageID string `gorm:"type:uuid;not null;index:idx_package_features_order,priority:1"`
	Position  int    `gorm:"not null;default:0;index:idx_package_features_order,priority:2"`
	Feature   string `gorm:"not null"`
}

func (FeatureRow) TableName() string { return "package_features" }

type MediaRow struct {
	ID        string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PackageID string     `gorm:"type:uuid;not null;index"`
	Type      media.Type `gorm:"type:text;not null"`
	URL       string     `gorm:"not null"`
	Caption   string
	IsPreview bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MediaRow) TableName() string { return "package_media" }

// PackageFromRow flattens a row with its preloaded features and media.
func PackageFromRow(r PackageRow) Package {
	p := Package{
		ID:          RemoteID(r.ID),
		Title:       r.Title,
		Price:       r.Price,
		Highlighted: r.Highlighted,
		IsHidden:    r.IsHidden,
		Features:    make([]string, 0, len(r.Features)),
		Media:       make([]MediaItem, 0, len(r.Media)),
	}
	for _, f := range r.Features {
		p.Features = append(p.Features, f.Feature)
	}
	for _, m := range r.Media {
		p.Media = append(p.Media, MediaFromRow(m))
	}
	return p
}

func MediaFromRow(r MediaRow) MediaItem {
	return MediaItem{
		ID:        RemoteID(r.ID),
		Type:      r.Type,
		URL:       r.URL,
		Caption:   r.Caption,
		IsPreview: r.IsPreview,
	}
}
