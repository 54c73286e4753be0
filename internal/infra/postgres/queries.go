package postgres

import (
	"mimo-api/internal/domain/billing"
	"mimo-api/internal/domain/catalog"

	"gorm.io/gorm"
)

func creatorPackagesQuery(db *gorm.DB, creatorID string) *gorm.DB {
	return withChildren(db.Model(&catalog.PackageRow{})).
		Where("creator_id = ?", creatorID)
}

// withChildren preloads features in position order and media in insertion
// order.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Features", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}

func completedTransactionsQuery(db *gorm.DB, creatorID string) *gorm.DB {
	return db.Model(&billing.Transaction{}).
		Where("creator_id = ? AND status = ?", creatorID, billing.StatusCompleted)
}

func countedWithdrawalsQuery(db *gorm.DB, creatorID string) *gorm.DB {
	return db.Model(&billing.Withdrawal{}).
		Where("creator_id = ? AND status <> ?", creatorID, billing.WithdrawalRejected)
}
