package postgres

import (
	"context"

	"mimo-api/internal/domain/billing"
	"mimo-api/internal/domain/catalog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *CatalogStore) EarnedTotal(ctx context.Context, creatorID string) (float64, error) {
	return sumAmount(completedTransactionsQuery(s.db.WithContext(ctx), creatorID))
}

func (s *CatalogStore) ListWithdrawals(ctx context.Context, creatorID string) ([]billing.Withdrawal, error) {
	var ws []billing.Withdrawal
	err := s.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&ws).Error
	return ws, mapErr(err)
}

// CreateWithdrawal locks the creator row so concurrent requests see each
// other's withdrawals before checking the balance.
func (s *CatalogStore) CreateWithdrawal(ctx context.Context, w *billing.Withdrawal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c catalog.Creator
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", w.CreatorID).
			First(&c).Error
		if err != nil {
			return mapErr(err)
		}

		earned, err := sumAmount(completedTransactionsQuery(tx, w.CreatorID))
		if err != nil {
			return err
		}
		withdrawn, err := sumAmount(countedWithdrawalsQuery(tx, w.CreatorID))
		if err != nil {
			return err
		}
		if w.Amount > earned-withdrawn {
			return billing.ErrInsufficientBalance
		}
		return mapErr(tx.Create(w).Error)
	})
}

func sumAmount(q *gorm.DB) (float64, error) {
	var total float64
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, mapErr(err)
	}
	return total, nil
}
