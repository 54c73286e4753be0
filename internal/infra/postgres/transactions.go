package postgres

import (
	"context"
	"errors"
	"time"

	"mimo-api/internal/domain/billing"
	"mimo-api/internal/domain/catalog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *CatalogStore) InsertTransaction(ctx context.Context, t *billing.Transaction) error {
	return mapErr(s.db.WithContext(ctx).Create(t).Error)
}

func (s *CatalogStore) SetPaymentSession(ctx context.Context, transactionID, sessionID string) error {
	if !isUUID(transactionID) {
		return catalog.ErrNotFound
	}
	res := s.db.WithContext(ctx).
		Model(&billing.Transaction{}).
		Where("id = ?", transactionID).
		Update("payment_session_id", sessionID)
	return affected(res)
}

// FailTransaction marks a transaction that never got a checkout. Completed
// transactions are left alone.
func (s *CatalogStore) FailTransaction(ctx context.Context, transactionID string) error {
	if !isUUID(transactionID) {
		return nil
	}
	return mapErr(s.db.WithContext(ctx).
		Model(&billing.Transaction{}).
		Where("id = ? AND status = ?", transactionID, billing.StatusPending).
		Update("status", billing.StatusFailed).Error)
}

func (s *CatalogStore) FindTransaction(ctx context.Context, id string) (*billing.Transaction, error) {
	if !isUUID(id) {
		return nil, catalog.ErrNotFound
	}
	var t billing.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *CatalogStore) FindRewardByTransaction(ctx context.Context, transactionID string) (*billing.Reward, error) {
	if !isUUID(transactionID) {
		return nil, catalog.ErrNotFound
	}
	var r billing.Reward
	if err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&r).Error; err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (s *CatalogStore) FindRewardByToken(ctx context.Context, token string) (*billing.Reward, error) {
	var r billing.Reward
	if err := s.db.WithContext(ctx).Where("access_token = ?", token).First(&r).Error; err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

// CompleteWithReward flips the transaction to completed, inserts the reward
// and links it, in one database transaction. The conditional update is the
// guard: a second caller blocks on the row lock, then matches nothing and
// gets billing.ErrAlreadyCompleted.
func (s *CatalogStore) CompleteWithReward(ctx context.Context, transactionID, paymentReference string, reward *billing.Reward, now time.Time) error {
	if !isUUID(transactionID) {
		return catalog.ErrNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&billing.Transaction{}).
			Where("id = ? AND status <> ?", transactionID, billing.StatusCompleted).
			Updates(map[string]interface{}{
				"status":            billing.StatusCompleted,
				"payment_reference": paymentReference,
				"updated_at":        now,
			})
		if res.Error != nil {
			return mapErr(res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&billing.Transaction{}).Where("id = ?", transactionID).Count(&n).Error; err != nil {
				return mapErr(err)
			}
			if n == 0 {
				return catalog.ErrNotFound
			}
			return billing.ErrAlreadyCompleted
		}

		return insertReward(tx, transactionID, reward, now)
	})
}

// AttachReward mints the missing reward of an already completed transaction.
// The transaction row is locked so concurrent repairs serialize.
func (s *CatalogStore) AttachReward(ctx context.Context, transactionID string, reward *billing.Reward) error {
	if !isUUID(transactionID) {
		return catalog.ErrNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t billing.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", transactionID).
			First(&t).Error
		if err != nil {
			return mapErr(err)
		}
		var n int64
		if err := tx.Model(&billing.Reward{}).Where("transaction_id = ?", transactionID).Count(&n).Error; err != nil {
			return mapErr(err)
		}
		if n > 0 {
			return billing.ErrAlreadyCompleted
		}
		return insertReward(tx, transactionID, reward, time.Now())
	})
}

func insertReward(tx *gorm.DB, transactionID string, reward *billing.Reward, now time.Time) error {
	reward.TransactionID = transactionID
	reward.CreatedAt = now
	if err := tx.Create(reward).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return billing.ErrAlreadyCompleted
		}
		return mapErr(err)
	}
	return mapErr(tx.Model(&billing.Transaction{}).
		Where("id = ?", transactionID).
		Update("reward_id", reward.ID).Error)
}
