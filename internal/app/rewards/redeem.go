package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mimo-api/internal/domain/catalog"
)

var (
	ErrRewardNotFound = errors.New("reward not found")
	ErrRewardExpired  = errors.New("reward access has expired")
)

// Redemption is the unlocked content behind a reward token.
type Redemption struct {
	RewardID  string          `json:"reward_id"`
	ExpireAt  time.Time       `json:"expire_at"`
	CreatorID string          `json:"creator_id"`
	Package   catalog.Package `json:"package"`
}

func (i *Issuer) Redeem(ctx context.Context, token string) (*Redemption, error) {
	if token == "" {
		return nil, ErrRewardNotFound
	}
	reward, err := i.store.FindRewardByToken(ctx, token)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reward: %w", err)
	}
	if reward.Expired(i.now()) {
		return nil, ErrRewardExpired
	}

	tx, err := i.store.FindTransaction(ctx, reward.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	row, err := i.store.FindPackageByID(ctx, tx.PackageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load package: %w", err)
	}

	return &Redemption{
		RewardID:  reward.ID,
		ExpireAt:  reward.ExpireAt,
		CreatorID: tx.CreatorID,
		Package:   catalog.PackageFromRow(*row),
	}, nil
}
