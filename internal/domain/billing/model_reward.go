package billing

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// RewardTTL is how long a fan can open the content unlocked by a gift.
const RewardTTL = 30 * 24 * time.Hour

// Reward grants time-limited access to a package's media. At most one exists
// per transaction.
type Reward struct {
	ID            string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID string    `gorm:"type:uuid;not null;uniqueIndex:idx_rewards_transaction" json:"transaction_id"`
	AccessToken   string    `gorm:"not null;uniqueIndex:idx_rewards_access_token" json:"-"`
	ExpireAt      time.Time `gorm:"not null" json:"expire_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r Reward) Expired(now time.Time) bool { return !now.Before(r.ExpireAt) }

// NewReward mints an unsaved reward for a transaction with a fresh access
// token.
func NewReward(transactionID string, now time.Time, ttl time.Duration) (Reward, error) {
	token, err := GenerateAccessToken()
	if err != nil {
		return Reward{}, err
	}
	if ttl <= 0 {
		ttl = RewardTTL
	}
	return Reward{
		TransactionID: transactionID,
		AccessToken:   token,
		ExpireAt:      now.Add(ttl),
	}, nil
}

func GenerateAccessToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
