package billing

import "time"

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is one gift from a fan to a creator for one package.
// pending -> completed is one-way; a completed transaction is never processed
// again.
type Transaction struct {
	ID        string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatorID string `gorm:"type:text;not null;index" json:"creator_id"`
	PackageID string `gorm:"type:uuid;not null;index" json:"package_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:text;not null" json:"currency"`

	FanName  string `json:"fan_name,omitempty"`
	FanEmail string `json:"fan_email,omitempty"`
	Message  string `json:"message,omitempty"`

	Status TransactionStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`

	PaymentSessionID *string `gorm:"uniqueIndex:idx_transactions_payment_session" json:"-"`
	PaymentReference *string `json:"-"`
	RewardID         *string `gorm:"type:uuid" json:"reward_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Transaction) Completed() bool { return t.Status == StatusCompleted }
