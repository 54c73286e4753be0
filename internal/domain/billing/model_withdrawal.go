package billing

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type Withdrawal struct {
	ID        string           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatorID string           `gorm:"type:text;not null;index" json:"-"`
	Amount    float64          `gorm:"not null" json:"amount"`
	PixKey    string           `gorm:"not null" json:"pix_key"`
	Status    WithdrawalStatus `gorm:"type:text;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Balance is what a creator can still withdraw.
type Balance struct {
	Earned    float64 `json:"earned"`
	Withdrawn float64 `json:"withdrawn"`
	Available float64 `json:"available"`
}

// ComputeBalance subtracts pending and paid withdrawals from completed gift
// totals. Rejected withdrawals give the money back.
func ComputeBalance(earned float64, withdrawals []Withdrawal) Balance {
	var out float64
	for _, w := range withdrawals {
		if w.Status == WithdrawalRejected {
			continue
		}
		out += w.Amount
	}
	return Balance{Earned: earned, Withdrawn: out, Available: earned - out}
}
