package billing

import "errors"

// PaymentPaid is the gateway status of a settled checkout session.
const PaymentPaid = "paid"

// PaymentSession is what the payment gateway reports about a checkout.
type PaymentSession struct {
	ID            string
	URL           string
	PaymentStatus string
	// Reference is the gateway's confirmation id (payment intent), recorded on
	// the transaction when it completes.
	Reference string
	// TransactionID comes from the session metadata, when present.
	TransactionID string
}

func (s PaymentSession) Paid() bool { return s.PaymentStatus == PaymentPaid }

// CheckoutRequest describes the one-off payment for a gift.
type CheckoutRequest struct {
	TransactionID string
	Title         string
	Amount        float64
	Currency      string
	Email         string
	SuccessURL    string
	CancelURL     string
}

var (
	// ErrAlreadyCompleted is returned by stores when a transaction was
	// completed (or rewarded) by someone else first.
	ErrAlreadyCompleted = errors.New("transaction already completed")
	// ErrInsufficientBalance rejects a withdrawal above the available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
