package stripe

import (
	"strings"

	"github.com/stripe/stripe-go/v75"
)

// NormalizePaymentStatus folds a checkout session's payment and lifecycle
// status into one word. Callers of the verify function get the raw payment
// status instead; this is for webhook bookkeeping.
func NormalizePaymentStatus(s *stripe.CheckoutSession) string {
	if s == nil {
		return "none"
	}
	status := strings.TrimSpace(string(s.PaymentStatus))
	switch status {
	case "":
		return "none"
	case string(stripe.CheckoutSessionPaymentStatusPaid):
		return "paid"
	case string(stripe.CheckoutSessionPaymentStatusUnpaid):
		if s.Status == stripe.CheckoutSessionStatusExpired {
			return "expired"
		}
		return "unpaid"
	default:
		return status
	}
}

// ToCents converts a decimal price to the smallest currency unit.
func ToCents(amount float64) int64 {
	if amount <= 0 {
		return 0
	}
	return int64(amount*100 + 0.5)
}
