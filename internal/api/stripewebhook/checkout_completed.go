package stripewebhooks

import (
	"context"
	"errors"

	"mimo-api/internal/app/rewards"
	stripeinfra "mimo-api/internal/infra/stripe"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v75"
)

// handleSessionPaid runs the same verification the success page triggers, so
// a fan who closes the tab still gets the gift recorded. Verify is
// idempotent, whichever of the two arrives first wins.
func (h *Handler) handleSessionPaid(ctx context.Context, session *stripe.CheckoutSession) (string, error) {
	txID := transactionIDFromSession(session)
	logger := log.WithField("session_id", session.ID).WithField("transaction_id", txID)
	if txID == "" {
		logger.Warn("checkout session without transaction_id, ignoring")
		return "ignored", nil
	}
	if status := stripeinfra.NormalizePaymentStatus(session); status != "paid" {
		// Delayed methods settle later through async_payment_succeeded.
		logger.WithField("payment_status", status).Info("checkout completed, payment still pending")
		return "pending", nil
	}

	res, err := h.issuer.Verify(ctx, session.ID, txID)
	switch {
	case errors.Is(err, rewards.ErrTransactionNotFound), errors.Is(err, rewards.ErrSessionMismatch):
		logger.WithError(err).Warn("checkout session does not match a transaction, ignoring")
		return "ignored", nil
	case err != nil:
		return "", err
	}
	if res.AlreadyProcessed {
		return "already_processed", nil
	}
	return "received", nil
}

func (h *Handler) handleSessionFailed(ctx context.Context, session *stripe.CheckoutSession) error {
	txID := transactionIDFromSession(session)
	if txID == "" {
		return nil
	}
	log.WithField("transaction_id", txID).
		WithField("payment_status", stripeinfra.NormalizePaymentStatus(session)).
		Info("checkout session failed, marking transaction failed")
	return h.store.FailTransaction(ctx, txID)
}

func transactionIDFromSession(s *stripe.CheckoutSession) string {
	if s.Metadata != nil {
		if id := s.Metadata[stripeinfra.MetadataTransactionID]; id != "" {
			return id
		}
	}
	return s.ClientReferenceID
}
