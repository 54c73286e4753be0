package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mimo-api/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// MetadataTransactionID links a checkout session back to its transaction.
const MetadataTransactionID = "transaction_id"

var ErrNotConfigured = errors.New("stripe secret key not configured")

// Gateway talks to Stripe checkout sessions with its own API client, so the
// process-wide stripe.Key is never touched.
type Gateway struct {
	api *client.API
}

func NewGateway(secretKey string) (*Gateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNotConfigured
	}
	return &Gateway{api: client.New(secretKey, nil)}, nil
}

func (g *Gateway) SessionStatus(ctx context.Context, sessionID string) (*billing.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session %s: %w", sessionID, err)
	}
	return toPaymentSession(s), nil
}

func (g *Gateway) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.PaymentSession, error) {
	cents := ToCents(req.Amount)
	if cents <= 0 {
		return nil, fmt.Errorf("invalid checkout amount %v", req.Amount)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Title),
					},
					UnitAmount: stripe.Int64(cents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.TransactionID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{MetadataTransactionID: req.TransactionID},
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata(MetadataTransactionID, req.TransactionID)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return toPaymentSession(s), nil
}

func toPaymentSession(s *stripe.CheckoutSession) *billing.PaymentSession {
	out := &billing.PaymentSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
	}
	if s.PaymentIntent != nil {
		out.Reference = s.PaymentIntent.ID
	}
	if s.Metadata != nil {
		out.TransactionID = s.Metadata[MetadataTransactionID]
	}
	if out.TransactionID == "" {
		out.TransactionID = s.ClientReferenceID
	}
	return out
}
