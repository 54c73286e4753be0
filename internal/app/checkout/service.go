package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"mimo-api/internal/domain/billing"
	"mimo-api/internal/domain/catalog"

	"github.com/sirupsen/logrus"
)

type Store interface {
	CreatorByUsername(ctx context.Context, username string) (*catalog.Creator, error)
	FindPackage(ctx context.Context, creatorID, id string) (*catalog.PackageRow, error)
	InsertTransaction(ctx context.Context, tx *billing.Transaction) error
	SetPaymentSession(ctx context.Context, transactionID, sessionID string) error
	FailTransaction(ctx context.Context, transactionID string) error
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.PaymentSession, error)
}

var (
	ErrCreatorNotFound     = errors.New("creator not found")
	ErrPackageUnavailable  = errors.New("package not available")
	ErrPaymentsUnavailable = errors.New("payments not configured")
)

type Request struct {
	PackageID string `json:"package_id"`
	FanName   string `json:"fan_name"`
	FanEmail  string `json:"fan_email"`
	Message   string `json:"message"`
}

type Session struct {
	URL           string `json:"url"`
	TransactionID string `json:"transaction_id"`
	SessionID     string `json:"session_id"`
}

// Service opens a gift: a pending transaction plus the hosted checkout the
// fan pays through.
type Service struct {
	store    Store
	gateway  Gateway
	currency string
	appURL   string
	log      logrus.FieldLogger
}

func NewService(store Store, gateway Gateway, currency, appURL string, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if appURL == "" {
		appURL = "http://localhost:5173"
	}
	return &Service{
		store:    store,
		gateway:  gateway,
		currency: strings.ToLower(currency),
		appURL:   strings.TrimRight(appURL, "/"),
		log:      log,
	}
}

func (s *Service) Create(ctx context.Context, username string, req Request) (*Session, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}
	username = strings.ToLower(strings.TrimSpace(username))

	creator, err := s.store.CreatorByUsername(ctx, username)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	id, err := catalog.ParseID(req.PackageID)
	if err != nil || !id.IsRemote() {
		return nil, ErrPackageUnavailable
	}
	pkg, err := s.store.FindPackage(ctx, creator.ID, id.Remote())
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrPackageUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load package: %w", err)
	}
	if pkg.IsHidden || !(pkg.Price > 0) {
		return nil, ErrPackageUnavailable
	}

	fanName := catalog.CleanText(req.FanName)
	if fanName == "" {
		fanName = "Anonymous"
	}
	tx := billing.Transaction{
		CreatorID: creator.ID,
		PackageID: pkg.ID,
		Amount:    pkg.Price,
		Currency:  s.currency,
		FanName:   fanName,
		FanEmail:  strings.TrimSpace(req.FanEmail),
		Message:   catalog.CleanText(req.Message),
		Status:    billing.StatusPending,
	}
	if err := s.store.InsertTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	log := s.log.WithField("transaction_id", tx.ID).WithField("creator", creator.Username)

	session, err := s.gateway.CreateCheckout(ctx, billing.CheckoutRequest{
		TransactionID: tx.ID,
		Title:         pkg.Title,
		Amount:        pkg.Price,
		Currency:      s.currency,
		Email:         tx.FanEmail,
		SuccessURL:    s.successURL(creator.Username, tx.ID),
		CancelURL:     s.appURL + "/" + url.PathEscape(creator.Username) + "?canceled=1",
	})
	if err != nil {
		if ferr := s.store.FailTransaction(context.WithoutCancel(ctx), tx.ID); ferr != nil {
			log.WithError(ferr).Warn("failed to mark transaction failed")
		}
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if err := s.store.SetPaymentSession(ctx, tx.ID, session.ID); err != nil {
		return nil, fmt.Errorf("failed to store payment session: %w", err)
	}

	log.WithField("session_id", session.ID).Info("checkout session created")
	return &Session{URL: session.URL, TransactionID: tx.ID, SessionID: session.ID}, nil
}

// successURL is where the hosted checkout returns the fan. The page calls the
// verify-payment function with both ids. {CHECKOUT_SESSION_ID} is filled in by
// the payment provider.
func (s *Service) successURL(username, transactionID string) string {
	q := url.Values{}
	q.Set("transaction_id", transactionID)
	return s.appURL + "/" + url.PathEscape(username) + "/success?session_id={CHECKOUT_SESSION_ID}&" + q.Encode()
}
