package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mimo-api/internal/domain/billing"
	"mimo-api/internal/domain/catalog"

	"github.com/sirupsen/logrus"
)

type Store interface {
	FindTransaction(ctx context.Context, id string) (*billing.Transaction, error)
	FindRewardByTransaction(ctx context.Context, transactionID string) (*billing.Reward, error)
	FindRewardByToken(ctx context.Context, token string) (*billing.Reward, error)
	FindPackageByID(ctx context.Context, id string) (*catalog.PackageRow, error)

	// CompleteWithReward marks a pending transaction completed, inserts the
	// reward and links it back, all in one database transaction. It returns
	// billing.ErrAlreadyCompleted when the transaction is no longer pending.
	CompleteWithReward(ctx context.Context, transactionID, paymentReference string, reward *billing.Reward, now time.Time) error
	// AttachReward inserts a reward for an already completed transaction and
	// links it. billing.ErrAlreadyCompleted means a reward already exists.
	AttachReward(ctx context.Context, transactionID string, reward *billing.Reward) error
}

type PaymentGateway interface {
	SessionStatus(ctx context.Context, sessionID string) (*billing.PaymentSession, error)
}

var (
	ErrMissingParams       = errors.New("missing session id or transaction id")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSessionMismatch     = errors.New("payment session does not belong to this transaction")
)

// Result is the response body of a verification.
type Result struct {
	Success          bool   `json:"success"`
	Status           string `json:"status,omitempty"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
	RewardID         string `json:"reward_id,omitempty"`
}

// Issuer turns a paid checkout into a completed transaction with exactly one
// reward. Verify is safe to call any number of times for the same
// transaction.
type Issuer struct {
	store   Store
	gateway PaymentGateway
	ttl     time.Duration
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewIssuer(store Store, gateway PaymentGateway, ttl time.Duration, log logrus.FieldLogger) *Issuer {
	if ttl <= 0 {
		ttl = billing.RewardTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Issuer{store: store, gateway: gateway, ttl: ttl, now: time.Now, log: log}
}

func (i *Issuer) Verify(ctx context.Context, sessionID, transactionID string) (Result, error) {
	if sessionID == "" || transactionID == "" {
		return Result{}, ErrMissingParams
	}
	log := i.log.WithField("transaction_id", transactionID).WithField("session_id", sessionID)

	session, err := i.gateway.SessionStatus(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch payment session: %w", err)
	}
	if !session.Paid() {
		log.WithField("payment_status", session.PaymentStatus).Info("payment not settled yet")
		return Result{Success: false, Status: session.PaymentStatus}, nil
	}
	if session.TransactionID != "" && session.TransactionID != transactionID {
		return Result{}, ErrSessionMismatch
	}

	tx, err := i.store.FindTransaction(ctx, transactionID)
	if errors.Is(err, catalog.ErrNotFound) {
		return Result{}, ErrTransactionNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx.PaymentSessionID != nil && *tx.PaymentSessionID != "" && *tx.PaymentSessionID != sessionID {
		return Result{}, ErrSessionMismatch
	}

	if tx.Completed() {
		return i.alreadyProcessed(ctx, log, tx.ID)
	}

	reference := session.Reference
	if reference == "" {
		reference = session.ID
	}
	now := i.now()
	reward, err := billing.NewReward(tx.ID, now, i.ttl)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	err = i.store.CompleteWithReward(ctx, tx.ID, reference, &reward, now)
	if errors.Is(err, billing.ErrAlreadyCompleted) {
		return i.alreadyProcessed(ctx, log, tx.ID)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to complete transaction: %w", err)
	}

	log.WithField("reward_id", reward.ID).Info("transaction completed, reward issued")
	return Result{Success: true, RewardID: reward.ID}, nil
}

// alreadyProcessed answers for a completed transaction. A completed
// transaction without a reward gets its missing reward minted here, once.
func (i *Issuer) alreadyProcessed(ctx context.Context, log logrus.FieldLogger, transactionID string) (Result, error) {
	existing, err := i.store.FindRewardByTransaction(ctx, transactionID)
	if err == nil {
		return Result{Success: true, AlreadyProcessed: true, RewardID: existing.ID}, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return Result{}, fmt.Errorf("failed to load reward: %w", err)
	}

	log.Warn("completed transaction has no reward, issuing the missing one")
	reward, err := billing.NewReward(transactionID, i.now(), i.ttl)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	err = i.store.AttachReward(ctx, transactionID, &reward)
	if errors.Is(err, billing.ErrAlreadyCompleted) {
		existing, err := i.store.FindRewardByTransaction(ctx, transactionID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load reward: %w", err)
		}
		return Result{Success: true, AlreadyProcessed: true, RewardID: existing.ID}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to attach reward: %w", err)
	}
	return Result{Success: true, AlreadyProcessed: true, RewardID: reward.ID}, nil
}
