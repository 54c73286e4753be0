package earnings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mimo-api/internal/domain/billing"
)

type Store interface {
	// EarnedTotal sums the amounts of the creator's completed transactions.
	EarnedTotal(ctx context.Context, creatorID string) (float64, error)
	// ListWithdrawals returns the creator's withdrawals, newest first.
	ListWithdrawals(ctx context.Context, creatorID string) ([]billing.Withdrawal, error)
	// CreateWithdrawal inserts w if the balance still covers it, checked and
	// written in one database transaction. Otherwise it returns
	// billing.ErrInsufficientBalance.
	CreateWithdrawal(ctx context.Context, w *billing.Withdrawal) error
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrMissingPixKey    = errors.New("pix key is required")
)

type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) Balance(ctx context.Context, creatorID string) (billing.Balance, error) {
	if creatorID == "" {
		return billing.Balance{}, ErrNotAuthenticated
	}
	earned, err := s.store.EarnedTotal(ctx, creatorID)
	if err != nil {
		return billing.Balance{}, fmt.Errorf("failed to sum earnings: %w", err)
	}
	ws, err := s.store.ListWithdrawals(ctx, creatorID)
	if err != nil {
		return billing.Balance{}, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return billing.ComputeBalance(earned, ws), nil
}

func (s *Service) Withdrawals(ctx context.Context, creatorID string) ([]billing.Withdrawal, error) {
	if creatorID == "" {
		return nil, ErrNotAuthenticated
	}
	ws, err := s.store.ListWithdrawals(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	if ws == nil {
		ws = []billing.Withdrawal{}
	}
	return ws, nil
}

func (s *Service) Request(ctx context.Context, creatorID string, amount float64, pixKey string) (*billing.Withdrawal, error) {
	if creatorID == "" {
		return nil, ErrNotAuthenticated
	}
	if !(amount > 0) {
		return nil, ErrInvalidAmount
	}
	pixKey = strings.TrimSpace(pixKey)
	if pixKey == "" {
		return nil, ErrMissingPixKey
	}
	w := billing.Withdrawal{
		CreatorID: creatorID,
		Amount:    amount,
		PixKey:    pixKey,
		Status:    billing.WithdrawalPending,
	}
	if err := s.store.CreateWithdrawal(ctx, &w); err != nil {
		if errors.Is(err, billing.ErrInsufficientBalance) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return &w, nil
}
