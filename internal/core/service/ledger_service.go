package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

// LedgerService is the only writer of user balances. Every change is a
// read-modify-write under the user's lock.
type LedgerService struct {
	users  ports.UserRepository
	locker ports.Locker
	log    zerolog.Logger
}

func NewLedgerService(users ports.UserRepository, locker ports.Locker, log zerolog.Logger) *LedgerService {
	return &LedgerService{users: users, locker: locker, log: log}
}

// Deduct removes amount from the user's balance. It fails with
// domain.ErrInsufficientFunds, leaving the balance untouched, when the
// balance does not cover amount.
func (s *LedgerService) Deduct(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("deduct: %w", domain.ErrInvalidAmount)
	}

	ctx, release, err := s.locker.Acquire(ctx, userKey(userID))
	if err != nil {
		return 0, fmt.Errorf("deduct: %w", err)
	}
	defer release()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("deduct: %w", err)
	}
	if !user.CanAfford(amount) {
		return user.Balance, fmt.Errorf("deduct: %w (balance %d, amount %d)", domain.ErrInsufficientFunds, user.Balance, amount)
	}

	balance := user.Balance - amount
	if err := s.users.SetBalance(ctx, userID, balance); err != nil {
		return 0, fmt.Errorf("deduct: save balance: %w", err)
	}

	metrics.LedgerMovementsTotal.WithLabelValues("debit").Inc()
	s.log.Debug().Str("user_id", userID).Int64("amount", amount).Int64("balance", balance).Msg("balance debited")
	return balance, nil
}

// Add credits amount to the user's balance.
func (s *LedgerService) Add(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("add: %w", domain.ErrInvalidAmount)
	}

	ctx, release, err := s.locker.Acquire(ctx, userKey(userID))
	if err != nil {
		return 0, fmt.Errorf("add: %w", err)
	}
	defer release()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("add: %w", err)
	}
	if user.Balance > math.MaxInt64-amount {
		return user.Balance, fmt.Errorf("add: %w (balance would overflow)", domain.ErrInvalidAmount)
	}

	balance := user.Balance + amount
	if err := s.users.SetBalance(ctx, userID, balance); err != nil {
		return 0, fmt.Errorf("add: save balance: %w", err)
	}

	metrics.LedgerMovementsTotal.WithLabelValues("credit").Inc()
	s.log.Debug().Str("user_id", userID).Int64("amount", amount).Int64("balance", balance).Msg("balance credited")
	return balance, nil
}

// Balance returns the current balance without locking.
func (s *LedgerService) Balance(ctx context.Context, userID string) (int64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return user.Balance, nil
}
