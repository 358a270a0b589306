package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

const (
	compensationAttempts = 3
	compensationBackoff  = 50 * time.Millisecond
)

// PurchaseService runs the buy saga: debit the ledger, grant the item, and
// refund the debit if the grant fails. Every request is recorded in the
// attempt log under its request id so a retried request never debits twice.
type PurchaseService struct {
	catalog  ports.CatalogRepository
	ledger   ports.LedgerService
	granter  ports.InventoryService
	attempts ports.PurchaseRepository
	locker   ports.Locker
	log      zerolog.Logger

	backoff time.Duration
}

func NewPurchaseService(
	catalog ports.CatalogRepository,
	ledger ports.LedgerService,
	granter ports.InventoryService,
	attempts ports.PurchaseRepository,
	locker ports.Locker,
	log zerolog.Logger,
) *PurchaseService {
	return &PurchaseService{
		catalog:  catalog,
		ledger:   ledger,
		granter:  granter,
		attempts: attempts,
		locker:   locker,
		log:      log,
		backoff:  compensationBackoff,
	}
}

// Buy purchases one unit of input.ItemID for input.UserID.
func (s *PurchaseService) Buy(ctx context.Context, input ports.BuyInput) (*ports.PurchaseResult, error) {
	if input.RequestID == "" {
		input.RequestID = uuid.NewString()
	}

	lockCtx, release, err := s.locker.Acquire(ctx, purchaseKey(input.RequestID))
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	defer release()

	// 1. Idempotency: replay anything that already moved money.
	prior, err := s.attempts.FindByRequestID(lockCtx, input.RequestID)
	switch {
	case err == nil:
		if prior.UserID != input.UserID || prior.ItemID != input.ItemID {
			return nil, fmt.Errorf("buy: request %s: %w", input.RequestID, domain.ErrDuplicateRequest)
		}
		if !prior.Status.Retryable() {
			return s.replay(prior)
		}
	case errors.Is(err, domain.ErrPurchaseNotFound):
		prior = nil
	default:
		return nil, fmt.Errorf("buy: load attempt: %w", err)
	}

	// 2. Resolve the item. Nothing has happened yet.
	item, err := s.catalog.FindByID(lockCtx, input.ItemID)
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("buy: %w", err)
	}

	// 3. Record the attempt before touching money.
	now := time.Now().UTC()
	attempt := &domain.PurchaseAttempt{
		RequestID: input.RequestID,
		UserID:    input.UserID,
		ItemID:    item.ID,
		Price:     item.Price,
		Status:    domain.AttemptPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prior == nil {
		err = s.attempts.Insert(lockCtx, attempt)
	} else {
		attempt.CreatedAt = prior.CreatedAt
		err = s.attempts.Save(lockCtx, attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("buy: record attempt: %w", err)
	}

	// 4. Debit.
	balance, err := s.ledger.Deduct(lockCtx, input.UserID, item.Price)
	if err != nil {
		attempt.Status = domain.AttemptRejected
		attempt.Reason = err.Error()
		s.record(context.WithoutCancel(ctx), attempt)
		metrics.PurchasesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("buy: %w", err)
	}

	// Money moved: the rest must finish even if the caller went away.
	sagaCtx := context.WithoutCancel(ctx)

	// 5. Grant, or compensate.
	granted, err := s.granter.Grant(sagaCtx, input.UserID, item.ID, 1)
	if err != nil {
		return s.compensate(sagaCtx, attempt, err)
	}

	attempt.Status = domain.AttemptSucceeded
	attempt.NewBalance = balance
	attempt.Item = granted
	s.record(sagaCtx, attempt)

	metrics.PurchasesTotal.WithLabelValues("success").Inc()
	s.log.Info().
		Str("request_id", input.RequestID).
		Str("user_id", input.UserID).
		Str("item_id", item.ID).
		Int64("price", item.Price).
		Int64("balance", balance).
		Msg("purchase completed")

	return &ports.PurchaseResult{
		RequestID:     input.RequestID,
		Outcome:       domain.OutcomeSuccess,
		InventoryItem: granted,
		NewBalance:    balance,
	}, nil
}

// Unreconciled lists attempts whose refund failed.
func (s *PurchaseService) Unreconciled(ctx context.Context) ([]*domain.PurchaseAttempt, error) {
	attempts, err := s.attempts.ListByStatus(ctx, domain.AttemptNeedsReconciliation)
	if err != nil {
		return nil, fmt.Errorf("list unreconciled: %w", err)
	}
	return attempts, nil
}

// compensate refunds the debit after a failed grant.
func (s *PurchaseService) compensate(ctx context.Context, attempt *domain.PurchaseAttempt, grantErr error) (*ports.PurchaseResult, error) {
	var refundErr error
	for i := 0; i < compensationAttempts; i++ {
		if i > 0 {
			time.Sleep(s.backoff * time.Duration(i))
		}
		balance, err := s.ledger.Add(ctx, attempt.UserID, attempt.Price)
		if err == nil {
			attempt.Status = domain.AttemptRolledBack
			attempt.Reason = grantErr.Error()
			attempt.NewBalance = balance
			s.record(ctx, attempt)

			metrics.PurchasesTotal.WithLabelValues("rolled_back").Inc()
			s.log.Warn().Err(grantErr).
				Str("request_id", attempt.RequestID).
				Str("user_id", attempt.UserID).
				Int64("refunded", attempt.Price).
				Msg("purchase rolled back")

			return &ports.PurchaseResult{
				RequestID:  attempt.RequestID,
				Outcome:    domain.OutcomeRolledBack,
				NewBalance: balance,
			}, fmt.Errorf("buy: %w: %v", domain.ErrGrantFailed, grantErr)
		}
		refundErr = err
	}

	attempt.Status = domain.AttemptNeedsReconciliation
	attempt.Reason = fmt.Sprintf("grant: %v; refund: %v", grantErr, refundErr)
	s.record(ctx, attempt)

	metrics.PurchasesTotal.WithLabelValues("needs_reconciliation").Inc()
	metrics.CompensationFailuresTotal.Inc()
	s.log.Error().
		Bool("reconciliation_required", true).
		Str("request_id", attempt.RequestID).
		Str("user_id", attempt.UserID).
		Str("item_id", attempt.ItemID).
		Int64("amount", attempt.Price).
		AnErr("grant_error", grantErr).
		AnErr("refund_error", refundErr).
		Msg("purchase compensation failed")

	return &ports.PurchaseResult{
		RequestID: attempt.RequestID,
		Outcome:   domain.OutcomeNeedsReconciliation,
	}, fmt.Errorf("buy: %w: %s", domain.ErrCompensationFailed, attempt.Reason)
}

// replay answers a request id whose attempt already moved money.
func (s *PurchaseService) replay(a *domain.PurchaseAttempt) (*ports.PurchaseResult, error) {
	metrics.PurchasesTotal.WithLabelValues("replayed").Inc()
	s.log.Info().Str("request_id", a.RequestID).Str("status", string(a.Status)).Msg("purchase replay")

	if a.Status == domain.AttemptSucceeded {
		return &ports.PurchaseResult{
			RequestID:     a.RequestID,
			Outcome:       domain.OutcomeSuccess,
			InventoryItem: a.Item,
			NewBalance:    a.NewBalance,
			Replayed:      true,
		}, nil
	}

	// pending (interrupted) or needs_reconciliation: the debit may have
	// happened without a grant. Never run it again.
	return &ports.PurchaseResult{
		RequestID: a.RequestID,
		Outcome:   domain.OutcomeNeedsReconciliation,
		Replayed:  true,
	}, fmt.Errorf("buy: request %s is %s: %w", a.RequestID, a.Status, domain.ErrCompensationFailed)
}

// record persists the attempt's new state. Failures are logged, not
// returned: the money movement already happened and the result stands.
func (s *PurchaseService) record(ctx context.Context, a *domain.PurchaseAttempt) {
	a.UpdatedAt = time.Now().UTC()
	if err := s.attempts.Save(ctx, a); err != nil {
		s.log.Error().Err(err).
			Str("request_id", a.RequestID).
			Str("status", string(a.Status)).
			Msg("failed to record purchase attempt")
	}
}
