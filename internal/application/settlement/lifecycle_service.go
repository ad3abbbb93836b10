package settlement

import (
	"context"
	"fmt"

	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleService moves settlements through their status machine and serves
// the reporting queries. Transitions go through the aggregate so every rule
// lives in one place; persistence uses optimistic locking so concurrent
// transitions on the same row fail cleanly instead of last-write-wins.
type LifecycleService struct {
	settlements settlement.Repository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewLifecycleService creates a settlement lifecycle service
func NewLifecycleService(
	settlements settlement.Repository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		settlements: settlements,
		publisher:   publisher,
		logger:      logger,
	}
}

// Transition applies one lifecycle step to a settlement
func (s *LifecycleService) Transition(ctx context.Context, cmd TransitionCommand) (*settlement.Settlement, error) {
	if cmd.SettlementID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT", "Settlement ID is required")
	}
	if !cmd.NewStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS",
			fmt.Sprintf("Unknown settlement status %q", cmd.NewStatus))
	}
	if cmd.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Transition actor is required")
	}

	row, err := s.settlements.FindByID(ctx, cmd.SettlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement %s: %w", cmd.SettlementID, err)
	}

	if err := row.TransitionTo(cmd.NewStatus, cmd.Actor, cmd.Reason); err != nil {
		return nil, err
	}

	if err := s.settlements.SaveWithLock(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save settlement %s: %w", cmd.SettlementID, err)
	}

	s.logger.Info("settlement transitioned",
		zap.String("settlement_id", row.ID.String()),
		zap.String("order_id", row.OrderID.String()),
		zap.String("new_status", row.Status.String()),
		zap.String("actor", cmd.Actor.String()),
	)

	if err := s.publisher.Publish(ctx, row.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish settlement lifecycle events",
			zap.String("settlement_id", row.ID.String()),
			zap.Error(err),
		)
	}
	row.ClearDomainEvents()

	return row, nil
}

// CancelForOrder cancels every still-cancellable settlement of an order, for
// order reversal after final approval. Terminal rows are left untouched; a
// paid row makes the reversal fail so money already moved is surfaced.
func (s *LifecycleService) CancelForOrder(ctx context.Context, orderID, actor uuid.UUID, reason string) ([]settlement.Settlement, error) {
	rows, err := s.settlements.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements for order %s: %w", orderID, err)
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}

	for _, row := range rows {
		if row.IsPaid() {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidTransition,
				fmt.Sprintf("Order %s has a paid settlement %s and cannot be reversed", orderID, row.ID))
		}
	}

	cancelled := make([]settlement.Settlement, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.IsCancelled() {
			cancelled = append(cancelled, *row)
			continue
		}
		if err := row.Cancel(actor, reason); err != nil {
			return nil, err
		}
		if err := s.settlements.SaveWithLock(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to cancel settlement %s: %w", row.ID, err)
		}
		if err := s.publisher.Publish(ctx, row.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish settlement cancellation",
				zap.String("settlement_id", row.ID.String()),
				zap.Error(err),
			)
		}
		row.ClearDomainEvents()
		cancelled = append(cancelled, *row)
	}

	s.logger.Info("order settlements cancelled",
		zap.String("order_id", orderID.String()),
		zap.Int("count", len(cancelled)),
		zap.String("reason", reason),
	)

	return cancelled, nil
}

// Get returns one settlement by ID
func (s *LifecycleService) Get(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	return s.settlements.FindByID(ctx, id)
}

// ListForOrder returns all settlements of one order
func (s *LifecycleService) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	return s.settlements.FindByOrder(ctx, orderID)
}

// List returns a settlement page matching the filter
func (s *LifecycleService) List(ctx context.Context, filter settlement.Filter) (shared.Paginated[settlement.Settlement], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	rows, err := s.settlements.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[settlement.Settlement]{}, err
	}
	total, err := s.settlements.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[settlement.Settlement]{}, err
	}

	return shared.NewPaginated(rows, total, filter.Page, filter.PageSize), nil
}

// SummaryByStatus returns count and total amount for one company and status
func (s *LifecycleService) SummaryByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (*CompanySummary, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS",
			fmt.Sprintf("Unknown settlement status %q", status))
	}

	count, err := s.settlements.CountByStatus(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	total, err := s.settlements.SumAmountByStatus(ctx, companyID, status)
	if err != nil {
		return nil, err
	}

	return &CompanySummary{
		CompanyID: companyID,
		Status:    status,
		Count:     count,
		Total:     valueobject.NewMoneyKRW(total),
	}, nil
}
