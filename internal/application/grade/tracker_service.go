package grade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/grade"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GradeStatus is the reporting view of one (company, policy) counter. The
// accrued total is currency-tagged for the reporting surface.
type GradeStatus struct {
	CompanyID         uuid.UUID         `json:"company_id"`
	PolicyID          uuid.UUID         `json:"policy_id"`
	CurrentOrders     int               `json:"current_orders"`
	TargetOrders      int               `json:"target_orders"`
	AchievedLevel     int               `json:"achieved_level"`
	BonusPerOrder     decimal.Decimal   `json:"bonus_per_order"`
	TotalAccruedBonus valueobject.Money `json:"total_accrued_bonus"`
	PeriodEnd         time.Time         `json:"period_end"`
}

// TrackerService maintains the per-(company, policy) achievement counters and
// emits grade bonuses on threshold crossings.
//
// RecordQualifyingSettlement is the hot path. It locks the active tracking
// row for update, applies the increment and ladder check, and inserts any
// bonus inside the same transaction. Rollover races converge through
// CreateIfAbsent; bonus duplication is excluded twice, by the lock and by the
// unique (tracking, level) constraint.
type TrackerService struct {
	policies  policy.PolicyRepository
	txScope   TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewTrackerService creates a grade tracker service
func NewTrackerService(
	policies policy.PolicyRepository,
	txScope TransactionScope,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *TrackerService {
	return &TrackerService{
		policies:  policies,
		txScope:   txScope,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordQualifyingSettlement counts one newly inserted pending settlement
// toward the payee's grade. Called exactly once per inserted row, after the
// settlement transaction commits. Period attribution follows the order's
// approval time, not the processing time, so a redelivered order still lands
// in the period it was approved in.
func (s *TrackerService) RecordQualifyingSettlement(ctx context.Context, row *settlement.Settlement, approvedAt time.Time) error {
	pol, err := s.policies.FindByID(ctx, row.PolicyID)
	if err != nil {
		return fmt.Errorf("failed to load policy %s: %w", row.PolicyID, err)
	}
	if len(pol.GradeLadder) == 0 {
		// policy has no bonus ladder, nothing to track
		return nil
	}

	at := approvedAt
	if at.IsZero() {
		at = s.now()
	}
	var pending []shared.DomainEvent

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tracking, err := s.lockActiveRow(ctx, repos, row.PayeeID, pol, at)
		if err != nil {
			return err
		}

		if at.Before(tracking.PeriodStart) {
			// settlement from a period that already rolled over; grades never
			// carry over, so the closed period's counter stays final
			s.logger.Warn("settlement predates active tracking period, not counted",
				zap.String("settlement_id", row.ID.String()),
				zap.String("company_id", row.PayeeID.String()),
				zap.Time("period_start", tracking.PeriodStart),
			)
			return nil
		}

		accrual, err := tracking.RecordOrder(pol.GradeLadder, at)
		if err != nil {
			return err
		}
		if err := repos.Trackings().Save(ctx, tracking); err != nil {
			return fmt.Errorf("failed to save tracking row %s: %w", tracking.ID, err)
		}

		if accrual != nil {
			bonus, err := grade.NewGradeBonusSettlement(tracking, accrual)
			if err != nil {
				return err
			}
			inserted, err := repos.Bonuses().CreateIfAbsent(ctx, bonus)
			if err != nil {
				return fmt.Errorf("failed to insert grade bonus: %w", err)
			}
			if !inserted {
				s.logger.Warn("grade bonus already exists for crossing, skipping",
					zap.String("tracking_id", tracking.ID.String()),
					zap.Int("level", accrual.Level),
				)
			} else {
				s.logger.Info("grade threshold crossed",
					zap.String("company_id", tracking.CompanyID.String()),
					zap.String("policy_id", tracking.PolicyID.String()),
					zap.Int("level", accrual.Level),
					zap.Int("orders", accrual.OrdersAtCrossing),
					zap.String("bonus_amount", accrual.Amount.String()),
				)
			}
		}

		pending = append(pending, tracking.GetDomainEvents()...)
		tracking.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	if len(pending) > 0 {
		if err := s.publisher.Publish(ctx, pending...); err != nil {
			s.logger.Error("failed to publish grade events", zap.Error(err))
		}
	}

	return nil
}

// lockActiveRow returns the row-locked active tracking row covering at,
// rolling the period over or starting a fresh counter when needed.
func (s *TrackerService) lockActiveRow(ctx context.Context, repos TransactionalRepositories,
	companyID uuid.UUID, pol *policy.Policy, at time.Time) (*grade.GradeTracking, error) {

	tracking, err := repos.Trackings().FindActiveForUpdate(ctx, companyID, pol.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if tracking != nil && (tracking.Covers(at) || at.Before(tracking.PeriodStart)) {
		return tracking, nil
	}

	// period rolled over (or no row yet): close the old row and start a zero
	// counter for the window containing at
	if tracking != nil {
		tracking.Deactivate()
		if err := repos.Trackings().Save(ctx, tracking); err != nil {
			return nil, fmt.Errorf("failed to close tracking period: %w", err)
		}
		s.logger.Info("grade tracking period rolled over",
			zap.String("company_id", companyID.String()),
			zap.String("policy_id", pol.ID.String()),
			zap.Time("closed_period_end", tracking.PeriodEnd),
		)
	}

	fresh, err := grade.NewGradeTracking(companyID, pol.ID, pol.TrackingPeriod, pol.GradeLadder, at)
	if err != nil {
		return nil, err
	}

	// concurrent rollovers race here; CreateIfAbsent picks a single winner
	active, err := repos.Trackings().CreateIfAbsent(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to start tracking period: %w", err)
	}
	if active.ID != fresh.ID {
		// lost the race; re-read the winner's row under the row lock so the
		// increment cannot collide with a concurrent recorder
		locked, err := repos.Trackings().FindActiveForUpdate(ctx, companyID, pol.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock adopted tracking row: %w", err)
		}
		return locked, nil
	}
	return active, nil
}

// Status returns the reporting view for one (company, policy) pair. When no
// active row exists yet the zero counter for the current window is synthesized
// without writing anything.
func (s *TrackerService) Status(ctx context.Context, companyID, policyID uuid.UUID) (*GradeStatus, error) {
	pol, err := s.policies.FindByID(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}

	var tracking *grade.GradeTracking
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tracking, err = repos.Trackings().FindActive(ctx, companyID, policyID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	if tracking == nil || !tracking.Covers(now) {
		_, end := pol.TrackingPeriod.WindowAt(now)
		return &GradeStatus{
			CompanyID:         companyID,
			PolicyID:          policyID,
			CurrentOrders:     0,
			TargetOrders:      pol.GradeLadder.NextTarget(0),
			AchievedLevel:     0,
			BonusPerOrder:     decimal.Zero,
			TotalAccruedBonus: valueobject.ZeroKRW(),
			PeriodEnd:         end,
		}, nil
	}

	return &GradeStatus{
		CompanyID:         tracking.CompanyID,
		PolicyID:          tracking.PolicyID,
		CurrentOrders:     tracking.CurrentOrders,
		TargetOrders:      tracking.TargetOrders,
		AchievedLevel:     tracking.AchievedLevel,
		BonusPerOrder:     tracking.BonusPerOrder,
		TotalAccruedBonus: valueobject.NewMoneyKRW(tracking.TotalAccruedBonus),
		PeriodEnd:         tracking.PeriodEnd,
	}, nil
}

// ListBonuses returns all bonus settlements accrued by a company
func (s *TrackerService) ListBonuses(ctx context.Context, companyID uuid.UUID) ([]*grade.GradeBonusSettlement, error) {
	var bonuses []*grade.GradeBonusSettlement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bonuses, err = repos.Bonuses().FindByCompany(ctx, companyID)
		return err
	})
	return bonuses, err
}

// PayBonus marks one bonus settlement as paid
func (s *TrackerService) PayBonus(ctx context.Context, bonusID uuid.UUID) (*grade.GradeBonusSettlement, error) {
	var bonus *grade.GradeBonusSettlement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bonus, err = repos.Bonuses().FindByID(ctx, bonusID)
		if err != nil {
			return err
		}
		if err := bonus.MarkPaid(); err != nil {
			return err
		}
		return repos.Bonuses().Save(ctx, bonus)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, bonus.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish bonus paid event",
			zap.String("bonus_id", bonus.ID.String()),
			zap.Error(err),
		)
	}
	bonus.ClearDomainEvents()

	return bonus, nil
}
