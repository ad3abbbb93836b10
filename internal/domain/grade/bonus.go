package grade

import (
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonusStatus is the lifecycle state of a grade bonus settlement
type BonusStatus string

const (
	BonusStatusPending BonusStatus = "PENDING"
	BonusStatusPaid    BonusStatus = "PAID"
)

func (s BonusStatus) IsValid() bool {
	return s == BonusStatusPending || s == BonusStatusPaid
}

// GradeBonusSettlement is the payable record emitted when a tracking row
// crosses a ladder threshold. At most one exists per (tracking, level); the
// persistence layer enforces this with a unique constraint so a retried
// crossing can never pay twice.
type GradeBonusSettlement struct {
	shared.BaseAggregateRoot
	TrackingID       uuid.UUID       `json:"tracking_id"`
	CompanyID        uuid.UUID       `json:"company_id"`
	PolicyID         uuid.UUID       `json:"policy_id"`
	Level            int             `json:"level"`
	OrdersAtCrossing int             `json:"orders_at_crossing"`
	BonusPerOrder    decimal.Decimal `json:"bonus_per_order"`
	Amount           decimal.Decimal `json:"amount"`
	Status           BonusStatus     `json:"status"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}

// NewGradeBonusSettlement creates a pending bonus for one threshold crossing
func NewGradeBonusSettlement(tracking *GradeTracking, accrual *BonusAccrual) (*GradeBonusSettlement, error) {
	if tracking == nil {
		return nil, shared.NewDomainError("INVALID_TRACKING", "Tracking row cannot be nil")
	}
	if accrual == nil {
		return nil, shared.NewDomainError("INVALID_ACCRUAL", "Bonus accrual cannot be nil")
	}
	if accrual.Level <= 0 {
		return nil, shared.NewDomainError("INVALID_LEVEL", "Bonus level must be positive")
	}
	if accrual.Amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bonus amount cannot be negative")
	}

	return &GradeBonusSettlement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TrackingID:        tracking.ID,
		CompanyID:         tracking.CompanyID,
		PolicyID:          tracking.PolicyID,
		Level:             accrual.Level,
		OrdersAtCrossing:  accrual.OrdersAtCrossing,
		BonusPerOrder:     accrual.BonusPerOrder,
		Amount:            accrual.Amount,
		Status:            BonusStatusPending,
	}, nil
}

// MarkPaid transitions the bonus to PAID
func (b *GradeBonusSettlement) MarkPaid() error {
	if b.Status == BonusStatusPaid {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("Bonus %s is already paid", b.ID))
	}
	now := time.Now()
	b.Status = BonusStatusPaid
	b.PaidAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewGradeBonusPaidEvent(b))
	return nil
}
