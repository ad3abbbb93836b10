package grade

import (
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by grade tracking
const (
	ErrCodePeriodClosed = "PERIOD_CLOSED"
	ErrCodeInactiveRow  = "INACTIVE_TRACKING"
)

// GradeTracking is the rolling achievement counter for one (company, policy)
// pair within one tracking period. Exactly one active row exists per pair;
// rollover deactivates the row and starts a fresh zero counter. Grades never
// carry over periods.
type GradeTracking struct {
	shared.BaseAggregateRoot
	CompanyID         uuid.UUID         `json:"company_id"`
	PolicyID          uuid.UUID         `json:"policy_id"`
	PeriodType        policy.PeriodType `json:"period_type"`
	PeriodStart       time.Time         `json:"period_start"`
	PeriodEnd         time.Time         `json:"period_end"`
	CurrentOrders     int               `json:"current_orders"`
	TargetOrders      int               `json:"target_orders"`
	AchievedLevel     int               `json:"achieved_level"`
	BonusPerOrder     decimal.Decimal   `json:"bonus_per_order"`
	TotalAccruedBonus decimal.Decimal   `json:"total_accrued_bonus"`
	Active            bool              `json:"active"`
}

// NewGradeTracking starts a zero counter for the period window containing at
func NewGradeTracking(companyID, policyID uuid.UUID, periodType policy.PeriodType,
	ladder policy.GradeLadder, at time.Time) (*GradeTracking, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if !periodType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD_TYPE", "Period type is not valid")
	}

	start, end := periodType.WindowAt(at)

	return &GradeTracking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		PolicyID:          policyID,
		PeriodType:        periodType,
		PeriodStart:       start,
		PeriodEnd:         end,
		CurrentOrders:     0,
		TargetOrders:      ladder.NextTarget(0),
		AchievedLevel:     0,
		BonusPerOrder:     decimal.Zero,
		TotalAccruedBonus: decimal.Zero,
		Active:            true,
	}, nil
}

// BonusAccrual describes a threshold crossing produced by RecordOrder
type BonusAccrual struct {
	Level            int
	OrdersAtCrossing int
	BonusPerOrder    decimal.Decimal
	Amount           decimal.Decimal
}

// Covers reports whether at falls inside this row's period window
func (g *GradeTracking) Covers(at time.Time) bool {
	return policy.Contains(g.PeriodStart, g.PeriodEnd, at)
}

// RecordOrder counts one qualifying settlement and evaluates the ladder.
// Returns a BonusAccrual only when the achieved level increases; jumping
// several thresholds in one increment still yields a single accrual at the
// highest level reached. Re-reaching an already-achieved level never re-pays.
//
// The bonus amount is bonus-per-order times the full period count at the
// moment of crossing, matching the platform's established payout rule.
func (g *GradeTracking) RecordOrder(ladder policy.GradeLadder, at time.Time) (*BonusAccrual, error) {
	if !g.Active {
		return nil, shared.NewDomainError(ErrCodeInactiveRow,
			"Cannot record orders on a deactivated tracking row")
	}
	if !g.Covers(at) {
		return nil, shared.NewDomainError(ErrCodePeriodClosed,
			fmt.Sprintf("Time %s is outside tracking period [%s, %s)",
				at.Format(time.RFC3339), g.PeriodStart.Format(time.RFC3339), g.PeriodEnd.Format(time.RFC3339)))
	}

	g.CurrentOrders++
	g.TargetOrders = ladder.NextTarget(g.CurrentOrders)
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	newLevel := ladder.LevelFor(g.CurrentOrders)
	if newLevel <= g.AchievedLevel {
		return nil, nil
	}

	threshold, ok := ladder.ThresholdAt(newLevel)
	if !ok {
		return nil, shared.NewDomainError("INVALID_GRADE_LADDER",
			fmt.Sprintf("Ladder has no threshold at level %d", newLevel))
	}

	amount := threshold.BonusPerOrder.Mul(decimal.NewFromInt(int64(g.CurrentOrders)))

	g.AchievedLevel = newLevel
	g.BonusPerOrder = threshold.BonusPerOrder
	g.TotalAccruedBonus = g.TotalAccruedBonus.Add(amount)

	accrual := &BonusAccrual{
		Level:            newLevel,
		OrdersAtCrossing: g.CurrentOrders,
		BonusPerOrder:    threshold.BonusPerOrder,
		Amount:           amount,
	}

	g.AddDomainEvent(NewGradeThresholdCrossedEvent(g, accrual))

	return accrual, nil
}

// Deactivate closes the row at period rollover
func (g *GradeTracking) Deactivate() {
	if !g.Active {
		return
	}
	g.Active = false
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	g.AddDomainEvent(NewGradeTrackingClosedEvent(g))
}
