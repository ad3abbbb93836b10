package grade

import (
	"time"

	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Grade event types
const (
	EventTypeGradeThresholdCrossed = "grade.threshold_crossed"
	EventTypeGradeTrackingClosed   = "grade.tracking_closed"
	EventTypeGradeBonusPaid        = "grade.bonus_paid"
)

// GradeThresholdCrossedEvent is raised when a tracking row reaches a new
// ladder level within its period
type GradeThresholdCrossedEvent struct {
	shared.BaseDomainEvent
	CompanyID        uuid.UUID       `json:"company_id"`
	PolicyID         uuid.UUID       `json:"policy_id"`
	Level            int             `json:"level"`
	OrdersAtCrossing int             `json:"orders_at_crossing"`
	BonusAmount      decimal.Decimal `json:"bonus_amount"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
}

func NewGradeThresholdCrossedEvent(tracking *GradeTracking, accrual *BonusAccrual) *GradeThresholdCrossedEvent {
	return &GradeThresholdCrossedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeGradeThresholdCrossed, "GradeTracking", tracking.ID),
		CompanyID:        tracking.CompanyID,
		PolicyID:         tracking.PolicyID,
		Level:            accrual.Level,
		OrdersAtCrossing: accrual.OrdersAtCrossing,
		BonusAmount:      accrual.Amount,
		PeriodStart:      tracking.PeriodStart,
		PeriodEnd:        tracking.PeriodEnd,
	}
}

// GradeTrackingClosedEvent is raised when a row is deactivated at rollover
type GradeTrackingClosedEvent struct {
	shared.BaseDomainEvent
	CompanyID    uuid.UUID       `json:"company_id"`
	PolicyID     uuid.UUID       `json:"policy_id"`
	FinalOrders  int             `json:"final_orders"`
	FinalLevel   int             `json:"final_level"`
	AccruedBonus decimal.Decimal `json:"accrued_bonus"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
}

func NewGradeTrackingClosedEvent(tracking *GradeTracking) *GradeTrackingClosedEvent {
	return &GradeTrackingClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGradeTrackingClosed, "GradeTracking", tracking.ID),
		CompanyID:       tracking.CompanyID,
		PolicyID:        tracking.PolicyID,
		FinalOrders:     tracking.CurrentOrders,
		FinalLevel:      tracking.AchievedLevel,
		AccruedBonus:    tracking.TotalAccruedBonus,
		PeriodStart:     tracking.PeriodStart,
		PeriodEnd:       tracking.PeriodEnd,
	}
}

// GradeBonusPaidEvent is raised when a bonus settlement is paid out
type GradeBonusPaidEvent struct {
	shared.BaseDomainEvent
	TrackingID uuid.UUID       `json:"tracking_id"`
	CompanyID  uuid.UUID       `json:"company_id"`
	Level      int             `json:"level"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
}

func NewGradeBonusPaidEvent(bonus *GradeBonusSettlement) *GradeBonusPaidEvent {
	return &GradeBonusPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGradeBonusPaid, "GradeBonusSettlement", bonus.ID),
		TrackingID:      bonus.TrackingID,
		CompanyID:       bonus.CompanyID,
		Level:           bonus.Level,
		Amount:          bonus.Amount,
		PaidAt:          *bonus.PaidAt,
	}
}
