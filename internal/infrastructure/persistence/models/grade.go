package models

import (
	"time"

	"github.com/dealerlink/backend/internal/domain/grade"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GradeTrackingModel is the persistence model for the GradeTracking aggregate
// root. The (company, policy, period_start) key is unique so concurrent
// rollovers converge on a single row per window.
type GradeTrackingModel struct {
	AggregateModel
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_grade_tracking_window,priority:1;index"`
	PolicyID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_grade_tracking_window,priority:2"`
	PeriodType        string          `gorm:"type:varchar(20);not null"`
	PeriodStart       time.Time       `gorm:"not null;uniqueIndex:idx_grade_tracking_window,priority:3"`
	PeriodEnd         time.Time       `gorm:"not null"`
	CurrentOrders     int             `gorm:"not null;default:0"`
	TargetOrders      int             `gorm:"not null;default:0"`
	AchievedLevel     int             `gorm:"not null;default:0"`
	BonusPerOrder     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAccruedBonus decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Active            bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (GradeTrackingModel) TableName() string {
	return "grade_trackings"
}

// ToDomain converts the persistence model to a domain GradeTracking
func (m *GradeTrackingModel) ToDomain() *grade.GradeTracking {
	return &grade.GradeTracking{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CompanyID:         m.CompanyID,
		PolicyID:          m.PolicyID,
		PeriodType:        policy.PeriodType(m.PeriodType),
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		CurrentOrders:     m.CurrentOrders,
		TargetOrders:      m.TargetOrders,
		AchievedLevel:     m.AchievedLevel,
		BonusPerOrder:     m.BonusPerOrder,
		TotalAccruedBonus: m.TotalAccruedBonus,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain GradeTracking
func (m *GradeTrackingModel) FromDomain(g *grade.GradeTracking) {
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	m.CompanyID = g.CompanyID
	m.PolicyID = g.PolicyID
	m.PeriodType = string(g.PeriodType)
	m.PeriodStart = g.PeriodStart
	m.PeriodEnd = g.PeriodEnd
	m.CurrentOrders = g.CurrentOrders
	m.TargetOrders = g.TargetOrders
	m.AchievedLevel = g.AchievedLevel
	m.BonusPerOrder = g.BonusPerOrder
	m.TotalAccruedBonus = g.TotalAccruedBonus
	m.Active = g.Active
}

// GradeTrackingModelFromDomain creates a new persistence model from a domain GradeTracking
func GradeTrackingModelFromDomain(g *grade.GradeTracking) *GradeTrackingModel {
	m := &GradeTrackingModel{}
	m.FromDomain(g)
	return m
}

// GradeBonusModel is the persistence model for grade bonus settlements.
// Unique on (tracking, level) so a threshold pays out at most once.
type GradeBonusModel struct {
	AggregateModel
	TrackingID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_grade_bonus_level,priority:1"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PolicyID         uuid.UUID       `gorm:"type:uuid;not null"`
	Level            int             `gorm:"not null;uniqueIndex:idx_grade_bonus_level,priority:2"`
	OrdersAtCrossing int             `gorm:"not null"`
	BonusPerOrder    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status           string          `gorm:"type:varchar(20);not null;index"`
	PaidAt           *time.Time
}

// TableName returns the table name for GORM
func (GradeBonusModel) TableName() string {
	return "grade_bonus_settlements"
}

// ToDomain converts the persistence model to a domain GradeBonusSettlement
func (m *GradeBonusModel) ToDomain() *grade.GradeBonusSettlement {
	return &grade.GradeBonusSettlement{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TrackingID:        m.TrackingID,
		CompanyID:         m.CompanyID,
		PolicyID:          m.PolicyID,
		Level:             m.Level,
		OrdersAtCrossing:  m.OrdersAtCrossing,
		BonusPerOrder:     m.BonusPerOrder,
		Amount:            m.Amount,
		Status:            grade.BonusStatus(m.Status),
		PaidAt:            m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain GradeBonusSettlement
func (m *GradeBonusModel) FromDomain(b *grade.GradeBonusSettlement) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.TrackingID = b.TrackingID
	m.CompanyID = b.CompanyID
	m.PolicyID = b.PolicyID
	m.Level = b.Level
	m.OrdersAtCrossing = b.OrdersAtCrossing
	m.BonusPerOrder = b.BonusPerOrder
	m.Amount = b.Amount
	m.Status = string(b.Status)
	m.PaidAt = b.PaidAt
}

// GradeBonusModelFromDomain creates a new persistence model from a domain GradeBonusSettlement
func GradeBonusModelFromDomain(b *grade.GradeBonusSettlement) *GradeBonusModel {
	m := &GradeBonusModel{}
	m.FromDomain(b)
	return m
}
