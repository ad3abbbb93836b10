package models

import (
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementModel is the persistence model for the Settlement aggregate root.
// The (order, payer, payee) edge key is unique so regenerating an order's
// settlements is a no-op at the database level.
type SettlementModel struct {
	AggregateModel
	OrderID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_edge,priority:1"`
	OrderNumber         string          `gorm:"type:varchar(50);not null;index"`
	PolicyID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PayerID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_edge,priority:2;index"`
	PayerName           string          `gorm:"type:varchar(200);not null"`
	PayeeID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_edge,priority:3;index"`
	PayeeName           string          `gorm:"type:varchar(200);not null"`
	Carrier             string          `gorm:"type:varchar(20);not null"`
	PlanAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PlanBucket          int64           `gorm:"not null"`
	ContractPeriod      int             `gorm:"not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RateSource          string          `gorm:"type:varchar(30);not null"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
	ExpectedPaymentDate time.Time       `gorm:"not null"`
	ApprovedAt          *time.Time
	PaidAt              *time.Time
	CancelledAt         *time.Time
	CancelReason        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the persistence model to a domain Settlement
func (m *SettlementModel) ToDomain() *settlement.Settlement {
	return &settlement.Settlement{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		OrderID:             m.OrderID,
		OrderNumber:         m.OrderNumber,
		PolicyID:            m.PolicyID,
		PayerID:             m.PayerID,
		PayerName:           m.PayerName,
		PayeeID:             m.PayeeID,
		PayeeName:           m.PayeeName,
		Carrier:             m.Carrier,
		PlanAmount:          m.PlanAmount,
		PlanBucket:          m.PlanBucket,
		ContractPeriod:      m.ContractPeriod,
		Amount:              m.Amount,
		RateSource:          policy.RateSource(m.RateSource),
		Status:              settlement.Status(m.Status),
		ExpectedPaymentDate: m.ExpectedPaymentDate,
		ApprovedAt:          m.ApprovedAt,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Settlement
func (m *SettlementModel) FromDomain(s *settlement.Settlement) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.OrderID = s.OrderID
	m.OrderNumber = s.OrderNumber
	m.PolicyID = s.PolicyID
	m.PayerID = s.PayerID
	m.PayerName = s.PayerName
	m.PayeeID = s.PayeeID
	m.PayeeName = s.PayeeName
	m.Carrier = s.Carrier
	m.PlanAmount = s.PlanAmount
	m.PlanBucket = s.PlanBucket
	m.ContractPeriod = s.ContractPeriod
	m.Amount = s.Amount
	m.RateSource = string(s.RateSource)
	m.Status = string(s.Status)
	m.ExpectedPaymentDate = s.ExpectedPaymentDate
	m.ApprovedAt = s.ApprovedAt
	m.PaidAt = s.PaidAt
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason
}

// SettlementModelFromDomain creates a new persistence model from a domain Settlement
func SettlementModelFromDomain(s *settlement.Settlement) *SettlementModel {
	m := &SettlementModel{}
	m.FromDomain(s)
	return m
}
