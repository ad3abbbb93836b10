package models

import (
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PolicyModel is the persistence model for the mirrored policy table.
// Tier defaults, plan buckets and the grade ladder are stored as JSONB.
type PolicyModel struct {
	BaseModel
	Code              string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string              `gorm:"type:varchar(200);not null"`
	Carrier           string              `gorm:"type:varchar(20);not null"`
	TierDefaults      policy.TierDefaults `gorm:"type:jsonb"`
	PlanBuckets       policy.PlanBuckets  `gorm:"type:jsonb"`
	GradeLadder       policy.GradeLadder  `gorm:"type:jsonb"`
	TrackingPeriod    string              `gorm:"type:varchar(20);not null"`
	PaymentOffsetDays int                 `gorm:"not null;default:0"`
	Active            bool                `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PolicyModel) TableName() string {
	return "policies"
}

// ToDomain converts the persistence model to a domain Policy
func (m *PolicyModel) ToDomain() *policy.Policy {
	return &policy.Policy{
		BaseEntity:        m.BaseModel.ToDomain(),
		Code:              m.Code,
		Name:              m.Name,
		Carrier:           m.Carrier,
		TierDefaults:      m.TierDefaults,
		PlanBuckets:       m.PlanBuckets,
		GradeLadder:       m.GradeLadder,
		TrackingPeriod:    policy.PeriodType(m.TrackingPeriod),
		PaymentOffsetDays: m.PaymentOffsetDays,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Policy
func (m *PolicyModel) FromDomain(p *policy.Policy) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Code = p.Code
	m.Name = p.Name
	m.Carrier = p.Carrier
	m.TierDefaults = p.TierDefaults
	m.PlanBuckets = p.PlanBuckets
	m.GradeLadder = p.GradeLadder
	m.TrackingPeriod = string(p.TrackingPeriod)
	m.PaymentOffsetDays = p.PaymentOffsetDays
	m.Active = p.Active
}

// PolicyModelFromDomain creates a new persistence model from a domain Policy
func PolicyModelFromDomain(p *policy.Policy) *PolicyModel {
	m := &PolicyModel{}
	m.FromDomain(p)
	return m
}

// PolicyAssignmentModel is the persistence model for policy assignments.
// Unique on the (policy, company) pair.
type PolicyAssignmentModel struct {
	BaseModel
	PolicyID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_policy_assignment_pair,priority:1"`
	CompanyID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_policy_assignment_pair,priority:2"`
	CustomOverride    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	VisibleToChildren bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PolicyAssignmentModel) TableName() string {
	return "policy_assignments"
}

// ToDomain converts the persistence model to a domain PolicyAssignment
func (m *PolicyAssignmentModel) ToDomain() *policy.PolicyAssignment {
	return &policy.PolicyAssignment{
		BaseEntity:        m.BaseModel.ToDomain(),
		PolicyID:          m.PolicyID,
		CompanyID:         m.CompanyID,
		CustomOverride:    m.CustomOverride,
		VisibleToChildren: m.VisibleToChildren,
	}
}

// FromDomain populates the persistence model from a domain PolicyAssignment
func (m *PolicyAssignmentModel) FromDomain(a *policy.PolicyAssignment) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.PolicyID = a.PolicyID
	m.CompanyID = a.CompanyID
	m.CustomOverride = a.CustomOverride
	m.VisibleToChildren = a.VisibleToChildren
}

// PolicyAssignmentModelFromDomain creates a new persistence model from a domain PolicyAssignment
func PolicyAssignmentModelFromDomain(a *policy.PolicyAssignment) *PolicyAssignmentModel {
	m := &PolicyAssignmentModel{}
	m.FromDomain(a)
	return m
}

// RateMatrixModel is the persistence model for rate matrix cells. A NULL
// scope_company_id marks a platform-default cell. Postgres treats NULLs as
// distinct inside a unique index, so a single composite index would admit
// duplicate platform cells; platform and scoped cells each get their own
// partial unique index instead, and Save picks the matching conflict target.
type RateMatrixModel struct {
	BaseModel
	PolicyID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_rate_matrix_platform_key,priority:1,where:scope_company_id IS NULL;uniqueIndex:idx_rate_matrix_scope_key,priority:1,where:scope_company_id IS NOT NULL"`
	ScopeCompanyID *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_rate_matrix_scope_key,priority:2"`
	Carrier        string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_rate_matrix_platform_key,priority:2;uniqueIndex:idx_rate_matrix_scope_key,priority:3"`
	PlanBucket     int64           `gorm:"not null;uniqueIndex:idx_rate_matrix_platform_key,priority:3;uniqueIndex:idx_rate_matrix_scope_key,priority:4"`
	ContractPeriod int             `gorm:"not null;uniqueIndex:idx_rate_matrix_platform_key,priority:4;uniqueIndex:idx_rate_matrix_scope_key,priority:5"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (RateMatrixModel) TableName() string {
	return "rate_matrix_entries"
}

// ToDomain converts the persistence model to a domain RateMatrixEntry
func (m *RateMatrixModel) ToDomain() *policy.RateMatrixEntry {
	return &policy.RateMatrixEntry{
		BaseEntity:     m.BaseModel.ToDomain(),
		PolicyID:       m.PolicyID,
		ScopeCompanyID: m.ScopeCompanyID,
		Carrier:        m.Carrier,
		PlanBucket:     m.PlanBucket,
		ContractPeriod: m.ContractPeriod,
		Amount:         m.Amount,
	}
}

// FromDomain populates the persistence model from a domain RateMatrixEntry
func (m *RateMatrixModel) FromDomain(e *policy.RateMatrixEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.PolicyID = e.PolicyID
	m.ScopeCompanyID = e.ScopeCompanyID
	m.Carrier = e.Carrier
	m.PlanBucket = e.PlanBucket
	m.ContractPeriod = e.ContractPeriod
	m.Amount = e.Amount
}

// RateMatrixModelFromDomain creates a new persistence model from a domain RateMatrixEntry
func RateMatrixModelFromDomain(e *policy.RateMatrixEntry) *RateMatrixModel {
	m := &RateMatrixModel{}
	m.FromDomain(e)
	return m
}
