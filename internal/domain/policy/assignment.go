package policy

import (
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PolicyAssignment links a policy to a company, optionally pinning a custom
// commission override that beats every matrix lookup. At most one row exists
// per (policy, company).
type PolicyAssignment struct {
	shared.BaseEntity
	PolicyID          uuid.UUID        `json:"policy_id"`
	CompanyID         uuid.UUID        `json:"company_id"`
	CustomOverride    *decimal.Decimal `json:"custom_override"`
	VisibleToChildren bool             `json:"visible_to_children"`
}

// NewPolicyAssignment creates a policy assignment
func NewPolicyAssignment(policyID, companyID uuid.UUID, customOverride *decimal.Decimal, visibleToChildren bool) (*PolicyAssignment, error) {
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if customOverride != nil && customOverride.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Custom override cannot be negative")
	}

	return &PolicyAssignment{
		BaseEntity:        shared.NewBaseEntity(),
		PolicyID:          policyID,
		CompanyID:         companyID,
		CustomOverride:    customOverride,
		VisibleToChildren: visibleToChildren,
	}, nil
}

// HasOverride returns true when the assignment pins a custom commission
func (a *PolicyAssignment) HasOverride() bool {
	return a.CustomOverride != nil
}
