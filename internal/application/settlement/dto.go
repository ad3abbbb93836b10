package settlement

import (
	"time"

	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateCommand carries the final-approved order details the platform hands
// to the engine. The order itself stays external; only this snapshot crosses
// the boundary.
type GenerateCommand struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CompanyID      uuid.UUID       `json:"company_id"`
	PolicyID       uuid.UUID       `json:"policy_id"`
	Carrier        string          `json:"carrier"`
	PlanAmount     decimal.Decimal `json:"plan_amount"`
	ContractPeriod int             `json:"contract_period"`
	ApprovedAt     time.Time       `json:"approved_at"`
}

// Validate checks the command before any chain resolution happens
func (c GenerateCommand) Validate() error {
	if c.OrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID is required")
	}
	if c.CompanyID == uuid.Nil {
		return shared.NewDomainError("INVALID_COMPANY", "Company ID is required")
	}
	if c.PolicyID == uuid.Nil {
		return shared.NewDomainError("INVALID_POLICY", "Policy ID is required")
	}
	if c.Carrier == "" {
		return shared.NewDomainError("INVALID_CARRIER", "Carrier is required")
	}
	if !c.PlanAmount.IsPositive() {
		return shared.NewDomainError("INVALID_PLAN_AMOUNT", "Plan amount must be positive")
	}
	if c.ContractPeriod <= 0 {
		return shared.NewDomainError("INVALID_CONTRACT_PERIOD", "Contract period must be positive")
	}
	if c.ApprovedAt.IsZero() {
		return shared.NewDomainError("INVALID_APPROVED_AT", "Approval time is required")
	}
	return nil
}

// GenerateResult reports what one generation call did. On an idempotent
// re-invocation Created is empty and Existing holds the rows written by the
// first call.
type GenerateResult struct {
	OrderID  uuid.UUID                `json:"order_id"`
	Created  []*settlement.Settlement `json:"created"`
	Existing []settlement.Settlement  `json:"existing"`
}

// AlreadyGenerated reports whether this call inserted nothing new
func (r *GenerateResult) AlreadyGenerated() bool {
	return len(r.Created) == 0 && len(r.Existing) > 0
}

// TransitionCommand moves one settlement through its lifecycle
type TransitionCommand struct {
	SettlementID uuid.UUID         `json:"settlement_id"`
	NewStatus    settlement.Status `json:"new_status"`
	Actor        uuid.UUID         `json:"actor"`
	Reason       string            `json:"reason"`
}

// CompanySummary aggregates settlement counts and amounts for one company and
// status, for the reporting surface. The total is currency-tagged because it
// leaves the engine, unlike the bare per-row decimals.
type CompanySummary struct {
	CompanyID uuid.UUID         `json:"company_id"`
	Status    settlement.Status `json:"status"`
	Count     int64             `json:"count"`
	Total     valueobject.Money `json:"total"`
}
