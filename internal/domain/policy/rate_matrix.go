package policy

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarrierAll is the wildcard carrier key matching any carrier at the same
// (bucket, period) coordinates
const CarrierAll = "ALL"

// PlanBuckets is a fixed ascending ladder of plan-amount thresholds used as
// matrix lookup keys. Stored as JSONB.
type PlanBuckets []int64

// DefaultPlanBuckets is the platform ladder used when a policy defines none.
// Values are monthly plan amounts in won.
var DefaultPlanBuckets = PlanBuckets{33000, 44000, 55000, 66000, 77000, 88000, 110000}

// Value implements driver.Valuer for JSONB storage
func (b PlanBuckets) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB retrieval
func (b *PlanBuckets) Scan(value interface{}) error {
	if value == nil {
		*b = PlanBuckets{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PlanBuckets: unsupported type")
	}
	if len(bytes) == 0 {
		*b = PlanBuckets{}
		return nil
	}
	return json.Unmarshal(bytes, b)
}

// Validate checks that the ladder is strictly ascending and positive
func (b PlanBuckets) Validate() error {
	var prev int64
	for _, threshold := range b {
		if threshold <= prev {
			return shared.NewDomainError("INVALID_PLAN_BUCKETS", "Plan buckets must be strictly ascending and positive")
		}
		prev = threshold
	}
	return nil
}

// BucketFor maps an amount to the smallest bucket >= amount, or the largest
// bucket when the amount exceeds every threshold. An empty ladder returns 0.
func (b PlanBuckets) BucketFor(amount decimal.Decimal) int64 {
	if len(b) == 0 {
		return 0
	}
	for _, threshold := range b {
		if amount.LessThanOrEqual(decimal.NewFromInt(threshold)) {
			return threshold
		}
	}
	return b[len(b)-1]
}

// RateMatrixEntry is one cell of a commission rate table. A nil ScopeCompanyID
// marks a platform-default cell; a set scope marks an agency's override matrix
// for its retail tier. Unique on the full key.
type RateMatrixEntry struct {
	shared.BaseEntity
	PolicyID       uuid.UUID       `json:"policy_id"`
	ScopeCompanyID *uuid.UUID      `json:"scope_company_id"`
	Carrier        string          `json:"carrier"`
	PlanBucket     int64           `json:"plan_bucket"`
	ContractPeriod int             `json:"contract_period"`
	Amount         decimal.Decimal `json:"amount"`
}

// NewRateMatrixEntry creates a rate matrix cell
func NewRateMatrixEntry(policyID uuid.UUID, scopeCompanyID *uuid.UUID, carrier string,
	planBucket int64, contractPeriod int, amount decimal.Decimal) (*RateMatrixEntry, error) {
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if carrier == "" {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Carrier cannot be empty; use ALL for the wildcard")
	}
	if planBucket <= 0 {
		return nil, shared.NewDomainError("INVALID_PLAN_BUCKET", "Plan bucket must be positive")
	}
	if contractPeriod <= 0 {
		return nil, shared.NewDomainError("INVALID_CONTRACT_PERIOD", "Contract period must be positive")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Matrix amount cannot be negative")
	}

	return &RateMatrixEntry{
		BaseEntity:     shared.NewBaseEntity(),
		PolicyID:       policyID,
		ScopeCompanyID: scopeCompanyID,
		Carrier:        carrier,
		PlanBucket:     planBucket,
		ContractPeriod: contractPeriod,
		Amount:         amount,
	}, nil
}

// IsPlatformDefault returns true for cells in the platform-default scope
func (e *RateMatrixEntry) IsPlatformDefault() bool {
	return e.ScopeCompanyID == nil
}

// IsWildcard returns true for all-carriers cells
func (e *RateMatrixEntry) IsWildcard() bool {
	return e.Carrier == CarrierAll
}

// RateKey is the structured cache/lookup key of a matrix cell
type RateKey struct {
	PolicyID       uuid.UUID
	ScopeCompanyID *uuid.UUID
	Carrier        string
	PlanBucket     int64
	ContractPeriod int
}

// Key returns the entry's lookup key
func (e *RateMatrixEntry) Key() RateKey {
	return RateKey{
		PolicyID:       e.PolicyID,
		ScopeCompanyID: e.ScopeCompanyID,
		Carrier:        e.Carrier,
		PlanBucket:     e.PlanBucket,
		ContractPeriod: e.ContractPeriod,
	}
}
