package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource identifies which precedence step produced a resolved commission
type RateSource string

const (
	RateSourceCustomOverride RateSource = "CUSTOM_OVERRIDE" // PolicyAssignment custom override
	RateSourceScopeMatrix    RateSource = "SCOPE_MATRIX"    // parent company's override matrix
	RateSourcePlatformMatrix RateSource = "PLATFORM_MATRIX" // platform-default matrix
	RateSourceTierDefault    RateSource = "TIER_DEFAULT"    // policy static per-tier default
)

// RateContext carries everything needed to resolve one company's commission
// for one order
type RateContext struct {
	Policy         *Policy
	CompanyID      uuid.UUID
	CompanyType    network.CompanyType
	ParentID       *uuid.UUID
	Carrier        string
	PlanAmount     decimal.Decimal
	ContractPeriod int
}

// Resolution is the outcome of a rate lookup
type Resolution struct {
	Amount decimal.Decimal
	Bucket int64
	Source RateSource
}

// RateResolver walks the fixed precedence chain:
//  1. PolicyAssignment custom override for (policy, company)
//  2. parent company's override matrix, exact carrier then ALL wildcard
//  3. platform-default matrix, exact carrier then ALL wildcard
//  4. policy static default for the company's tier
//
// Exhausting all four steps is a configuration error, never a zero commission.
type RateResolver struct {
	assignments PolicyAssignmentRepository
	rates       RateFinder
}

// NewRateResolver creates a rate resolver
func NewRateResolver(assignments PolicyAssignmentRepository, rates RateFinder) *RateResolver {
	return &RateResolver{
		assignments: assignments,
		rates:       rates,
	}
}

// Resolve returns the effective commission for the rate context
func (r *RateResolver) Resolve(ctx context.Context, rc RateContext) (*Resolution, error) {
	if rc.Policy == nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Rate context requires a policy")
	}
	if rc.CompanyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Rate context requires a company")
	}

	bucket := rc.Policy.BucketFor(rc.PlanAmount)

	// Step 1: pinned custom override on the assignment
	assignment, err := r.assignments.FindByPolicyAndCompany(ctx, rc.Policy.ID, rc.CompanyID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if assignment != nil && assignment.HasOverride() {
		return &Resolution{Amount: *assignment.CustomOverride, Bucket: bucket, Source: RateSourceCustomOverride}, nil
	}

	// Step 2: parent company's override matrix
	if rc.ParentID != nil {
		entry, err := r.findWithWildcard(ctx, rc.Policy.ID, rc.ParentID, rc.Carrier, bucket, rc.ContractPeriod)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return &Resolution{Amount: entry.Amount, Bucket: bucket, Source: RateSourceScopeMatrix}, nil
		}
	}

	// Step 3: platform-default matrix
	entry, err := r.findWithWildcard(ctx, rc.Policy.ID, nil, rc.Carrier, bucket, rc.ContractPeriod)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return &Resolution{Amount: entry.Amount, Bucket: bucket, Source: RateSourcePlatformMatrix}, nil
	}

	// Step 4: static per-tier default
	if amount, ok := rc.Policy.TierDefault(rc.CompanyType); ok {
		return &Resolution{Amount: amount, Bucket: bucket, Source: RateSourceTierDefault}, nil
	}

	return nil, shared.NewDomainError(shared.ErrCodeNoRateFound,
		fmt.Sprintf("No commission rate configured for policy %s, company %s, carrier %s, bucket %d, period %d",
			rc.Policy.Code, rc.CompanyID, rc.Carrier, bucket, rc.ContractPeriod))
}

// findWithWildcard looks up an exact-carrier cell, then the ALL wildcard at
// the same (bucket, period). Returns nil without error when neither exists.
func (r *RateResolver) findWithWildcard(ctx context.Context, policyID uuid.UUID, scopeID *uuid.UUID,
	carrier string, bucket int64, period int) (*RateMatrixEntry, error) {
	for _, key := range []RateKey{
		{PolicyID: policyID, ScopeCompanyID: scopeID, Carrier: carrier, PlanBucket: bucket, ContractPeriod: period},
		{PolicyID: policyID, ScopeCompanyID: scopeID, Carrier: CarrierAll, PlanBucket: bucket, ContractPeriod: period},
	} {
		entry, err := r.rates.FindRate(ctx, key)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return entry, nil
	}
	return nil, nil
}
