package policy

import (
	"context"

	"github.com/google/uuid"
)

// PolicyRepository provides access to the mirrored policy table
type PolicyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	FindByCode(ctx context.Context, code string) (*Policy, error)
	FindActive(ctx context.Context) ([]Policy, error)
	Save(ctx context.Context, policy *Policy) error
}

// PolicyAssignmentRepository provides access to policy assignments
type PolicyAssignmentRepository interface {
	FindByPolicyAndCompany(ctx context.Context, policyID, companyID uuid.UUID) (*PolicyAssignment, error)
	FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]PolicyAssignment, error)
	// Save upserts on the (policy, company) unique key
	Save(ctx context.Context, assignment *PolicyAssignment) error
	Delete(ctx context.Context, policyID, companyID uuid.UUID) error
}

// RateFinder resolves a single matrix cell by its structured key. The
// production implementation is a read-through cache over the matrix table.
type RateFinder interface {
	// FindRate returns shared.ErrNotFound when no cell exists for the key
	FindRate(ctx context.Context, key RateKey) (*RateMatrixEntry, error)
}

// RateMatrixRepository provides write access to the rate matrix. Writes must
// invalidate any cache layered over FindRate.
type RateMatrixRepository interface {
	RateFinder
	FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]RateMatrixEntry, error)
	FindByScope(ctx context.Context, policyID uuid.UUID, scopeCompanyID *uuid.UUID) ([]RateMatrixEntry, error)
	// Save upserts on the full matrix key
	Save(ctx context.Context, entry *RateMatrixEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}
