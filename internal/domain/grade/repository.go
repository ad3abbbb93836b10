package grade

import (
	"context"

	"github.com/google/uuid"
)

// TrackingRepository persists grade tracking rows.
//
// FindActiveForUpdate must be called inside a transaction; implementations
// take a row lock so concurrent counters for the same (company, policy) pair
// serialize instead of losing increments.
type TrackingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GradeTracking, error)
	FindActive(ctx context.Context, companyID, policyID uuid.UUID) (*GradeTracking, error)
	FindActiveForUpdate(ctx context.Context, companyID, policyID uuid.UUID) (*GradeTracking, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*GradeTracking, error)

	// CreateIfAbsent inserts a new active row unless one already exists for
	// the pair. Returns the row that is active after the call, so concurrent
	// rollovers converge on a single winner.
	CreateIfAbsent(ctx context.Context, tracking *GradeTracking) (*GradeTracking, error)

	Save(ctx context.Context, tracking *GradeTracking) error
}

// BonusRepository persists grade bonus settlements.
//
// CreateIfAbsent relies on the unique (tracking_id, level) constraint and
// reports whether the row was actually inserted.
type BonusRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GradeBonusSettlement, error)
	FindByTracking(ctx context.Context, trackingID uuid.UUID) ([]*GradeBonusSettlement, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*GradeBonusSettlement, error)

	CreateIfAbsent(ctx context.Context, bonus *GradeBonusSettlement) (inserted bool, err error)
	Save(ctx context.Context, bonus *GradeBonusSettlement) error
}
