package network

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository provides read access to the mirrored company table.
// The engine never deletes companies; Save exists only for the platform
// sync endpoint that keeps the mirror current.
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByCode(ctx context.Context, code string) (*Company, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Company, error)
	FindByType(ctx context.Context, companyType CompanyType) ([]Company, error)
	Save(ctx context.Context, company *Company) error
}
