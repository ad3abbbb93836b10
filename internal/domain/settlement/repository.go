package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows settlement list queries
type Filter struct {
	PayerID   *uuid.UUID
	PayeeID   *uuid.UUID
	CompanyID *uuid.UUID // matches either side
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// DefaultFilter returns a filter with default pagination
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20}
}

// Repository provides access to settlement rows. CreateBatch is the only
// write path used during generation; it must be atomic and must treat
// (order, payer, payee) conflicts as no-ops rather than errors.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Settlement, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Settlement, error)
	FindAll(ctx context.Context, filter Filter) ([]Settlement, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// CreateBatch inserts all settlements in one transaction with
	// ON CONFLICT (order_id, payer_id, payee_id) DO NOTHING semantics and
	// returns only the rows this call actually inserted.
	CreateBatch(ctx context.Context, settlements []*Settlement) ([]*Settlement, error)

	// SaveWithLock updates a settlement guarded by its optimistic version
	SaveWithLock(ctx context.Context, s *Settlement) error

	ExistsByEdge(ctx context.Context, orderID, payerID, payeeID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, companyID uuid.UUID, status Status) (int64, error)
	SumAmountByStatus(ctx context.Context, companyID uuid.UUID, status Status) (decimal.Decimal, error)
}
