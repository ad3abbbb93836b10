package persistence

import (
	"context"
	"errors"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateMatrixRepository implements RateMatrixRepository using GORM.
// The repository returns raw table reads; the read-through cache layered on
// top owns TTLs and invalidation.
type GormRateMatrixRepository struct {
	db *gorm.DB
}

// NewGormRateMatrixRepository creates a new GormRateMatrixRepository
func NewGormRateMatrixRepository(db *gorm.DB) *GormRateMatrixRepository {
	return &GormRateMatrixRepository{db: db}
}

// FindRate resolves a single matrix cell by its structured key
func (r *GormRateMatrixRepository) FindRate(ctx context.Context, key policy.RateKey) (*policy.RateMatrixEntry, error) {
	query := r.db.WithContext(ctx).
		Where("policy_id = ? AND carrier = ? AND plan_bucket = ? AND contract_period = ?",
			key.PolicyID, key.Carrier, key.PlanBucket, key.ContractPeriod)
	query = scopeCondition(query, key.ScopeCompanyID)

	var model models.RateMatrixModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPolicy finds every cell of a policy, scoped and platform alike
func (r *GormRateMatrixRepository) FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]policy.RateMatrixEntry, error) {
	var rows []models.RateMatrixModel
	if err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("carrier ASC, plan_bucket ASC, contract_period ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(rows), nil
}

// FindByScope finds a policy's cells for one scope. A nil scope selects the
// platform-default cells.
func (r *GormRateMatrixRepository) FindByScope(ctx context.Context, policyID uuid.UUID, scopeCompanyID *uuid.UUID) ([]policy.RateMatrixEntry, error) {
	query := r.db.WithContext(ctx).Where("policy_id = ?", policyID)
	query = scopeCondition(query, scopeCompanyID)

	var rows []models.RateMatrixModel
	if err := query.
		Order("carrier ASC, plan_bucket ASC, contract_period ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(rows), nil
}

// Save upserts a cell on its matrix key, updating only the amount on
// conflict. Platform cells carry a NULL scope, which a composite conflict
// target containing scope_company_id would never match, so the conflict
// target mirrors whichever partial unique index covers the cell.
func (r *GormRateMatrixRepository) Save(ctx context.Context, entry *policy.RateMatrixEntry) error {
	model := models.RateMatrixModelFromDomain(entry)
	conflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "policy_id"}, {Name: "scope_company_id"}, {Name: "carrier"},
			{Name: "plan_bucket"}, {Name: "contract_period"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "scope_company_id IS NOT NULL"},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}
	if entry.ScopeCompanyID == nil {
		conflict.Columns = []clause.Column{
			{Name: "policy_id"}, {Name: "carrier"},
			{Name: "plan_bucket"}, {Name: "contract_period"},
		}
		conflict.TargetWhere = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "scope_company_id IS NULL"},
		}}
	}
	return r.db.WithContext(ctx).Clauses(conflict).Create(model).Error
}

// Delete removes a cell by its ID
func (r *GormRateMatrixRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RateMatrixModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scopeCondition(query *gorm.DB, scopeCompanyID *uuid.UUID) *gorm.DB {
	if scopeCompanyID == nil {
		return query.Where("scope_company_id IS NULL")
	}
	return query.Where("scope_company_id = ?", *scopeCompanyID)
}

func toDomainEntries(rows []models.RateMatrixModel) []policy.RateMatrixEntry {
	entries := make([]policy.RateMatrixEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

var _ policy.RateMatrixRepository = (*GormRateMatrixRepository)(nil)
