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

// GormPolicyRepository implements PolicyRepository using GORM
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewGormPolicyRepository creates a new GormPolicyRepository
func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

// FindByID finds a policy by its ID
func (r *GormPolicyRepository) FindByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	var model models.PolicyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a policy by its platform code
func (r *GormPolicyRepository) FindByCode(ctx context.Context, code string) (*policy.Policy, error) {
	var model models.PolicyModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive finds all active policies
func (r *GormPolicyRepository) FindActive(ctx context.Context) ([]policy.Policy, error) {
	var rows []models.PolicyModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	policies := make([]policy.Policy, len(rows))
	for i := range rows {
		policies[i] = *rows[i].ToDomain()
	}
	return policies, nil
}

// Save upserts a mirrored policy row on its platform code
func (r *GormPolicyRepository) Save(ctx context.Context, p *policy.Policy) error {
	model := models.PolicyModelFromDomain(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

var _ policy.PolicyRepository = (*GormPolicyRepository)(nil)
