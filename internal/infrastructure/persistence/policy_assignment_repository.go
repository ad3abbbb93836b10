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

// GormPolicyAssignmentRepository implements PolicyAssignmentRepository using GORM
type GormPolicyAssignmentRepository struct {
	db *gorm.DB
}

// NewGormPolicyAssignmentRepository creates a new GormPolicyAssignmentRepository
func NewGormPolicyAssignmentRepository(db *gorm.DB) *GormPolicyAssignmentRepository {
	return &GormPolicyAssignmentRepository{db: db}
}

// FindByPolicyAndCompany finds the assignment for a (policy, company) pair
func (r *GormPolicyAssignmentRepository) FindByPolicyAndCompany(ctx context.Context, policyID, companyID uuid.UUID) (*policy.PolicyAssignment, error) {
	var model models.PolicyAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("policy_id = ? AND company_id = ?", policyID, companyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPolicy finds all assignments of a policy
func (r *GormPolicyAssignmentRepository) FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]policy.PolicyAssignment, error) {
	var rows []models.PolicyAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	assignments := make([]policy.PolicyAssignment, len(rows))
	for i := range rows {
		assignments[i] = *rows[i].ToDomain()
	}
	return assignments, nil
}

// Save upserts an assignment on the (policy, company) unique key
func (r *GormPolicyAssignmentRepository) Save(ctx context.Context, assignment *policy.PolicyAssignment) error {
	model := models.PolicyAssignmentModelFromDomain(assignment)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "policy_id"}, {Name: "company_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Delete removes the assignment for a (policy, company) pair
func (r *GormPolicyAssignmentRepository) Delete(ctx context.Context, policyID, companyID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("policy_id = ? AND company_id = ?", policyID, companyID).
		Delete(&models.PolicyAssignmentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ policy.PolicyAssignmentRepository = (*GormPolicyAssignmentRepository)(nil)
