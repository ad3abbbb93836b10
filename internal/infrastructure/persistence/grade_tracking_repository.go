package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dealerlink/backend/internal/domain/grade"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGradeTrackingRepository implements grade.TrackingRepository using GORM
type GormGradeTrackingRepository struct {
	db *gorm.DB
}

// NewGormGradeTrackingRepository creates a new GormGradeTrackingRepository
func NewGormGradeTrackingRepository(db *gorm.DB) *GormGradeTrackingRepository {
	return &GormGradeTrackingRepository{db: db}
}

// FindByID finds a tracking row by its ID
func (r *GormGradeTrackingRepository) FindByID(ctx context.Context, id uuid.UUID) (*grade.GradeTracking, error) {
	var model models.GradeTrackingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive finds the active tracking row for a (company, policy) pair
func (r *GormGradeTrackingRepository) FindActive(ctx context.Context, companyID, policyID uuid.UUID) (*grade.GradeTracking, error) {
	return r.findActive(ctx, companyID, policyID, false)
}

// FindActiveForUpdate finds the active tracking row holding a FOR UPDATE row
// lock. Must be called inside a transaction.
func (r *GormGradeTrackingRepository) FindActiveForUpdate(ctx context.Context, companyID, policyID uuid.UUID) (*grade.GradeTracking, error) {
	return r.findActive(ctx, companyID, policyID, true)
}

func (r *GormGradeTrackingRepository) findActive(ctx context.Context, companyID, policyID uuid.UUID, forUpdate bool) (*grade.GradeTracking, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ? AND policy_id = ? AND active = ?", companyID, policyID, true)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.GradeTrackingModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCompany finds every tracking row of a company, newest period first
func (r *GormGradeTrackingRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*grade.GradeTracking, error) {
	var rows []models.GradeTrackingModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("period_start DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	trackings := make([]*grade.GradeTracking, len(rows))
	for i := range rows {
		trackings[i] = rows[i].ToDomain()
	}
	return trackings, nil
}

// CreateIfAbsent inserts a new tracking row unless one already exists for the
// same (company, policy, period start) window, and returns the row that is
// active after the call. Concurrent rollovers for the same window race on the
// unique index and the losers adopt the winner's row.
func (r *GormGradeTrackingRepository) CreateIfAbsent(ctx context.Context, tracking *grade.GradeTracking) (*grade.GradeTracking, error) {
	model := models.GradeTrackingModelFromDomain(tracking)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "policy_id"}, {Name: "period_start"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return tracking, nil
	}
	return r.findActive(ctx, tracking.CompanyID, tracking.PolicyID, false)
}

// Save updates a tracking row guarded by its optimistic version
func (r *GormGradeTrackingRepository) Save(ctx context.Context, tracking *grade.GradeTracking) error {
	currentVersion := tracking.Version
	tracking.Version++
	tracking.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.GradeTrackingModel{}).
		Where("id = ? AND version = ?", tracking.ID, currentVersion).
		Updates(map[string]interface{}{
			"current_orders":      tracking.CurrentOrders,
			"target_orders":       tracking.TargetOrders,
			"achieved_level":      tracking.AchievedLevel,
			"bonus_per_order":     tracking.BonusPerOrder,
			"total_accrued_bonus": tracking.TotalAccruedBonus,
			"active":              tracking.Active,
			"version":             tracking.Version,
			"updated_at":          tracking.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ grade.TrackingRepository = (*GormGradeTrackingRepository)(nil)
