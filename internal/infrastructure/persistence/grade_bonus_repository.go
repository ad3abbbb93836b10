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

// GormGradeBonusRepository implements grade.BonusRepository using GORM
type GormGradeBonusRepository struct {
	db *gorm.DB
}

// NewGormGradeBonusRepository creates a new GormGradeBonusRepository
func NewGormGradeBonusRepository(db *gorm.DB) *GormGradeBonusRepository {
	return &GormGradeBonusRepository{db: db}
}

// FindByID finds a bonus settlement by its ID
func (r *GormGradeBonusRepository) FindByID(ctx context.Context, id uuid.UUID) (*grade.GradeBonusSettlement, error) {
	var model models.GradeBonusModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTracking finds every bonus emitted from a tracking row, by level
func (r *GormGradeBonusRepository) FindByTracking(ctx context.Context, trackingID uuid.UUID) ([]*grade.GradeBonusSettlement, error) {
	var rows []models.GradeBonusModel
	if err := r.db.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		Order("level ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBonuses(rows), nil
}

// FindByCompany finds every bonus of a company, newest first
func (r *GormGradeBonusRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*grade.GradeBonusSettlement, error) {
	var rows []models.GradeBonusModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBonuses(rows), nil
}

// CreateIfAbsent inserts a bonus unless the (tracking, level) pair already
// paid out, and reports whether the row was actually inserted
func (r *GormGradeBonusRepository) CreateIfAbsent(ctx context.Context, bonus *grade.GradeBonusSettlement) (bool, error) {
	model := models.GradeBonusModelFromDomain(bonus)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tracking_id"}, {Name: "level"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Save updates a bonus guarded by its optimistic version
func (r *GormGradeBonusRepository) Save(ctx context.Context, bonus *grade.GradeBonusSettlement) error {
	currentVersion := bonus.Version
	bonus.Version++
	bonus.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.GradeBonusModel{}).
		Where("id = ? AND version = ?", bonus.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":     string(bonus.Status),
			"paid_at":    bonus.PaidAt,
			"version":    bonus.Version,
			"updated_at": bonus.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func toDomainBonuses(rows []models.GradeBonusModel) []*grade.GradeBonusSettlement {
	bonuses := make([]*grade.GradeBonusSettlement, len(rows))
	for i := range rows {
		bonuses[i] = rows[i].ToDomain()
	}
	return bonuses
}

var _ grade.BonusRepository = (*GormGradeBonusRepository)(nil)
