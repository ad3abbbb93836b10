package persistence

import (
	"context"
	"errors"

	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*network.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a company by its platform code
func (r *GormCompanyRepository) FindByCode(ctx context.Context, code string) (*network.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindChildren finds the direct children of a company
func (r *GormCompanyRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]network.Company, error) {
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	companies := make([]network.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// FindByType finds all companies of a given tier
func (r *GormCompanyRepository) FindByType(ctx context.Context, companyType network.CompanyType) ([]network.Company, error) {
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("type = ?", string(companyType)).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	companies := make([]network.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// Save upserts a mirrored company row on its platform code
func (r *GormCompanyRepository) Save(ctx context.Context, company *network.Company) error {
	model := models.CompanyModelFromDomain(company)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

var _ network.CompanyRepository = (*GormCompanyRepository)(nil)
