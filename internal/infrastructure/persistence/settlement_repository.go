package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettlementRepository implements settlement.Repository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByID finds a settlement by its ID
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder finds every settlement row generated for an order
func (r *GormSettlementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	var rows []models.SettlementModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(rows), nil
}

// FindAll finds settlements matching the filter with pagination
func (r *GormSettlementRepository) FindAll(ctx context.Context, filter settlement.Filter) ([]settlement.Settlement, error) {
	query := applySettlementFilter(r.db.WithContext(ctx).Model(&models.SettlementModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.SettlementModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainSettlements(rows), nil
}

// Count counts settlements matching the filter
func (r *GormSettlementRepository) Count(ctx context.Context, filter settlement.Filter) (int64, error) {
	var count int64
	query := applySettlementFilter(r.db.WithContext(ctx).Model(&models.SettlementModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch inserts the settlements atomically. Rows whose
// (order, payer, payee) edge already exists are skipped via
// ON CONFLICT DO NOTHING; only the rows this call inserted are returned.
func (r *GormSettlementRepository) CreateBatch(ctx context.Context, settlements []*settlement.Settlement) ([]*settlement.Settlement, error) {
	if len(settlements) == 0 {
		return nil, nil
	}

	var inserted []*settlement.Settlement
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range settlements {
			model := models.SettlementModelFromDomain(s)
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_id"}, {Name: "payer_id"}, {Name: "payee_id"}},
				DoNothing: true,
			}).Create(model)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				inserted = append(inserted, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// SaveWithLock updates a settlement guarded by its optimistic version
func (r *GormSettlementRepository) SaveWithLock(ctx context.Context, s *settlement.Settlement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.SettlementModel{}).
			Where("id = ?", s.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != s.Version {
			return shared.ErrConcurrencyConflict
		}

		s.Version++
		s.UpdatedAt = time.Now()

		result := tx.Model(&models.SettlementModel{}).
			Where("id = ? AND version = ?", s.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":        string(s.Status),
				"approved_at":   s.ApprovedAt,
				"paid_at":       s.PaidAt,
				"cancelled_at":  s.CancelledAt,
				"cancel_reason": s.CancelReason,
				"version":       s.Version,
				"updated_at":    s.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// ExistsByEdge checks whether a settlement exists for the (order, payer, payee) edge
func (r *GormSettlementRepository) ExistsByEdge(ctx context.Context, orderID, payerID, payeeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SettlementModel{}).
		Where("order_id = ? AND payer_id = ? AND payee_id = ?", orderID, payerID, payeeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts a payee's settlements in the given status
func (r *GormSettlementRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SettlementModel{}).
		Where("payee_id = ? AND status = ?", companyID, string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumAmountByStatus sums a payee's settlement amounts in the given status
func (r *GormSettlementRepository) SumAmountByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SettlementModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("payee_id = ? AND status = ?", companyID, string(status)).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func applySettlementFilter(query *gorm.DB, filter settlement.Filter) *gorm.DB {
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.PayeeID != nil {
		query = query.Where("payee_id = ?", *filter.PayeeID)
	}
	if filter.CompanyID != nil {
		query = query.Where("payer_id = ? OR payee_id = ?", *filter.CompanyID, *filter.CompanyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at < ?", *filter.DateTo)
	}
	return query
}

func toDomainSettlements(rows []models.SettlementModel) []settlement.Settlement {
	settlements := make([]settlement.Settlement, len(rows))
	for i := range rows {
		settlements[i] = *rows[i].ToDomain()
	}
	return settlements
}

var _ settlement.Repository = (*GormSettlementRepository)(nil)
