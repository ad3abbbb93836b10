package persistence

import (
	"context"

	appgrade "github.com/dealerlink/backend/internal/application/grade"
	"github.com/dealerlink/backend/internal/domain/grade"
	"gorm.io/gorm"
)

// GormGradeTransactionScope implements the grade TransactionScope using GORM
// transactions. Counter increments and bonus inserts for one order commit or
// roll back together, with the FOR UPDATE lock held for the duration.
type GormGradeTransactionScope struct {
	db *gorm.DB
}

// NewGormGradeTransactionScope creates a new GormGradeTransactionScope
func NewGormGradeTransactionScope(db *gorm.DB) *GormGradeTransactionScope {
	return &GormGradeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormGradeTransactionScope) Execute(ctx context.Context, fn func(repos appgrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gradeTxRepositories{tx: tx})
	})
}

type gradeTxRepositories struct {
	tx *gorm.DB
}

// Trackings returns the tracking repository scoped to the current transaction
func (r *gradeTxRepositories) Trackings() grade.TrackingRepository {
	return NewGormGradeTrackingRepository(r.tx)
}

// Bonuses returns the bonus repository scoped to the current transaction
func (r *gradeTxRepositories) Bonuses() grade.BonusRepository {
	return NewGormGradeBonusRepository(r.tx)
}

var _ appgrade.TransactionScope = (*GormGradeTransactionScope)(nil)
var _ appgrade.TransactionalRepositories = (*gradeTxRepositories)(nil)
