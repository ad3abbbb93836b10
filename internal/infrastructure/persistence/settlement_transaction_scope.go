package persistence

import (
	"context"

	appsettlement "github.com/dealerlink/backend/internal/application/settlement"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"gorm.io/gorm"
)

// GormSettlementTransactionScope implements the settlement TransactionScope
// using GORM transactions. The whole batch insert commits or rolls back as
// one unit.
type GormSettlementTransactionScope struct {
	db *gorm.DB
}

// NewGormSettlementTransactionScope creates a new GormSettlementTransactionScope
func NewGormSettlementTransactionScope(db *gorm.DB) *GormSettlementTransactionScope {
	return &GormSettlementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormSettlementTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&settlementTxRepositories{tx: tx})
	})
}

type settlementTxRepositories struct {
	tx *gorm.DB
}

// Settlements returns the settlement repository scoped to the current transaction
func (r *settlementTxRepositories) Settlements() settlement.Repository {
	return NewGormSettlementRepository(r.tx)
}

var _ appsettlement.TransactionScope = (*GormSettlementTransactionScope)(nil)
var _ appsettlement.TransactionalRepositories = (*settlementTxRepositories)(nil)
