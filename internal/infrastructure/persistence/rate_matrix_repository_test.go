package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func rateMatrixColumns() []string {
	return []string{
		"id", "created_at", "updated_at",
		"policy_id", "scope_company_id", "carrier", "plan_bucket", "contract_period", "amount",
	}
}

func TestGormRateMatrixRepository_FindRate(t *testing.T) {
	t.Run("finds scoped cell", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormRateMatrixRepository(db)

		policyID := uuid.New()
		scopeID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(rateMatrixColumns()).
			AddRow(uuid.New(), now, now, policyID, scopeID, "SKT", int64(55000), 24, decimal.NewFromInt(12000))

		mock.ExpectQuery(`SELECT \* FROM "rate_matrix_entries" WHERE .*policy_id = \$1 AND carrier = \$2 AND plan_bucket = \$3 AND contract_period = \$4.* AND scope_company_id = \$5 .* LIMIT .*`).
			WithArgs(policyID, "SKT", int64(55000), 24, scopeID, 1).
			WillReturnRows(rows)

		key := policy.RateKey{PolicyID: policyID, ScopeCompanyID: &scopeID, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}
		cell, err := repo.FindRate(context.Background(), key)

		require.NoError(t, err)
		assert.True(t, cell.Amount.Equal(decimal.NewFromInt(12000)))
		assert.NotNil(t, cell.ScopeCompanyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("platform cell matches on NULL scope", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormRateMatrixRepository(db)

		policyID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(rateMatrixColumns()).
			AddRow(uuid.New(), now, now, policyID, nil, "ALL", int64(55000), 24, decimal.NewFromInt(30000))

		mock.ExpectQuery(`SELECT \* FROM "rate_matrix_entries" WHERE .*policy_id = \$1 AND carrier = \$2 AND plan_bucket = \$3 AND contract_period = \$4.* AND scope_company_id IS NULL .* LIMIT .*`).
			WithArgs(policyID, "ALL", int64(55000), 24, 1).
			WillReturnRows(rows)

		key := policy.RateKey{PolicyID: policyID, Carrier: "ALL", PlanBucket: 55000, ContractPeriod: 24}
		cell, err := repo.FindRate(context.Background(), key)

		require.NoError(t, err)
		assert.Nil(t, cell.ScopeCompanyID)
		assert.True(t, cell.Amount.Equal(decimal.NewFromInt(30000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing cell", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormRateMatrixRepository(db)

		policyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "rate_matrix_entries" WHERE .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		key := policy.RateKey{PolicyID: policyID, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}
		cell, err := repo.FindRate(context.Background(), key)

		assert.Nil(t, cell)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Platform cells carry a NULL scope, and Postgres never reports a conflict
// for NULL inside a plain composite unique index. The upsert must therefore
// arbitrate on the partial index matching the cell's scope, or a rate update
// would insert a duplicate row instead of updating the amount.
func TestGormRateMatrixRepository_Save(t *testing.T) {
	t.Run("platform cell arbitrates on the NULL-scope partial index", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormRateMatrixRepository(db)

		entry, err := policy.NewRateMatrixEntry(uuid.New(), nil, "SKT", 55000, 24, decimal.NewFromInt(30000))
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "rate_matrix_entries" .* ON CONFLICT \("policy_id","carrier","plan_bucket","contract_period"\) WHERE scope_company_id IS NULL DO UPDATE SET .*"amount"=.*"excluded"\."amount".*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scoped cell arbitrates on the full-key partial index", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormRateMatrixRepository(db)

		scopeID := uuid.New()
		entry, err := policy.NewRateMatrixEntry(uuid.New(), &scopeID, "SKT", 55000, 24, decimal.NewFromInt(12000))
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "rate_matrix_entries" .* ON CONFLICT \("policy_id","scope_company_id","carrier","plan_bucket","contract_period"\) WHERE scope_company_id IS NOT NULL DO UPDATE SET .*"amount"=.*"excluded"\."amount".*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
