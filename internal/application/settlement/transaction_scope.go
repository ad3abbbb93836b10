package settlement

import (
	"context"

	"github.com/dealerlink/backend/internal/domain/settlement"
)

// TransactionScope provides transactional access to the settlement repository.
// All repository operations inside Execute share one database transaction and
// commit or roll back as a unit, so an order's settlement chain is never
// partially written.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction.
type TransactionalRepositories interface {
	Settlements() settlement.Repository
}

// NoOpTransactionScope runs the function without a real transaction. Used in
// tests and anywhere transactional guarantees come from the repository itself.
type NoOpTransactionScope struct {
	settlements settlement.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the repository.
func NewNoOpTransactionScope(settlements settlement.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{settlements: settlements}
}

// Execute runs the function directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Settlements returns the settlement repository.
func (s *NoOpTransactionScope) Settlements() settlement.Repository {
	return s.settlements
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
