package grade

import (
	"context"

	"github.com/dealerlink/backend/internal/domain/grade"
)

// TransactionScope provides transactional access to the grade repositories.
// The increment-and-threshold-check runs inside Execute under a row lock, so
// concurrent settlements for the same (company, policy) pair serialize and
// cannot both fire the same bonus.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the grade repositories scoped to the
// current transaction.
type TransactionalRepositories interface {
	Trackings() grade.TrackingRepository
	Bonuses() grade.BonusRepository
}

// NoOpTransactionScope runs the function without a real transaction.
type NoOpTransactionScope struct {
	trackings grade.TrackingRepository
	bonuses   grade.BonusRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the repositories.
func NewNoOpTransactionScope(trackings grade.TrackingRepository, bonuses grade.BonusRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{trackings: trackings, bonuses: bonuses}
}

// Execute runs the function directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Trackings returns the grade tracking repository.
func (s *NoOpTransactionScope) Trackings() grade.TrackingRepository {
	return s.trackings
}

// Bonuses returns the grade bonus repository.
func (s *NoOpTransactionScope) Bonuses() grade.BonusRepository {
	return s.bonuses
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
