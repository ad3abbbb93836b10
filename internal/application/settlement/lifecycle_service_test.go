package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSettlement(t *testing.T) *settlement.Settlement {
	t.Helper()
	s, err := settlement.NewSettlement(
		uuid.New(), "ORD-2001", uuid.New(),
		uuid.New(), "Seoul Agency",
		uuid.New(), "Gangnam Store",
		"SKT", decimal.NewFromInt(45000), 55000, 24,
		decimal.NewFromInt(12000), policy.RateSourceScopeMatrix,
		time.Now().AddDate(0, 0, 45),
	)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func newLifecycleService(repo *MockSettlementRepository) *LifecycleService {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return NewLifecycleService(repo, publisher, zap.NewNop())
}

func TestLifecycleService_Transition(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	row := newTestSettlement(t)
	repo.On("FindByID", mock.Anything, row.ID).Return(row, nil)
	repo.On("SaveWithLock", mock.Anything, row).Return(nil)

	result, err := svc.Transition(context.Background(), TransitionCommand{
		SettlementID: row.ID,
		NewStatus:    settlement.StatusApproved,
		Actor:        uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusApproved, result.Status)
	assert.NotNil(t, result.ApprovedAt)
	repo.AssertCalled(t, "SaveWithLock", mock.Anything, row)
}

func TestLifecycleService_InvalidTransitionNotSaved(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	row := newTestSettlement(t)
	require.NoError(t, row.Approve(uuid.New()))
	require.NoError(t, row.MarkPaid(uuid.New()))
	row.ClearDomainEvents()
	repo.On("FindByID", mock.Anything, row.ID).Return(row, nil)

	// paid is terminal; every outgoing transition is rejected
	for _, next := range []settlement.Status{
		settlement.StatusPending,
		settlement.StatusApproved,
		settlement.StatusUnpaid,
		settlement.StatusCancelled,
	} {
		_, err := svc.Transition(context.Background(), TransitionCommand{
			SettlementID: row.ID,
			NewStatus:    next,
			Actor:        uuid.New(),
		})
		require.Error(t, err, "transition to %s", next)
	}
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestLifecycleService_TransitionValidation(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	_, err := svc.Transition(context.Background(), TransitionCommand{
		SettlementID: uuid.Nil,
		NewStatus:    settlement.StatusApproved,
		Actor:        uuid.New(),
	})
	assert.Error(t, err)

	_, err = svc.Transition(context.Background(), TransitionCommand{
		SettlementID: uuid.New(),
		NewStatus:    settlement.Status("SHREDDED"),
		Actor:        uuid.New(),
	})
	assert.Error(t, err)

	_, err = svc.Transition(context.Background(), TransitionCommand{
		SettlementID: uuid.New(),
		NewStatus:    settlement.StatusApproved,
		Actor:        uuid.Nil,
	})
	assert.Error(t, err)
}

func TestLifecycleService_CancelForOrder(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	orderID := uuid.New()
	first := newTestSettlement(t)
	second := newTestSettlement(t)
	first.OrderID = orderID
	second.OrderID = orderID

	repo.On("FindByOrder", mock.Anything, orderID).Return([]settlement.Settlement{*first, *second}, nil)
	repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

	cancelled, err := svc.CancelForOrder(context.Background(), orderID, uuid.New(), "customer withdrew contract")
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	for _, row := range cancelled {
		assert.Equal(t, settlement.StatusCancelled, row.Status)
		assert.Equal(t, "customer withdrew contract", row.CancelReason)
	}
}

func TestLifecycleService_CancelForOrderRejectsPaidRows(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	orderID := uuid.New()
	paid := newTestSettlement(t)
	paid.OrderID = orderID
	require.NoError(t, paid.Approve(uuid.New()))
	require.NoError(t, paid.MarkPaid(uuid.New()))

	repo.On("FindByOrder", mock.Anything, orderID).Return([]settlement.Settlement{*paid}, nil)

	_, err := svc.CancelForOrder(context.Background(), orderID, uuid.New(), "reversal")
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeInvalidTransition, domainErr.Code)
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestLifecycleService_CancelForOrderUnknownOrder(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	orderID := uuid.New()
	repo.On("FindByOrder", mock.Anything, orderID).Return([]settlement.Settlement{}, nil)

	_, err := svc.CancelForOrder(context.Background(), orderID, uuid.New(), "reversal")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLifecycleService_SummaryByStatus(t *testing.T) {
	repo := new(MockSettlementRepository)
	svc := newLifecycleService(repo)

	companyID := uuid.New()
	repo.On("CountByStatus", mock.Anything, companyID, settlement.StatusPending).Return(int64(3), nil)
	repo.On("SumAmountByStatus", mock.Anything, companyID, settlement.StatusPending).
		Return(decimal.NewFromInt(54000), nil)

	summary, err := svc.SummaryByStatus(context.Background(), companyID, settlement.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Count)
	assert.True(t, summary.Total.Equals(valueobject.NewMoneyKRW(decimal.NewFromInt(54000))))
	assert.Equal(t, valueobject.KRW, summary.Total.Currency())
}
