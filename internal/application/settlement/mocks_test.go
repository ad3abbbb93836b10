package settlement

import (
	"context"
	"time"

	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCompanyRepository is a mock implementation of network.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*network.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*network.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByCode(ctx context.Context, code string) (*network.Company, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*network.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]network.Company, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]network.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByType(ctx context.Context, companyType network.CompanyType) ([]network.Company, error) {
	args := m.Called(ctx, companyType)
	return args.Get(0).([]network.Company), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *network.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

// MockPolicyRepository is a mock implementation of policy.PolicyRepository
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) FindByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *MockPolicyRepository) FindByCode(ctx context.Context, code string) (*policy.Policy, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *MockPolicyRepository) FindActive(ctx context.Context) ([]policy.Policy, error) {
	args := m.Called(ctx)
	return args.Get(0).([]policy.Policy), args.Error(1)
}

func (m *MockPolicyRepository) Save(ctx context.Context, pol *policy.Policy) error {
	args := m.Called(ctx, pol)
	return args.Error(0)
}

// MockAssignmentRepository is a mock implementation of policy.PolicyAssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindByPolicyAndCompany(ctx context.Context, policyID, companyID uuid.UUID) (*policy.PolicyAssignment, error) {
	args := m.Called(ctx, policyID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.PolicyAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]policy.PolicyAssignment, error) {
	args := m.Called(ctx, policyID)
	return args.Get(0).([]policy.PolicyAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) Save(ctx context.Context, assignment *policy.PolicyAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, policyID, companyID uuid.UUID) error {
	args := m.Called(ctx, policyID, companyID)
	return args.Error(0)
}

// MockRateFinder is a mock implementation of policy.RateFinder
type MockRateFinder struct {
	mock.Mock
}

func (m *MockRateFinder) FindRate(ctx context.Context, key policy.RateKey) (*policy.RateMatrixEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.RateMatrixEntry), args.Error(1)
}

// MockSettlementRepository is a mock implementation of settlement.Repository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindAll(ctx context.Context, filter settlement.Filter) ([]settlement.Settlement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) Count(ctx context.Context, filter settlement.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettlementRepository) CreateBatch(ctx context.Context, settlements []*settlement.Settlement) ([]*settlement.Settlement, error) {
	args := m.Called(ctx, settlements)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) SaveWithLock(ctx context.Context, s *settlement.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettlementRepository) ExistsByEdge(ctx context.Context, orderID, payerID, payeeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID, payerID, payeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (int64, error) {
	args := m.Called(ctx, companyID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettlementRepository) SumAmountByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockGradeRecorder is a mock implementation of GradeRecorder
type MockGradeRecorder struct {
	mock.Mock
}

func (m *MockGradeRecorder) RecordQualifyingSettlement(ctx context.Context, s *settlement.Settlement, approvedAt time.Time) error {
	args := m.Called(ctx, s, approvedAt)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
