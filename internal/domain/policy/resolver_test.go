package policy

import (
	"context"
	"testing"

	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAssignmentRepo holds assignments keyed by (policy, company)
type fakeAssignmentRepo struct {
	assignments map[uuid.UUID]map[uuid.UUID]*PolicyAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uuid.UUID]map[uuid.UUID]*PolicyAssignment)}
}

func (r *fakeAssignmentRepo) FindByPolicyAndCompany(_ context.Context, policyID, companyID uuid.UUID) (*PolicyAssignment, error) {
	if byCompany, ok := r.assignments[policyID]; ok {
		if a, ok := byCompany[companyID]; ok {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAssignmentRepo) FindByPolicy(_ context.Context, policyID uuid.UUID) ([]PolicyAssignment, error) {
	result := make([]PolicyAssignment, 0)
	for _, a := range r.assignments[policyID] {
		result = append(result, *a)
	}
	return result, nil
}

func (r *fakeAssignmentRepo) Save(_ context.Context, a *PolicyAssignment) error {
	if r.assignments[a.PolicyID] == nil {
		r.assignments[a.PolicyID] = make(map[uuid.UUID]*PolicyAssignment)
	}
	r.assignments[a.PolicyID][a.CompanyID] = a
	return nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, policyID, companyID uuid.UUID) error {
	delete(r.assignments[policyID], companyID)
	return nil
}

// fakeRateFinder holds matrix cells keyed by their structured key
type fakeRateFinder struct {
	entries map[string]*RateMatrixEntry
}

func newFakeRateFinder(entries ...*RateMatrixEntry) *fakeRateFinder {
	f := &fakeRateFinder{entries: make(map[string]*RateMatrixEntry)}
	for _, e := range entries {
		f.entries[cacheKeyString(e.Key())] = e
	}
	return f
}

func cacheKeyString(key RateKey) string {
	scope := "platform"
	if key.ScopeCompanyID != nil {
		scope = key.ScopeCompanyID.String()
	}
	return key.PolicyID.String() + "|" + scope + "|" + key.Carrier + "|" +
		decimal.NewFromInt(key.PlanBucket).String() + "|" + decimal.NewFromInt(int64(key.ContractPeriod)).String()
}

func (f *fakeRateFinder) FindRate(_ context.Context, key RateKey) (*RateMatrixEntry, error) {
	if e, ok := f.entries[cacheKeyString(key)]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func testPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy("SKT-STD", "SKT Standard", "SKT",
		TierDefaults{
			network.CompanyTypeAgency: decimal.NewFromInt(20000),
			network.CompanyTypeRetail: decimal.NewFromInt(8000),
		},
		PlanBuckets{33000, 55000, 66000},
		GradeLadder{{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(500)}},
		PeriodTypeMonthly, 45)
	require.NoError(t, err)
	return p
}

func mustEntry(t *testing.T, policyID uuid.UUID, scope *uuid.UUID, carrier string, bucket int64, period int, amount int64) *RateMatrixEntry {
	t.Helper()
	e, err := NewRateMatrixEntry(policyID, scope, carrier, bucket, period, decimal.NewFromInt(amount))
	require.NoError(t, err)
	return e
}

func TestRateResolver_CustomOverrideBeatsMatrix(t *testing.T) {
	p := testPolicy(t)
	companyID := uuid.New()
	parentID := uuid.New()

	override := decimal.NewFromInt(5000)
	assignments := newFakeAssignmentRepo()
	a, err := NewPolicyAssignment(p.ID, companyID, &override, false)
	require.NoError(t, err)
	require.NoError(t, assignments.Save(context.Background(), a))

	// A matching matrix cell of 7000 exists, but the pinned override wins.
	rates := newFakeRateFinder(mustEntry(t, p.ID, &parentID, "SKT", 55000, 24, 7000))
	resolver := NewRateResolver(assignments, rates)

	res, err := resolver.Resolve(context.Background(), RateContext{
		Policy: p, CompanyID: companyID, CompanyType: network.CompanyTypeRetail,
		ParentID: &parentID, Carrier: "SKT", PlanAmount: decimal.NewFromInt(50000), ContractPeriod: 24,
	})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, RateSourceCustomOverride, res.Source)
}

func TestRateResolver_ScopeMatrixBeatsPlatform(t *testing.T) {
	p := testPolicy(t)
	companyID := uuid.New()
	parentID := uuid.New()

	rates := newFakeRateFinder(
		mustEntry(t, p.ID, &parentID, "SKT", 55000, 24, 12000),
		mustEntry(t, p.ID, nil, "SKT", 55000, 24, 30000),
	)
	resolver := NewRateResolver(newFakeAssignmentRepo(), rates)

	res, err := resolver.Resolve(context.Background(), RateContext{
		Policy: p, CompanyID: companyID, CompanyType: network.CompanyTypeRetail,
		ParentID: &parentID, Carrier: "SKT", PlanAmount: decimal.NewFromInt(45000), ContractPeriod: 24,
	})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, RateSourceScopeMatrix, res.Source)
	assert.Equal(t, int64(55000), res.Bucket)
}

func TestRateResolver_WildcardFallback(t *testing.T) {
	p := testPolicy(t)
	companyID := uuid.New()
	parentID := uuid.New()

	// No exact-carrier cell; the ALL wildcard at the same coordinates applies.
	rates := newFakeRateFinder(mustEntry(t, p.ID, &parentID, CarrierAll, 55000, 24, 9000))
	resolver := NewRateResolver(newFakeAssignmentRepo(), rates)

	res, err := resolver.Resolve(context.Background(), RateContext{
		Policy: p, CompanyID: companyID, CompanyType: network.CompanyTypeRetail,
		ParentID: &parentID, Carrier: "SKT", PlanAmount: decimal.NewFromInt(45000), ContractPeriod: 24,
	})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(9000)))
	assert.Equal(t, RateSourceScopeMatrix, res.Source)
}

func TestRateResolver_PlatformMatrixFallback(t *testing.T) {
	p := testPolicy(t)
	parentID := uuid.New()

	rates := newFakeRateFinder(mustEntry(t, p.ID, nil, "SKT", 55000, 24, 30000))
	resolver := NewRateResolver(newFakeAssignmentRepo(), rates)

	res, err := resolver.Resolve(context.Background(), RateContext{
		Policy: p, CompanyID: uuid.New(), CompanyType: network.CompanyTypeAgency,
		ParentID: &parentID, Carrier: "SKT", PlanAmount: decimal.NewFromInt(45000), ContractPeriod: 24,
	})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, RateSourcePlatformMatrix, res.Source)
}

func TestRateResolver_TierDefaultFallback(t *testing.T) {
	p := testPolicy(t)
	resolver := NewRateResolver(newFakeAssignmentRepo(), newFakeRateFinder())

	res, err := resolver.Resolve(context.Background(), RateContext{
		Policy: p, CompanyID: uuid.New(), CompanyType: network.CompanyTypeRetail,
		Carrier: "SKT", PlanAmount: decimal.NewFromInt(45000), ContractPeriod: 24,
	})
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, RateSourceTierDefault, res.Source)
}

func TestRateResolver_NoRateFound(t *testing.T) {
	p := testPolicy(t)
	p.TierDefaults = TierDefaults{} // no defaults configured at all
	resolver := NewRateResolver(newFakeAssignmentRepo(), newFakeRateFinder())

	_, err := resolver.Resolve(context.Background(), RateContext{
		Policy: p, CompanyID: uuid.New(), CompanyType: network.CompanyTypeRetail,
		Carrier: "SKT", PlanAmount: decimal.NewFromInt(45000), ContractPeriod: 24,
	})
	require.Error(t, err)
	assert.True(t, shared.IsConfigurationError(err))
}

func TestPlanBuckets_BucketFor(t *testing.T) {
	buckets := PlanBuckets{33000, 55000, 66000}

	tests := []struct {
		amount int64
		want   int64
	}{
		{10000, 33000},
		{33000, 33000},
		{45000, 55000},
		{50000, 55000},
		{55000, 55000},
		{60000, 66000},
		{99000, 66000}, // past the top of the ladder, largest bucket applies
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, buckets.BucketFor(decimal.NewFromInt(tt.amount)), "amount %d", tt.amount)
	}
}

func TestPlanBuckets_Validate(t *testing.T) {
	assert.NoError(t, PlanBuckets{33000, 55000}.Validate())
	assert.Error(t, PlanBuckets{55000, 33000}.Validate())
	assert.Error(t, PlanBuckets{0, 33000}.Validate())
}
