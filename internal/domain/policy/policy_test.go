package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodType_IsValid(t *testing.T) {
	assert.True(t, PeriodTypeDaily.IsValid())
	assert.True(t, PeriodTypeWeekly.IsValid())
	assert.True(t, PeriodTypeMonthly.IsValid())
	assert.True(t, PeriodTypeQuarterly.IsValid())
	assert.False(t, PeriodType("YEARLY").IsValid())
}

func TestPeriodType_WindowAt(t *testing.T) {
	loc := time.UTC
	at := time.Date(2026, 8, 19, 14, 30, 0, 0, loc) // Wednesday

	t.Run("daily", func(t *testing.T) {
		start, end := PeriodTypeDaily.WindowAt(at)
		assert.Equal(t, time.Date(2026, 8, 19, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, loc), end)
	})

	t.Run("weekly starts Monday", func(t *testing.T) {
		start, end := PeriodTypeWeekly.WindowAt(at)
		assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), end)
	})

	t.Run("weekly on Sunday belongs to preceding Monday", func(t *testing.T) {
		sunday := time.Date(2026, 8, 23, 10, 0, 0, 0, loc)
		start, _ := PeriodTypeWeekly.WindowAt(sunday)
		assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, loc), start)
	})

	t.Run("monthly", func(t *testing.T) {
		start, end := PeriodTypeMonthly.WindowAt(at)
		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, loc), end)
	})

	t.Run("quarterly", func(t *testing.T) {
		start, end := PeriodTypeQuarterly.WindowAt(at)
		assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, loc), end)
	})

	t.Run("window is half-open", func(t *testing.T) {
		start, end := PeriodTypeMonthly.WindowAt(at)
		assert.True(t, Contains(start, end, start))
		assert.False(t, Contains(start, end, end))
		// One second past period end counts toward the next period only.
		next := end.Add(time.Second)
		nextStart, _ := PeriodTypeMonthly.WindowAt(next)
		assert.Equal(t, end, nextStart)
	})
}

func TestGradeLadder_Validate(t *testing.T) {
	valid := GradeLadder{
		{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(500)},
		{MinOrders: 50, BonusPerOrder: decimal.NewFromInt(1000)},
	}
	assert.NoError(t, valid.Validate())

	descending := GradeLadder{
		{MinOrders: 50, BonusPerOrder: decimal.NewFromInt(1000)},
		{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(500)},
	}
	assert.Error(t, descending.Validate())

	negative := GradeLadder{{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(-1)}}
	assert.Error(t, negative.Validate())
}

func TestGradeLadder_LevelFor(t *testing.T) {
	ladder := GradeLadder{
		{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(500)},
		{MinOrders: 50, BonusPerOrder: decimal.NewFromInt(1000)},
	}

	tests := []struct {
		count int
		want  int
	}{
		{0, 0}, {9, 0}, {10, 1}, {49, 1}, {50, 2}, {51, 2}, {200, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ladder.LevelFor(tt.count), "count %d", tt.count)
	}
}

func TestGradeLadder_NextTarget(t *testing.T) {
	ladder := GradeLadder{
		{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(500)},
		{MinOrders: 50, BonusPerOrder: decimal.NewFromInt(1000)},
	}

	assert.Equal(t, 10, ladder.NextTarget(0))
	assert.Equal(t, 50, ladder.NextTarget(10))
	assert.Equal(t, 0, ladder.NextTarget(50))
}

func TestNewPolicy_Validation(t *testing.T) {
	ladder := GradeLadder{{MinOrders: 10, BonusPerOrder: decimal.NewFromInt(500)}}

	_, err := NewPolicy("", "name", "SKT", nil, nil, ladder, PeriodTypeMonthly, 45)
	assert.Error(t, err)

	_, err = NewPolicy("P1", "name", "", nil, nil, ladder, PeriodTypeMonthly, 45)
	assert.Error(t, err)

	_, err = NewPolicy("P1", "name", "SKT", nil, nil, ladder, PeriodType("YEARLY"), 45)
	assert.Error(t, err)

	_, err = NewPolicy("P1", "name", "SKT", nil, nil, ladder, PeriodTypeMonthly, -1)
	assert.Error(t, err)

	p, err := NewPolicy("P1", "name", "SKT", nil, nil, ladder, PeriodTypeMonthly, 45)
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestPolicy_BucketFor_DefaultLadder(t *testing.T) {
	p, err := NewPolicy("P1", "name", "SKT", nil, nil, nil, PeriodTypeMonthly, 45)
	require.NoError(t, err)
	// No policy ladder: the platform default applies.
	assert.Equal(t, int64(55000), p.BucketFor(decimal.NewFromInt(45000)))
}

func TestNewRateMatrixEntry_Validation(t *testing.T) {
	p := testPolicy(t)

	_, err := NewRateMatrixEntry(p.ID, nil, "", 55000, 24, decimal.NewFromInt(1000))
	assert.Error(t, err)

	_, err = NewRateMatrixEntry(p.ID, nil, "SKT", 0, 24, decimal.NewFromInt(1000))
	assert.Error(t, err)

	_, err = NewRateMatrixEntry(p.ID, nil, "SKT", 55000, 0, decimal.NewFromInt(1000))
	assert.Error(t, err)

	_, err = NewRateMatrixEntry(p.ID, nil, "SKT", 55000, 24, decimal.NewFromInt(-1))
	assert.Error(t, err)

	e, err := NewRateMatrixEntry(p.ID, nil, CarrierAll, 55000, 24, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, e.IsPlatformDefault())
	assert.True(t, e.IsWildcard())
}
