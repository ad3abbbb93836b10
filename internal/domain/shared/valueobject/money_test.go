package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(45000), KRW)
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, KRW, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestNewMoneyKRWFromString(t *testing.T) {
	m, err := NewMoneyKRWFromString("30000")
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(30000)))

	_, err = NewMoneyKRWFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoney_Add(t *testing.T) {
	a := NewMoneyKRWFromInt(12000)
	b := NewMoneyKRWFromInt(30000)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(NewMoneyKRWFromInt(42000)))

	usd, _ := NewMoney(decimal.NewFromInt(10), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestMoney_Subtract(t *testing.T) {
	a := NewMoneyKRWFromInt(30000)
	b := NewMoneyKRWFromInt(12000)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(NewMoneyKRWFromInt(18000)))
}

func TestMoney_MultiplyByInt(t *testing.T) {
	bonus := NewMoneyKRWFromInt(500)
	total := bonus.MultiplyByInt(10)
	assert.True(t, total.Equals(NewMoneyKRWFromInt(5000)))
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyKRWFromInt(5000)
	b := NewMoneyKRWFromInt(7000)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, ZeroKRW().IsZero())
	assert.True(t, a.IsPositive())
	assert.True(t, a.Negate().IsNegative())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "45000 KRW", NewMoneyKRWFromInt(45000).String())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyKRWFromInt(12000)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var out Money
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, m.Equals(out))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("30000"))
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}
