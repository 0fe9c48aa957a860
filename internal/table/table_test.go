package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/value"
)

func d(s string) decimal.Decimal { return decimal.MustParse(s) }

func TestOrderedRangeTable_BasicContainment(t *testing.T) {
	tbl, err := NewOrderedRangeTable([]RangeEntry{
		{Lo: d("18"), Hi: d("25"), Value: value.FromDecimal(d("1.50"))},
		{Lo: d("26"), Hi: d("40"), Value: value.FromDecimal(d("1.10"))},
		{Lo: d("41"), Hi: d("99"), Value: value.FromDecimal(d("1.00"))},
	}, nil)
	require.NoError(t, err)

	v, err := tbl.Lookup("age_factor", value.FromDecimal(d("22")))
	require.NoError(t, err)
	got, _ := v.Decimal()
	assert.Equal(t, 0, got.Cmp(d("1.50")))

	v, err = tbl.Lookup("age_factor", value.FromDecimal(d("40")))
	require.NoError(t, err)
	got, _ = v.Decimal()
	assert.Equal(t, 0, got.Cmp(d("1.10")))
}

func TestOrderedRangeTable_MissWithoutDefault(t *testing.T) {
	tbl, err := NewOrderedRangeTable([]RangeEntry{
		{Lo: d("18"), Hi: d("25"), Value: value.FromDecimal(d("1.50"))},
	}, nil)
	require.NoError(t, err)

	_, err = tbl.Lookup("age_factor", value.FromDecimal(d("99")))
	assert.Error(t, err)
}

func TestOrderedRangeTable_DefaultOnMiss(t *testing.T) {
	def := value.FromDecimal(d("1.00"))
	tbl, err := NewOrderedRangeTable([]RangeEntry{
		{Lo: d("18"), Hi: d("25"), Value: value.FromDecimal(d("1.50"))},
	}, &def)
	require.NoError(t, err)

	v, err := tbl.Lookup("age_factor", value.FromDecimal(d("99")))
	require.NoError(t, err)
	got, _ := v.Decimal()
	assert.Equal(t, 0, got.Cmp(d("1.00")))
}

func TestOrderedRangeTable_EarliestInsertionWinsOnOverlap(t *testing.T) {
	// Two intervals both contain 20; the one authored first must win
	// regardless of how the binary search lands.
	tbl, err := NewOrderedRangeTable([]RangeEntry{
		{Lo: d("10"), Hi: d("30"), Value: value.FromText("first")},
		{Lo: d("15"), Hi: d("25"), Value: value.FromText("second")},
	}, nil)
	require.NoError(t, err)

	v, err := tbl.Lookup("region", value.FromDecimal(d("20")))
	require.NoError(t, err)
	got, _ := v.Text()
	assert.Equal(t, "first", got)
}

func TestOrderedRangeTable_TypeMismatch(t *testing.T) {
	tbl, err := NewOrderedRangeTable([]RangeEntry{
		{Lo: d("0"), Hi: d("10"), Value: value.FromDecimal(d("1"))},
	}, nil)
	require.NoError(t, err)

	_, err = tbl.Lookup("x", value.FromText("oops"))
	assert.Error(t, err)
}

func TestExactMatchTable_TextKeys(t *testing.T) {
	tbl, err := NewExactMatchTable([]ExactEntry{
		{Key: value.FromText("BMW"), Value: value.FromDecimal(d("1.20"))},
		{Key: value.FromText("Toyota"), Value: value.FromDecimal(d("0.95"))},
	}, nil)
	require.NoError(t, err)

	v, err := tbl.Lookup("brand_factor", value.FromText("BMW"))
	require.NoError(t, err)
	got, _ := v.Decimal()
	assert.Equal(t, 0, got.Cmp(d("1.20")))

	_, err = tbl.Lookup("brand_factor", value.FromText("Ford"))
	assert.Error(t, err)
}

func TestExactMatchTable_IntegerKeysWithDefault(t *testing.T) {
	def := value.FromDecimal(d("1.00"))
	tbl, err := NewExactMatchTable([]ExactEntry{
		{Key: value.FromDecimal(d("1")), Value: value.FromDecimal(d("0.90"))},
		{Key: value.FromDecimal(d("2")), Value: value.FromDecimal(d("0.95"))},
	}, &def)
	require.NoError(t, err)

	v, err := tbl.Lookup("claims_factor", value.FromDecimal(d("5")))
	require.NoError(t, err)
	got, _ := v.Decimal()
	assert.Equal(t, 0, got.Cmp(d("1.00")))
}
