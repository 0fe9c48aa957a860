package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/value"
)

func TestParseRangeTable(t *testing.T) {
	name, tbl, err := ParseRangeTable([]byte(`
name: age_factor_table
default: "1.00"
rows:
  - lo: "18"
    hi: "25"
    value: "1.50"
  - lo: "26"
    hi: "40"
    value: "1.10"
`))
	require.NoError(t, err)
	assert.Equal(t, "age_factor_table", name)

	v, err := tbl.Lookup("age_factor", value.FromDecimal(mustDecimal(t, "30")))
	require.NoError(t, err)
	got, _ := v.Decimal()
	assert.Equal(t, 0, got.Cmp(mustDecimal(t, "1.10")))

	v, err = tbl.Lookup("age_factor", value.FromDecimal(mustDecimal(t, "60")))
	require.NoError(t, err)
	got, _ = v.Decimal()
	assert.Equal(t, 0, got.Cmp(mustDecimal(t, "1.00")), "60 falls outside every row so the table default applies")
}

func TestParseExactTable(t *testing.T) {
	name, tbl, err := ParseExactTable([]byte(`
name: brand_table
rows:
  - key: BMW
    value: "1.20"
  - key: Toyota
    value: "0.95"
`))
	require.NoError(t, err)
	assert.Equal(t, "brand_table", name)

	v, err := tbl.Lookup("brand_factor", value.FromText("Toyota"))
	require.NoError(t, err)
	got, _ := v.Decimal()
	assert.Equal(t, 0, got.Cmp(mustDecimal(t, "0.95")))
}

func TestParseBatchRows(t *testing.T) {
	rows, err := ParseBatchRows([]byte(`
- inputs:
    age: 22
  expect: "1.50"
- inputs: {}
  expect_error: true
`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 22, rows[0].Inputs["age"])
	assert.Equal(t, "1.50", rows[0].Expect)
	assert.True(t, rows[1].ExpectError)
}

func TestDecodeParams(t *testing.T) {
	type roundParams struct {
		Decimals int    `yaml:"decimals"`
		Mode     string `yaml:"mode"`
	}
	got, err := DecodeParams[roundParams](map[string]any{"decimals": 2, "mode": "half_up"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Decimals)
	assert.Equal(t, "half_up", got.Mode)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	dd, err := decimal.Parse(s)
	require.NoError(t, err)
	return dd
}
