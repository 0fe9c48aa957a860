package value

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ratehub/tariffengine/internal/decimal"
)

func TestValue_Variants(t *testing.T) {
	assert.True(t, Nil.IsAbsent())
	assert.Equal(t, Absent, Nil.Kind())

	d := FromDecimal(decimal.MustParse("1.50"))
	assert.False(t, d.IsAbsent())
	got, ok := d.Decimal()
	assert.True(t, ok)
	assert.Equal(t, 0, got.Cmp(decimal.MustParse("1.50")))

	txt := FromText("BMW")
	s, ok := txt.Text()
	assert.True(t, ok)
	assert.Equal(t, "BMW", s)
}

func TestValue_Equal_CrossKindNeverEqual(t *testing.T) {
	d := FromDecimal(decimal.MustParse("0"))
	txt := FromText("")
	assert.False(t, d.Equal(txt))
	assert.True(t, Nil.Equal(Nil))
}

func TestValue_Equal_DecimalIgnoresScale(t *testing.T) {
	a := FromDecimal(decimal.MustParse("1.50"))
	b := FromDecimal(decimal.MustParse("1.5"))
	assert.True(t, a.Equal(b))
}

func TestContext_Get(t *testing.T) {
	ctx := NewContext(map[string]any{"age": 30, "region": "NW"})
	v, ok := ctx.Get("age")
	assert.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok = ctx.Get("missing")
	assert.False(t, ok)
}

func TestContext_SnapshotIsACopy(t *testing.T) {
	inputs := map[string]any{"age": 30}
	ctx := NewContext(inputs)
	inputs["age"] = 99
	snap := ctx.Snapshot()
	assert.Equal(t, 30, snap["age"])
}
