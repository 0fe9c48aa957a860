package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/tariffengine/internal/value"
)

func TestTrace_RecordAndGet(t *testing.T) {
	tr := New()
	tr.Record("premium", "round", value.FromText("220.00"), []string{"premium"})

	rec, ok := tr.Get("premium")
	require.True(t, ok)
	assert.Equal(t, "premium", rec.Node)
	assert.Equal(t, "round", rec.Kind)
}

func TestTrace_RecordIsIdempotent(t *testing.T) {
	tr := New()
	tr.Record("x", "constant", value.FromText("first"), nil)
	tr.Record("x", "constant", value.FromText("second"), nil)

	rec, ok := tr.Get("x")
	require.True(t, ok)
	got, _ := rec.Value.Text()
	assert.Equal(t, "first", got, "the first recorded value for a node wins")
}

func TestTrace_NilIsNoOp(t *testing.T) {
	var tr *Trace
	assert.NotPanics(t, func() {
		tr.Record("x", "constant", value.FromText("y"), nil)
		_, ok := tr.Get("x")
		assert.False(t, ok)
		assert.Empty(t, tr.All())
	})
}

func TestTrace_Export(t *testing.T) {
	tr := New()
	tr.Record("premium", "round", value.FromText("220.00"), []string{"premium"})

	data, err := tr.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
