package profiler

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_RecordsCallsAndElapsed(t *testing.T) {
	p := New()
	p.RecordMiss("a")
	p.RecordElapsed("a", 5*time.Millisecond)
	p.RecordHit("a")

	stats := p.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Calls)
	assert.Equal(t, 1, stats[0].CacheHits)
	assert.Equal(t, 1, stats[0].CacheMisses)
	assert.Equal(t, 5*time.Millisecond, stats[0].Elapsed)
}

func TestProfiler_Aggregate(t *testing.T) {
	p := New()
	p.RecordMiss("a")
	p.RecordElapsed("a", 10*time.Millisecond)
	p.RecordMiss("b")
	p.RecordElapsed("b", 30*time.Millisecond)
	p.RecordHit("b")
	p.RecordHit("b")

	agg := p.Aggregate()
	assert.Equal(t, 40*time.Millisecond, agg.TotalTime)
	assert.Equal(t, "b", agg.SlowestNode)
	assert.Equal(t, "b", agg.MostCalledNode)
	assert.InDelta(t, 0.5, agg.CacheHitRate, 0.01)
}

func TestProfiler_NilIsNoOp(t *testing.T) {
	var p *Profiler
	assert.NotPanics(t, func() {
		p.RecordHit("a")
		p.RecordMiss("a")
		p.RecordElapsed("a", time.Second)
		assert.Empty(t, p.Stats())
		assert.Equal(t, Aggregate{}, p.Aggregate())
	})
}

func TestProfiler_Report(t *testing.T) {
	p := New()
	p.RecordMiss("a")
	p.RecordElapsed("a", time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, p.Report(&buf))
	assert.Contains(t, buf.String(), "a")
}

func TestProfiler_Export(t *testing.T) {
	p := New()
	p.RecordMiss("a")
	data, err := p.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
