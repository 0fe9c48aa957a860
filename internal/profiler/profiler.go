// Package profiler instruments node-level timing and cache behavior
// during an evaluation. A Profiler never influences a computed price; it
// only observes.
package profiler

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/vmihailenco/msgpack/v5"
)

// NodeStats accumulates the observed behavior of a single node across
// however many times it was resolved (once per evaluation, thanks to the
// evaluator's cache, but more in a batch run that reuses one Profiler).
type NodeStats struct {
	Name        string        `msgpack:"name"`
	Calls       int           `msgpack:"calls"`
	CacheHits   int           `msgpack:"cache_hits"`
	CacheMisses int           `msgpack:"cache_misses"`
	Elapsed     time.Duration `msgpack:"elapsed_ns"`
}

// Aggregate summarizes a Profiler's stats across all nodes.
type Aggregate struct {
	TotalTime      time.Duration `msgpack:"total_time_ns"`
	TotalCalls     int           `msgpack:"total_calls"`
	CacheHitRate   float64       `msgpack:"cache_hit_rate"`
	SlowestNode    string        `msgpack:"slowest_node"`
	MostCalledNode string        `msgpack:"most_called_node"`
}

// Profiler is safe for concurrent use: a batch run sharing one Profiler
// across worker goroutines records into it without external locking. A
// nil *Profiler is valid: its Record methods do nothing, Stats and
// Aggregate return empty results, and Report writes a single
// "profiler: disabled" line.
type Profiler struct {
	mu    sync.Mutex
	stats map[string]*NodeStats
	order []string
}

// New creates an empty, enabled Profiler.
func New() *Profiler {
	return &Profiler{stats: make(map[string]*NodeStats)}
}

func (p *Profiler) entry(name string) *NodeStats {
	s, ok := p.stats[name]
	if !ok {
		s = &NodeStats{Name: name}
		p.stats[name] = s
		p.order = append(p.order, name)
	}
	return s
}

// RecordHit records a cache hit for node.
func (p *Profiler) RecordHit(node string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.entry(node)
	s.Calls++
	s.CacheHits++
}

// RecordMiss records a cache miss (the node's compute function actually
// ran) for node.
func (p *Profiler) RecordMiss(node string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.entry(node)
	s.Calls++
	s.CacheMisses++
}

// RecordElapsed adds d, the time spent in node's own compute step
// exclusive of any nested node resolution, to node's running total.
func (p *Profiler) RecordElapsed(node string, d time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.entry(node)
	s.Elapsed += d
}

// Stats returns a snapshot of every node's accumulated stats, in
// first-seen order.
func (p *Profiler) Stats() []NodeStats {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]NodeStats, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, *p.stats[name])
	}
	return out
}

// Aggregate computes the summary statistics over every recorded node.
func (p *Profiler) Aggregate() Aggregate {
	if p == nil {
		return Aggregate{}
	}
	stats := p.Stats()
	var agg Aggregate
	var totalHits, totalLookups int
	for _, s := range stats {
		agg.TotalTime += s.Elapsed
		agg.TotalCalls += s.Calls
		totalHits += s.CacheHits
		totalLookups += s.CacheHits + s.CacheMisses
		if agg.SlowestNode == "" || s.Elapsed > statsByName(stats, agg.SlowestNode).Elapsed {
			agg.SlowestNode = s.Name
		}
		if agg.MostCalledNode == "" || s.Calls > statsByName(stats, agg.MostCalledNode).Calls {
			agg.MostCalledNode = s.Name
		}
	}
	if totalLookups > 0 {
		agg.CacheHitRate = float64(totalHits) / float64(totalLookups)
	}
	return agg
}

func statsByName(stats []NodeStats, name string) NodeStats {
	for _, s := range stats {
		if s.Name == name {
			return s
		}
	}
	return NodeStats{}
}

// Report writes a human-readable table of per-node stats, sorted by
// elapsed time descending, to w. The slowest node's row is marked with
// "*". When w is a terminal (detected via go-isatty) the header line is
// printed in bold, with w wrapped in go-colorable so ANSI codes render
// correctly on Windows consoles too.
func (p *Profiler) Report(w io.Writer) error {
	if p == nil {
		_, err := fmt.Fprintln(w, "profiler: disabled")
		return err
	}
	stats := p.Stats()
	sort.Slice(stats, func(i, j int) bool { return stats[i].Elapsed > stats[j].Elapsed })
	agg := p.Aggregate()

	out := w
	colorize := false
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = colorable.NewColorable(f)
		colorize = true
	}

	const reset, bold = "\x1b[0m", "\x1b[1m"
	line := func(format string, args ...any) {
		fmt.Fprintf(out, format+"\n", args...)
	}
	if colorize {
		line(bold+"node profile (total %s, %d calls, %.1f%% cache hit rate)"+reset,
			agg.TotalTime, agg.TotalCalls, agg.CacheHitRate*100)
	} else {
		line("node profile (total %s, %d calls, %.1f%% cache hit rate)",
			agg.TotalTime, agg.TotalCalls, agg.CacheHitRate*100)
	}
	for _, s := range stats {
		marker := "  "
		if s.Name == agg.SlowestNode {
			marker = "* "
		}
		line("%s%-24s calls=%-4d hits=%-4d misses=%-4d elapsed=%s", marker, s.Name, s.Calls, s.CacheHits, s.CacheMisses, s.Elapsed)
	}
	return nil
}


// snapshot is the msgpack-serializable view of a Profiler's full state.
type snapshot struct {
	Stats     []NodeStats `msgpack:"stats"`
	Aggregate Aggregate   `msgpack:"aggregate"`
}

// Export serializes the profiler's stats and aggregate to msgpack.
func (p *Profiler) Export() ([]byte, error) {
	return msgpack.Marshal(snapshot{Stats: p.Stats(), Aggregate: p.Aggregate()})
}
