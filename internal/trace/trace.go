// Package trace records, per node visited during an evaluation, the value
// it produced and the path that led to it. A Trace is purely diagnostic:
// nothing in the evaluator reads it back to make a decision.
package trace

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ratehub/tariffengine/internal/value"
)

// Record is one node's recorded outcome.
type Record struct {
	Node  string
	Kind  string
	Value value.Value
	Path  []string
}

// Trace collects Records for a single evaluation. A nil *Trace is valid
// and every method on it is a no-op, so callers can pass a nil trace to
// disable tracing without branching at each call site.
type Trace struct {
	mu      sync.Mutex
	records map[string]Record
	order   []string
}

// New creates an empty, enabled Trace.
func New() *Trace {
	return &Trace{records: make(map[string]Record)}
}

// Record stores the outcome for node, if it has not already been
// recorded (the evaluator's cache guarantees each node computes at most
// once per evaluation, so this also guards against accidental double
// recording).
func (t *Trace) Record(node, kind string, v value.Value, path []string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.records[node]; ok {
		return
	}
	t.records[node] = Record{Node: node, Kind: kind, Value: v, Path: append([]string(nil), path...)}
	t.order = append(t.order, node)
}

// Get returns the record for node, if any.
func (t *Trace) Get(node string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[node]
	return r, ok
}

// All returns every record in the order nodes were first visited.
func (t *Trace) All() []Record {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.records[name])
	}
	return out
}

// exportRecord is Record flattened into msgpack-friendly scalars; Value
// does not implement msgpack.CustomEncoder itself so traces are exported
// through this shape instead.
type exportRecord struct {
	Node      string   `msgpack:"node"`
	Kind      string   `msgpack:"kind"`
	ValueKind string   `msgpack:"value_kind"`
	Decimal   string   `msgpack:"decimal,omitempty"`
	Text      string   `msgpack:"text,omitempty"`
	Path      []string `msgpack:"path"`
}

// Export serializes the trace to msgpack for shipping out of process
// (a batch runner persisting per-row traces, for example).
func (t *Trace) Export() ([]byte, error) {
	records := t.All()
	rows := make([]exportRecord, 0, len(records))
	for _, r := range records {
		row := exportRecord{Node: r.Node, Kind: r.Kind, ValueKind: r.Value.Kind().String(), Path: r.Path}
		switch r.Value.Kind() {
		case value.KindDecimal:
			d, _ := r.Value.Decimal()
			row.Decimal = d.String()
		case value.KindText:
			row.Text, _ = r.Value.Text()
		}
		rows = append(rows, row)
	}
	return msgpack.Marshal(rows)
}
