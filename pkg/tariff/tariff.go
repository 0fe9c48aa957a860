// Package tariff is the stable, programmatic surface of the pricing
// engine: build a Graph, register tables, evaluate a target node for one
// context or a whole batch of contexts.
package tariff

import (
	"context"

	"github.com/ratehub/tariffengine/internal/batch"
	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/evaluator"
	"github.com/ratehub/tariffengine/internal/graph"
	"github.com/ratehub/tariffengine/internal/profiler"
	"github.com/ratehub/tariffengine/internal/table"
	"github.com/ratehub/tariffengine/internal/trace"
	"github.com/ratehub/tariffengine/internal/value"
)

// Node algebra kinds, re-exported so callers building a Graph never have
// to import internal/graph directly.
type (
	Kind       = graph.Kind
	Node       = graph.Node
	Branch     = graph.Branch
	SwitchCase = graph.SwitchCase
	CompareOp  = graph.CompareOp
	LookupMode = graph.LookupMode
)

const (
	KindInput    = graph.KindInput
	KindConstant = graph.KindConstant
	KindAdd      = graph.KindAdd
	KindMultiply = graph.KindMultiply
	KindLookup   = graph.KindLookup
	KindIf       = graph.KindIf
	KindRound    = graph.KindRound
	KindSwitch   = graph.KindSwitch
	KindCoalesce = graph.KindCoalesce
	KindMin      = graph.KindMin
	KindMax      = graph.KindMax
	KindAbs      = graph.KindAbs

	OpGT = graph.OpGT
	OpLT = graph.OpLT
	OpGE = graph.OpGE
	OpLE = graph.OpLE

	LookupRange = graph.LookupRange
	LookupExact = graph.LookupExact
)

// Value and Decimal are the public result types: an absent/decimal/text
// sum type backed by exact, fixed-precision arithmetic.
type (
	Value   = value.Value
	Decimal = decimal.Decimal
	Context = value.Context
)

const (
	HalfUp   = decimal.HalfUp
	HalfEven = decimal.HalfEven
)

var (
	ParseDecimal    = decimal.Parse
	NewContext      = value.NewContext
	FromDecimal     = value.FromDecimal
	FromText        = value.FromText
	RefBranch       = graph.RefBranch
	ConstBranch     = graph.ConstBranch
)

// Table types, re-exported for callers assembling a Registry.
type (
	Table           = table.Table
	RangeEntry      = table.RangeEntry
	ExactEntry      = table.ExactEntry
	TableRegistry   = table.Registry
)

var (
	NewTableRegistry     = table.NewRegistry
	NewOrderedRangeTable = table.NewOrderedRangeTable
	NewExactMatchTable   = table.NewExactMatchTable
)

// Trace and Profiler are diagnostic-only: nothing they record feeds back
// into a price.
type (
	Trace    = trace.Trace
	Profiler = profiler.Profiler
)

var (
	NewTrace    = trace.New
	NewProfiler = profiler.New
)

// Graph owns the nodes of a pricing model plus the tables its LOOKUP
// nodes address.
type Graph = graph.Graph

// NewGraph creates an empty graph for the given product/version/currency
// identifiers, backed by tables for LOOKUP resolution.
func NewGraph(product, version, currency string, tables *TableRegistry) *Graph {
	return graph.NewGraph(product, version, currency, tables)
}

// EvalOptions configures one call to Evaluate: an optional trace and/or
// profiler to attach diagnostics to.
type EvalOptions = evaluator.Options

// Evaluate resolves target within g using the inputs in ctx, returning
// the computed Value or a structured evaluation error.
func Evaluate(ctx context.Context, g *Graph, target string, inputs *Context, opts EvalOptions) (Value, error) {
	return evaluator.Evaluate(ctx, g, target, inputs, opts)
}

// BatchOptions configures a batch run.
type BatchOptions = batch.Options

// EvaluateBatch resolves target once per context, in order, aborting on
// the first error encountered.
func EvaluateBatch(ctx context.Context, g *Graph, target string, contexts []*Context, opts BatchOptions) ([]Value, error) {
	return batch.Run(ctx, g, target, contexts, opts)
}

// EvaluateBatchCollectErrors resolves target once per context,
// concurrently, isolating each row's failure instead of aborting the
// batch.
func EvaluateBatchCollectErrors(ctx context.Context, g *Graph, target string, contexts []*Context, opts BatchOptions) ([]Value, []error) {
	return batch.RunCollectErrors(ctx, g, target, contexts, opts)
}
