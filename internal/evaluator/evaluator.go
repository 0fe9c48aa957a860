// Package evaluator drives a single, memoized depth-first evaluation of a
// pricing graph: one node cache per call, a traversal stack for cycle
// detection and error-path construction, and optional hooks into a trace
// and a profiler.
package evaluator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ratehub/tariffengine/internal/evalerrors"
	"github.com/ratehub/tariffengine/internal/graph"
	"github.com/ratehub/tariffengine/internal/profiler"
	"github.com/ratehub/tariffengine/internal/trace"
	"github.com/ratehub/tariffengine/internal/value"
)

// Options configures one call to Evaluate. A nil Trace or Profiler simply
// disables that hook; Logger defaults to the package-level zerolog
// logger when left nil.
type Options struct {
	Trace    *trace.Trace
	Profiler *profiler.Profiler
	Logger   *zerolog.Logger
}

var tracer = otel.Tracer("github.com/ratehub/tariffengine/internal/evaluator")

// Evaluate resolves target within g, using inputs for INPUT nodes. It
// returns the evaluated Value, or an *evalerrors.EvaluationError
// describing exactly which node failed and the path that reached it.
func Evaluate(ctx context.Context, g *graph.Graph, target string, inputs *value.Context, opts Options) (value.Value, error) {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	s := &state{
		ctx:    ctx,
		g:      g,
		inputs: inputs,
		cache:  make(map[string]value.Value),
		gray:   make(map[string]bool),
		trace:  opts.Trace,
		prof:   opts.Profiler,
		evalID: uuid.New(),
		logger: logger,
	}
	logger.Debug().Str("eval_id", s.evalID.String()).Str("target", target).Msg("evaluation started")
	v, err := s.resolve(target)
	if err != nil {
		if _, ok := err.(*evalerrors.EvaluationError); !ok {
			// Only an unknown target fails before any node's compute step.
			err = evalerrors.Wrap(err, target, []string{target}, inputs.Snapshot())
		}
		logger.Debug().Str("eval_id", s.evalID.String()).Str("target", target).Err(err).Msg("evaluation failed")
		return value.Nil, err
	}
	logger.Debug().Str("eval_id", s.evalID.String()).Str("target", target).Str("result", v.String()).Msg("evaluation finished")
	return v, nil
}

type state struct {
	ctx    context.Context
	g      *graph.Graph
	inputs *value.Context
	cache  map[string]value.Value
	stack  []string
	gray   map[string]bool
	// childTime[i] accumulates the wall-clock time spent inside the
	// recursive calls made while resolving stack[i], so the profiler can
	// attribute to each node only the time it spent in its own compute
	// step (exclusive of its dependencies).
	childTime []time.Duration
	trace     *trace.Trace
	prof      *profiler.Profiler
	evalID    uuid.UUID
	logger    zerolog.Logger
}

func (s *state) resolve(name string) (value.Value, error) {
	if v, ok := s.cache[name]; ok {
		s.prof.RecordHit(name)
		return v, nil
	}
	if s.gray[name] {
		path := append(append([]string(nil), s.stack...), name)
		return value.Nil, &evalerrors.CycleError{Node: name, Path: path}
	}
	n, ok := s.g.Get(name)
	if !ok {
		return value.Nil, &evalerrors.UnresolvedReferenceError{To: name}
	}

	parentCtx := s.ctx
	var span oteltrace.Span
	s.ctx, span = tracer.Start(parentCtx, name)
	defer func() {
		span.End()
		s.ctx = parentCtx
	}()

	s.gray[name] = true
	s.stack = append(s.stack, name)
	s.childTime = append(s.childTime, 0)
	s.prof.RecordMiss(name)

	start := time.Now()
	v, err := s.compute(n)
	total := time.Since(start)

	frame := len(s.childTime) - 1
	exclusive := total - s.childTime[frame]
	s.childTime = s.childTime[:frame]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.gray, name)

	if len(s.childTime) > 0 {
		s.childTime[len(s.childTime)-1] += total
	}
	s.prof.RecordElapsed(name, exclusive)

	if err != nil {
		if evalErr, ok := err.(*evalerrors.EvaluationError); ok {
			// Already wrapped by a deeper frame; re-raise unchanged.
			return value.Nil, evalErr
		}
		path := append(append([]string(nil), s.stack...), name)
		return value.Nil, evalerrors.Wrap(err, name, path, s.inputs.Snapshot())
	}

	s.cache[name] = v
	path := append(append([]string(nil), s.stack...), name)
	s.trace.Record(name, string(n.Kind), v, path)
	return v, nil
}
