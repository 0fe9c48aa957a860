// Package batch runs one graph evaluation per row of a batch, either
// failing fast on the first error or isolating each row's failure so the
// rest of the batch still completes.
package batch

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ratehub/tariffengine/internal/evaluator"
	"github.com/ratehub/tariffengine/internal/graph"
	"github.com/ratehub/tariffengine/internal/profiler"
	"github.com/ratehub/tariffengine/internal/value"
)

// Options configures a batch run. A shared Profiler, if set, accumulates
// stats across every row; per-row tracing is not supported by Run (use
// evaluator.Evaluate directly for a single row that needs its own trace).
type Options struct {
	Profiler *profiler.Profiler
	// MaxConcurrency bounds how many rows RunCollectErrors evaluates in
	// parallel. Zero or negative means unbounded.
	MaxConcurrency int
}

// Row pairs one batch row's result value and error with the row's
// original index, so error reporting can point back at which row of the
// caller's input failed.
type Row struct {
	Index int
	Value value.Value
	Err   error
}

// Run evaluates target against every context in order, stopping at the
// first error (fail-fast). It runs strictly sequentially so "the first
// error" means the first in row order, not the first to finish.
func Run(ctx context.Context, g *graph.Graph, target string, contexts []*value.Context, opts Options) ([]value.Value, error) {
	results := make([]value.Value, 0, len(contexts))
	for i, rowCtx := range contexts {
		v, err := evaluator.Evaluate(ctx, g, target, rowCtx, evaluator.Options{Profiler: opts.Profiler})
		if err != nil {
			log.Logger.Debug().Int("row", i).Err(err).Msg("batch aborted on first error")
			return results, err
		}
		results = append(results, v)
	}
	return results, nil
}

// RunCollectErrors evaluates target against every context, isolating
// each row's failure: a row that errors contributes an absent value and
// its error to the output, and every other row still runs. Evaluation is
// spread across up to MaxConcurrency goroutines (unbounded if <= 0), but
// the output preserves input order regardless of completion order.
func RunCollectErrors(ctx context.Context, g *graph.Graph, target string, contexts []*value.Context, opts Options) ([]value.Value, []error) {
	n := len(contexts)
	results := make([]value.Value, n)
	errs := make([]error, n)

	limit := opts.MaxConcurrency
	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	var wg sync.WaitGroup
	for i, rowCtx := range contexts {
		wg.Add(1)
		go func(i int, rowCtx *value.Context) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			v, err := evaluator.Evaluate(ctx, g, target, rowCtx, evaluator.Options{Profiler: opts.Profiler})
			if err != nil {
				log.Logger.Debug().Int("row", i).Err(err).Msg("row isolated with error")
				errs[i] = err
				results[i] = value.Nil
				return
			}
			results[i] = v
		}(i, rowCtx)
	}
	wg.Wait()
	return results, errs
}
