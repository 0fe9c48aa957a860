package evaluator

import (
	"errors"

	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/evalerrors"
	"github.com/ratehub/tariffengine/internal/graph"
	"github.com/ratehub/tariffengine/internal/table"
	"github.com/ratehub/tariffengine/internal/value"
)

// compute runs the single compute step for n, resolving whatever
// dependencies its kind requires via s.resolve. It returns either a
// concrete Value, value.Nil plus a raw evalerrors.* error (a failure
// rooted at n itself), or value.Nil plus an already-wrapped
// *evalerrors.EvaluationError bubbled up from a dependency.
func (s *state) compute(n *graph.Node) (value.Value, error) {
	switch n.Kind {
	case graph.KindInput:
		return s.computeInput(n)
	case graph.KindConstant:
		return n.ConstValue, nil
	case graph.KindAdd:
		return s.computeFold(n, decimal.Zero(), func(acc, v decimal.Decimal) decimal.Decimal { return acc.Add(v) })
	case graph.KindMultiply:
		return s.computeFold(n, decimal.FromInt64(1), func(acc, v decimal.Decimal) decimal.Decimal { return acc.Mul(v) })
	case graph.KindMin:
		return s.computeMinMax(n, decimal.Min)
	case graph.KindMax:
		return s.computeMinMax(n, decimal.Max)
	case graph.KindCoalesce:
		return s.computeCoalesce(n)
	case graph.KindLookup:
		return s.computeLookup(n)
	case graph.KindIf:
		return s.computeIf(n)
	case graph.KindRound:
		return s.computeRound(n)
	case graph.KindSwitch:
		return s.computeSwitch(n)
	case graph.KindAbs:
		return s.computeAbs(n)
	default:
		return value.Nil, &evalerrors.InternalError{Message: "unknown node kind " + string(n.Kind)}
	}
}

func (s *state) computeInput(n *graph.Node) (value.Value, error) {
	raw, ok := s.inputs.Get(n.InputKey)
	if !ok || raw == nil {
		return value.Nil, nil
	}
	switch n.InputDType {
	case value.KindDecimal:
		d, err := coerceDecimal(raw)
		if err != nil {
			return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "decimal", Got: goTypeName(raw)}
		}
		return value.FromDecimal(d), nil
	case value.KindText:
		str, ok := raw.(string)
		if !ok {
			return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "text", Got: goTypeName(raw)}
		}
		return value.FromText(str), nil
	default:
		return value.Nil, &evalerrors.InternalError{Message: "input node " + n.Name + " has no declared dtype"}
	}
}

func coerceDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.FromInt64(int64(v)), nil
	case int64:
		return decimal.FromInt64(v), nil
	case float64:
		return decimal.FromFloat64(v)
	case string:
		return decimal.Parse(v)
	default:
		return decimal.Decimal{}, errNotDecimal
	}
}

var errNotDecimal = errors.New("value is not decimal-coercible")

func goTypeName(v any) string {
	switch v.(type) {
	case string:
		return "text"
	case int, int64, float64, decimal.Decimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// computeFold evaluates every input in order (no short-circuit: inputs
// after an absent one are still resolved and type-checked) and folds the
// non-absent decimal results. If any input is absent, the result is absent. If any
// non-absent input is not a decimal, that is a type mismatch.
func (s *state) computeFold(n *graph.Node, identity decimal.Decimal, combine func(acc, v decimal.Decimal) decimal.Decimal) (value.Value, error) {
	acc := identity
	sawAbsent := false
	for _, dep := range n.Inputs {
		v, err := s.resolve(dep)
		if err != nil {
			return value.Nil, err
		}
		if v.IsAbsent() {
			sawAbsent = true
			continue
		}
		d, ok := v.Decimal()
		if !ok {
			return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "decimal", Got: v.Kind().String()}
		}
		acc = combine(acc, d)
	}
	if sawAbsent {
		return value.Nil, nil
	}
	return value.FromDecimal(acc), nil
}

// computeMinMax evaluates every input, filters out absent ones, and
// returns the pick among whatever decimals remain. Absent only when every
// input is absent.
func (s *state) computeMinMax(n *graph.Node, pick func(a, b decimal.Decimal) decimal.Decimal) (value.Value, error) {
	var acc decimal.Decimal
	have := false
	for _, dep := range n.Inputs {
		v, err := s.resolve(dep)
		if err != nil {
			return value.Nil, err
		}
		if v.IsAbsent() {
			continue
		}
		d, ok := v.Decimal()
		if !ok {
			return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "decimal", Got: v.Kind().String()}
		}
		if !have {
			acc, have = d, true
			continue
		}
		acc = pick(acc, d)
	}
	if !have {
		return value.Nil, nil
	}
	return value.FromDecimal(acc), nil
}

// computeCoalesce resolves its inputs one at a time, in order, and
// returns the first non-absent result without resolving the rest.
func (s *state) computeCoalesce(n *graph.Node) (value.Value, error) {
	for _, dep := range n.Inputs {
		v, err := s.resolve(dep)
		if err != nil {
			return value.Nil, err
		}
		if !v.IsAbsent() {
			return v, nil
		}
	}
	return value.Nil, nil
}

func (s *state) computeLookup(n *graph.Node) (value.Value, error) {
	key, err := s.resolve(n.KeyNode)
	if err != nil {
		return value.Nil, err
	}
	if key.IsAbsent() {
		return value.Nil, nil
	}
	t, ok := s.g.Tables().Get(n.TableName)
	if !ok {
		return value.Nil, &evalerrors.InternalError{Message: "table " + n.TableName + " is not registered"}
	}
	modeMatches := true
	switch t.(type) {
	case *table.OrderedRangeTable:
		modeMatches = n.LookupMode == graph.LookupRange
	case *table.ExactMatchTable:
		modeMatches = n.LookupMode == graph.LookupExact
	}
	if !modeMatches {
		return value.Nil, &evalerrors.DomainError{Node: n.Name, Message: "lookup mode " + string(n.LookupMode) + " does not match the kind of table " + n.TableName}
	}
	return t.Lookup(n.Name, key)
}

func (s *state) computeIf(n *graph.Node) (value.Value, error) {
	cond, err := s.resolve(n.CondNode)
	if err != nil {
		return value.Nil, err
	}
	if cond.IsAbsent() {
		return value.Nil, &evalerrors.MissingInputError{Node: n.Name, Input: n.CondNode}
	}
	d, ok := cond.Decimal()
	if !ok {
		return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "decimal", Got: cond.Kind().String()}
	}
	cmp := d.Cmp(n.Threshold)
	var taken bool
	switch n.CompareOp {
	case graph.OpGT:
		taken = cmp > 0
	case graph.OpLT:
		taken = cmp < 0
	case graph.OpGE:
		taken = cmp >= 0
	case graph.OpLE:
		taken = cmp <= 0
	}
	branch := n.Else
	if taken {
		branch = n.Then
	}
	return s.resolveBranch(branch)
}

func (s *state) resolveBranch(b graph.Branch) (value.Value, error) {
	if b.IsRef() {
		return s.resolve(b.Ref)
	}
	return b.Const, nil
}

func (s *state) computeRound(n *graph.Node) (value.Value, error) {
	v, err := s.resolve(n.RoundInput)
	if err != nil {
		return value.Nil, err
	}
	if v.IsAbsent() {
		return value.Nil, nil
	}
	d, ok := v.Decimal()
	if !ok {
		return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "decimal", Got: v.Kind().String()}
	}
	rounded, err := d.Round(n.RoundDecimals, n.RoundMode)
	if err != nil {
		return value.Nil, &evalerrors.DomainError{Node: n.Name, Message: "invalid rounding specification", Cause: err}
	}
	return value.FromDecimal(rounded), nil
}

func (s *state) computeSwitch(n *graph.Node) (value.Value, error) {
	v, err := s.resolve(n.SwitchVar)
	if err != nil {
		return value.Nil, err
	}
	if !v.IsAbsent() {
		for _, c := range n.Cases {
			if c.Key.Equal(v) {
				return s.resolveBranch(c.Result)
			}
		}
	}
	// Absent variable, or no case matched: fall through to default
	// without ever raising — an unmatched switch is not an error.
	if n.Default != nil {
		return s.resolveBranch(*n.Default)
	}
	return value.Nil, nil
}

func (s *state) computeAbs(n *graph.Node) (value.Value, error) {
	v, err := s.resolve(n.AbsInput)
	if err != nil {
		return value.Nil, err
	}
	if v.IsAbsent() {
		return value.Nil, nil
	}
	d, ok := v.Decimal()
	if !ok {
		return value.Nil, &evalerrors.TypeMismatchError{Node: n.Name, Expected: "decimal", Got: v.Kind().String()}
	}
	return value.FromDecimal(d.Abs()), nil
}
