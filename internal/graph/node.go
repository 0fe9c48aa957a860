// Package graph models the pricing DAG: nodes drawn from a fixed algebra
// of twelve kinds, wired together by name references, validated for
// resolvable dependencies and acyclicity before any evaluation runs.
package graph

import (
	"fmt"

	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/value"
)

// Kind enumerates the node algebra.
type Kind string

const (
	KindInput    Kind = "input"
	KindConstant Kind = "constant"
	KindAdd      Kind = "add"
	KindMultiply Kind = "multiply"
	KindLookup   Kind = "lookup"
	KindIf       Kind = "if"
	KindRound    Kind = "round"
	KindSwitch   Kind = "switch"
	KindCoalesce Kind = "coalesce"
	KindMin      Kind = "min"
	KindMax      Kind = "max"
	KindAbs      Kind = "abs"
)

// CompareOp is the comparison an IF node applies between its condition
// node's value and its threshold.
type CompareOp string

const (
	OpGT CompareOp = ">"
	OpLT CompareOp = "<"
	OpGE CompareOp = ">="
	OpLE CompareOp = "<="
)

// LookupMode selects which table kind a LOOKUP node addresses.
type LookupMode string

const (
	LookupRange LookupMode = "range"
	LookupExact LookupMode = "exact"
)

// Branch is either a reference to another node or an inline constant,
// used for IF's then/else arms and SWITCH's case results and default.
type Branch struct {
	Ref   string
	Const value.Value
}

// IsRef reports whether the branch names a node rather than carrying a
// literal.
func (b Branch) IsRef() bool { return b.Ref != "" }

// ConstBranch builds a literal branch.
func ConstBranch(v value.Value) Branch { return Branch{Const: v} }

// RefBranch builds a node-reference branch.
func RefBranch(name string) Branch { return Branch{Ref: name} }

// SwitchCase pairs a match key with the branch taken when the SWITCH
// node's variable equals it.
type SwitchCase struct {
	Key    value.Value
	Result Branch
}

// Node is one vertex of the pricing graph. Only the fields relevant to
// its Kind are populated; the rest are left zero.
type Node struct {
	Name string
	Kind Kind

	// KindInput
	InputKey   string
	InputDType value.Kind // KindDecimal or KindText

	// KindConstant
	ConstValue value.Value

	// KindAdd, KindMultiply, KindCoalesce, KindMin, KindMax
	Inputs []string

	// KindLookup
	TableName  string
	LookupMode LookupMode
	KeyNode    string

	// KindIf
	CondNode  string
	CompareOp CompareOp
	Threshold decimal.Decimal
	Then      Branch
	Else      Branch

	// KindRound
	RoundInput    string
	RoundDecimals int
	RoundMode     decimal.RoundingMode

	// KindSwitch
	SwitchVar string
	Cases     []SwitchCase
	Default   *Branch

	// KindAbs
	AbsInput string
}

// dependencies returns the full set of node names n refers to, in
// declaration order, including duplicates. Used for both graph validation
// and visualization.
func (n *Node) dependencies() []string {
	switch n.Kind {
	case KindInput, KindConstant:
		return nil
	case KindAdd, KindMultiply, KindCoalesce, KindMin, KindMax:
		return append([]string(nil), n.Inputs...)
	case KindLookup:
		return []string{n.KeyNode}
	case KindIf:
		deps := []string{n.CondNode}
		if n.Then.IsRef() {
			deps = append(deps, n.Then.Ref)
		}
		if n.Else.IsRef() {
			deps = append(deps, n.Else.Ref)
		}
		return deps
	case KindRound:
		return []string{n.RoundInput}
	case KindSwitch:
		deps := []string{n.SwitchVar}
		for _, c := range n.Cases {
			if c.Result.IsRef() {
				deps = append(deps, c.Result.Ref)
			}
		}
		if n.Default != nil && n.Default.IsRef() {
			deps = append(deps, n.Default.Ref)
		}
		return deps
	case KindAbs:
		return []string{n.AbsInput}
	default:
		return nil
	}
}

func (n *Node) validateShape() error {
	switch n.Kind {
	case KindInput:
		if n.InputKey == "" {
			return fmt.Errorf("node %q: input node requires an input key", n.Name)
		}
		if n.InputDType != value.KindDecimal && n.InputDType != value.KindText {
			return fmt.Errorf("node %q: input node requires dtype decimal or text", n.Name)
		}
	case KindConstant:
		if n.ConstValue.IsAbsent() {
			return fmt.Errorf("node %q: constant node requires a value", n.Name)
		}
	case KindAdd, KindMultiply, KindMin, KindMax:
		if len(n.Inputs) < 1 {
			return fmt.Errorf("node %q: %s node requires at least one input", n.Name, n.Kind)
		}
	case KindCoalesce:
		if len(n.Inputs) < 1 {
			return fmt.Errorf("node %q: coalesce node requires at least one input", n.Name)
		}
	case KindLookup:
		if n.TableName == "" || n.KeyNode == "" {
			return fmt.Errorf("node %q: lookup node requires a table name and key node", n.Name)
		}
		if n.LookupMode != LookupRange && n.LookupMode != LookupExact {
			return fmt.Errorf("node %q: lookup node requires mode range or exact", n.Name)
		}
	case KindIf:
		if n.CondNode == "" {
			return fmt.Errorf("node %q: if node requires a condition node", n.Name)
		}
		switch n.CompareOp {
		case OpGT, OpLT, OpGE, OpLE:
		default:
			return fmt.Errorf("node %q: if node has invalid comparison operator %q", n.Name, n.CompareOp)
		}
	case KindRound:
		if n.RoundInput == "" {
			return fmt.Errorf("node %q: round node requires an input", n.Name)
		}
		if n.RoundDecimals < 0 {
			return fmt.Errorf("node %q: round node requires decimals >= 0", n.Name)
		}
	case KindSwitch:
		if n.SwitchVar == "" {
			return fmt.Errorf("node %q: switch node requires a variable node", n.Name)
		}
	case KindAbs:
		if n.AbsInput == "" {
			return fmt.Errorf("node %q: abs node requires an input", n.Name)
		}
	default:
		return fmt.Errorf("node %q: unknown node kind %q", n.Name, n.Kind)
	}
	return nil
}
