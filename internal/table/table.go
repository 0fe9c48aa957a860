// Package table implements the two lookup table kinds used by LOOKUP
// nodes: range-keyed tables resolved by binary search, and exact-match
// tables keyed by text or integer.
package table

import (
	"fmt"
	"sort"

	"github.com/ratehub/tariffengine/internal/decimal"
	"github.com/ratehub/tariffengine/internal/evalerrors"
	"github.com/ratehub/tariffengine/internal/value"
)

// Table is the common lookup surface both table kinds implement.
type Table interface {
	// Lookup resolves key to a Value, returning a *evalerrors.LookupMissError
	// if nothing matches and no default is configured, or a
	// *evalerrors.TypeMismatchError if key is not the kind the table expects.
	Lookup(name string, key value.Value) (value.Value, error)
}

// RangeEntry is one {lo, hi, value} interval supplied when constructing an
// OrderedRangeTable, in authoring order.
type RangeEntry struct {
	Lo    decimal.Decimal
	Hi    decimal.Decimal
	Value value.Value
}

type rangeRow struct {
	lo, hi decimal.Decimal
	val    value.Value
	seq    int // original authoring index, used to break containment ties
}

// OrderedRangeTable resolves a decimal key to the value of the interval
// that contains it, using binary search over the intervals sorted by
// their lower bound.
type OrderedRangeTable struct {
	rows []rangeRow
	def  *value.Value
}

// NewOrderedRangeTable builds a range table from entries in authoring
// order. def, if non-nil, is returned when no interval contains the
// lookup key.
func NewOrderedRangeTable(entries []RangeEntry, def *value.Value) (*OrderedRangeTable, error) {
	rows := make([]rangeRow, len(entries))
	for i, e := range entries {
		if e.Lo.Cmp(e.Hi) > 0 {
			return nil, fmt.Errorf("table: entry %d has lo > hi", i)
		}
		rows[i] = rangeRow{lo: e.Lo, hi: e.Hi, val: e.Value, seq: i}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].lo.Cmp(rows[j].lo) < 0
	})
	return &OrderedRangeTable{rows: rows, def: def}, nil
}

// Lookup implements Table.
func (t *OrderedRangeTable) Lookup(name string, key value.Value) (value.Value, error) {
	k, ok := key.Decimal()
	if !ok {
		return value.Nil, &evalerrors.TypeMismatchError{Node: name, Expected: "decimal", Got: key.Kind().String()}
	}
	if len(t.rows) == 0 {
		return t.miss(name, k)
	}

	// Binary search for the first row whose lower bound exceeds the key;
	// the row immediately before it is the primary candidate (step 1-2 of
	// the range-lookup algorithm: "largest lo <= key").
	idx := sort.Search(len(t.rows), func(i int) bool {
		return t.rows[i].lo.Cmp(k) > 0
	})
	i := idx - 1
	if i < 0 {
		return t.miss(name, k)
	}

	best := -1
	consider := func(j int) {
		if j < 0 || j >= len(t.rows) {
			return
		}
		r := t.rows[j]
		if k.Cmp(r.lo) < 0 || k.Cmp(r.hi) > 0 {
			return
		}
		if best == -1 || t.rows[j].seq < t.rows[best].seq {
			best = j
		}
	}
	// Candidate 1: the row found by binary search.
	consider(i)
	// Candidate 2: the row immediately below, in case of an overlapping
	// open boundary.
	consider(i - 1)
	// Candidate 3: a row sharing the same lower bound, immediately above.
	if i+1 < len(t.rows) && t.rows[i+1].lo.Cmp(t.rows[i].lo) == 0 {
		consider(i + 1)
	}
	if best == -1 {
		return t.miss(name, k)
	}
	return t.rows[best].val, nil
}

func (t *OrderedRangeTable) miss(name string, k decimal.Decimal) (value.Value, error) {
	if t.def != nil {
		return *t.def, nil
	}
	return value.Nil, &evalerrors.LookupMissError{Table: name, Key: k.String()}
}

// ExactEntry is one key/value pair supplied when constructing an
// ExactMatchTable.
type ExactEntry struct {
	Key   value.Value // must be KindText or KindDecimal (integral)
	Value value.Value
}

// ExactMatchTable resolves a text or integer key via a direct map lookup.
type ExactMatchTable struct {
	textRows map[string]value.Value
	intRows  map[int64]value.Value
	keyKind  value.Kind
	def      *value.Value
}

// NewExactMatchTable builds an exact-match table. All entries must share
// the same key kind (text, or integral decimal); keyKind records which.
func NewExactMatchTable(entries []ExactEntry, def *value.Value) (*ExactMatchTable, error) {
	t := &ExactMatchTable{
		textRows: make(map[string]value.Value),
		intRows:  make(map[int64]value.Value),
		def:      def,
	}
	for i, e := range entries {
		switch e.Key.Kind() {
		case value.KindText:
			if i == 0 {
				t.keyKind = value.KindText
			} else if t.keyKind != value.KindText {
				return nil, fmt.Errorf("table: entry %d mixes text and integer keys", i)
			}
			s, _ := e.Key.Text()
			t.textRows[s] = e.Value
		case value.KindDecimal:
			d, _ := e.Key.Decimal()
			iv, ok := d.Int64()
			if !ok {
				return nil, fmt.Errorf("table: entry %d has a non-integral decimal key", i)
			}
			if i == 0 {
				t.keyKind = value.KindDecimal
			} else if t.keyKind != value.KindDecimal {
				return nil, fmt.Errorf("table: entry %d mixes text and integer keys", i)
			}
			t.intRows[iv] = e.Value
		default:
			return nil, fmt.Errorf("table: entry %d has an absent key", i)
		}
	}
	if len(entries) == 0 {
		t.keyKind = value.KindText
	}
	return t, nil
}

// Lookup implements Table.
func (t *ExactMatchTable) Lookup(name string, key value.Value) (value.Value, error) {
	switch t.keyKind {
	case value.KindText:
		s, ok := key.Text()
		if !ok {
			return value.Nil, &evalerrors.TypeMismatchError{Node: name, Expected: "text", Got: key.Kind().String()}
		}
		if v, ok := t.textRows[s]; ok {
			return v, nil
		}
		if t.def != nil {
			return *t.def, nil
		}
		return value.Nil, &evalerrors.LookupMissError{Table: name, Key: s}
	case value.KindDecimal:
		d, ok := key.Decimal()
		if !ok {
			return value.Nil, &evalerrors.TypeMismatchError{Node: name, Expected: "decimal", Got: key.Kind().String()}
		}
		iv, ok := d.Int64()
		if !ok {
			return value.Nil, &evalerrors.DomainError{Node: name, Message: "exact-match key must be integral"}
		}
		if v, ok := t.intRows[iv]; ok {
			return v, nil
		}
		if t.def != nil {
			return *t.def, nil
		}
		return value.Nil, &evalerrors.LookupMissError{Table: name, Key: d.String()}
	default:
		return value.Nil, &evalerrors.InternalError{Message: fmt.Sprintf("exact-match table %q has no rows and no declared key kind", name)}
	}
}
