package aggregation

import (
	"github.com/shopspring/decimal"
)

// Aggregator defines the reduce semantics of an aggregation operator.
// To add a new operator: implement this interface and register it in Operators.
type Aggregator interface {
	// Initial returns the aggregate value after the very first usage for a key.
	// count → 1; sum → the incoming value itself.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds an incoming value into an existing aggregate.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Operators is the registry of all supported aggregation operators.
var Operators = map[Operator]Aggregator{
	OpCount: countAgg{},
	OpSum:   sumAgg{},
}

// ValidOperator reports whether op is a registered aggregation operator.
func ValidOperator(op Operator) bool {
	_, ok := Operators[op]
	return ok
}

// Folder accumulates values per key for one operator.
// It is not safe for concurrent use.
type Folder struct {
	agg    Aggregator
	groups map[string]Group
}

// NewFolder returns a Folder for op, or false if op is unknown.
func NewFolder(op Operator) (*Folder, bool) {
	agg, ok := Operators[op]
	if !ok {
		return nil, false
	}
	return &Folder{agg: agg, groups: make(map[string]Group)}, true
}

// Add folds one value into the group for key.
func (f *Folder) Add(key string, value decimal.Decimal) {
	g, exists := f.groups[key]
	if !exists {
		f.groups[key] = Group{Key: key, Value: f.agg.Initial(value)}
		return
	}
	g.Value = f.agg.Apply(g.Value, value)
	f.groups[key] = g
}

// Groups returns the accumulated groups in no particular order.
func (f *Folder) Groups() []Group {
	out := make([]Group, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, g)
	}
	return out
}

// countAgg increments by 1 per usage. The incoming value is ignored.
type countAgg struct{}

func (countAgg) Initial(_ decimal.Decimal) decimal.Decimal    { return decimal.NewFromInt(1) }
func (countAgg) Apply(cur, _ decimal.Decimal) decimal.Decimal { return cur.Add(decimal.NewFromInt(1)) }

// sumAgg accumulates the sum of incoming values.
type sumAgg struct{}

func (sumAgg) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }
