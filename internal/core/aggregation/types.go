package aggregation

import "github.com/shopspring/decimal"

// Operator names a reduce function applied to each group of usages.
type Operator string

// Supported aggregation operators.
const (
	OpCount Operator = "count"
	OpSum   Operator = "sum"
)

// Group is the materialized result for one grouping key.
type Group struct {
	Key   string
	Value decimal.Decimal
}
