package storage

import (
	"context"
	"fmt"

	v1 "github.com/tollgate-lab/tollgate/internal/api/v1"
	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	"github.com/shopspring/decimal"
)

// Dimension is a column usages can be grouped by.
type Dimension string

const (
	// ByHour groups by the UTC hour-of-day of occurred_at, irrespective of date.
	ByHour        Dimension = "hour"
	ByPlaza       Dimension = "plaza"
	ByVehicleType Dimension = "vehicle_type"
)

// Order controls how grouped rows come back from the store.
type Order string

const (
	OrderNone Order = ""
	// OrderValueDesc sorts by aggregate value descending, ties by key ascending.
	OrderValueDesc Order = "value_desc"
)

// Filter restricts which usages are aggregated. Nil / zero fields match everything.
type Filter struct {
	City     *string
	Plaza    *string
	Occurred aggregation.TimeRange
}

// Query is the grouped read a report issues against the store.
type Query struct {
	Filter    Filter
	GroupBy   Dimension
	Aggregate aggregation.Operator
	OrderBy   Order
	Limit     int // 0 means no limit
}

// Validate rejects queries no adapter can execute.
func (q Query) Validate() error {
	switch q.GroupBy {
	case ByHour, ByPlaza, ByVehicleType:
	default:
		return fmt.Errorf("unsupported group by %q", q.GroupBy)
	}
	if !aggregation.ValidOperator(q.Aggregate) {
		return fmt.Errorf("unsupported aggregate %q", q.Aggregate)
	}
	switch q.OrderBy {
	case OrderNone, OrderValueDesc:
	default:
		return fmt.Errorf("unsupported order %q", q.OrderBy)
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", q.Limit)
	}
	return nil
}

// GroupRow is one aggregated group. Key is the grouping value rendered as text
// (hour values are decimal strings "0".."23").
type GroupRow struct {
	Key   string
	Value decimal.Decimal
}

// UsageStore is the append-only table of usages.
type UsageStore interface {
	// SaveUsage appends the usage and returns the store-assigned id.
	// There is no idempotency key: saving the same usage twice yields two rows.
	SaveUsage(ctx context.Context, usage *v1.Usage) (int64, error)

	// Aggregate runs a grouped read over all stored usages.
	Aggregate(ctx context.Context, q Query) ([]GroupRow, error)
}

// StrPtr is a small helper for building filters.
func StrPtr(s string) *string {
	return &s
}
