package postgres

import (
	"fmt"
	"strings"

	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
)

// SQL queries for usage storage operations

const (
	// querySaveUsage appends a usage. There is no idempotency key:
	// a redelivered message produces a second row.
	// RETURNING retrieves the BIGSERIAL id assigned by the database.
	querySaveUsage = `
		INSERT INTO usages (
			occurred_at, plaza, city, state, amount_paid, vehicle_type
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	queryCountUsages = `SELECT COUNT(*) FROM usages`
)

// Grouping and aggregate expressions are whitelisted; nothing from the
// caller is interpolated into SQL text except through placeholders.
var (
	dimensionExpr = map[storage.Dimension]string{
		storage.ByHour:        `CAST(EXTRACT(HOUR FROM occurred_at AT TIME ZONE 'UTC') AS INTEGER)`,
		storage.ByPlaza:       `plaza`,
		storage.ByVehicleType: `vehicle_type`,
	}

	aggregateExpr = map[aggregation.Operator]string{
		aggregation.OpSum:   `COALESCE(SUM(amount_paid), 0)`,
		aggregation.OpCount: `COUNT(*)`,
	}
)

// buildAggregateQuery composes the grouped read for q.
// The occurred_at range is half-open, which keeps the month boundary exact
// regardless of the column's timestamp precision.
func buildAggregateQuery(q storage.Query) (string, []interface{}, error) {
	dim, ok := dimensionExpr[q.GroupBy]
	if !ok {
		return "", nil, fmt.Errorf("unsupported group by %q", q.GroupBy)
	}
	agg, ok := aggregateExpr[q.Aggregate]
	if !ok {
		return "", nil, fmt.Errorf("unsupported aggregate %q", q.Aggregate)
	}

	var (
		where []string
		args  []interface{}
	)
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if q.Filter.City != nil {
		addCond("city = $%d", *q.Filter.City)
	}
	if q.Filter.Plaza != nil {
		addCond("plaza = $%d", *q.Filter.Plaza)
	}
	if !q.Filter.Occurred.From.IsZero() {
		addCond("occurred_at >= $%d", q.Filter.Occurred.From.UTC())
	}
	if !q.Filter.Occurred.To.IsZero() {
		addCond("occurred_at < $%d", q.Filter.Occurred.To.UTC())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT CAST(%s AS TEXT) AS group_key, %s AS value FROM usages", dim, agg)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" GROUP BY 1")

	if q.OrderBy == storage.OrderValueDesc {
		// COLLATE "C" matches the byte-order tie-break used by storage.SortByValueDesc.
		fmt.Fprintf(&b, ` ORDER BY 2 DESC, CAST(%s AS TEXT) COLLATE "C" ASC`, dim)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args, nil
}
