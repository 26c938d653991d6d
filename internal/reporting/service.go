// Package reporting computes grouped statistics over recorded usages.
// Reports are read-only and computed on every call; nothing is cached.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
	"github.com/tollgate-lab/tollgate/internal/telemetry"
)

// QueryError reports a store failure while computing a report.
// No partial result accompanies it.
type QueryError struct {
	Report string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("report %s: %v", e.Report, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Service implements the reporting layer. Safe for concurrent use.
type Service struct {
	store        storage.UsageStore
	hook         telemetry.Hook
	queryTimeout time.Duration
}

// NewService creates a reporting service over store. A zero queryTimeout
// leaves report queries bounded only by the caller's context.
func NewService(store storage.UsageStore, hook telemetry.Hook, queryTimeout time.Duration) *Service {
	if store == nil {
		panic("reporting: store must not be nil")
	}
	if hook == nil {
		hook = telemetry.Nop
	}
	return &Service{
		store:        store,
		hook:         hook,
		queryTimeout: queryTimeout,
	}
}

// RevenuePerHour sums revenue of usages in city by UTC hour-of-day.
// The city match is exact and case-sensitive, so a city no usage carries
// (including "") yields an empty result. Rows are ordered by hour.
func (s *Service) RevenuePerHour(ctx context.Context, city string) (result []HourlyRevenue, err error) {
	ctx, span := s.hook.Start(ctx, "reporting."+ReportRevenuePerHour)
	defer endSpan(span, &err)
	span.SetAttr("city", city)

	rows, err := s.aggregate(ctx, ReportRevenuePerHour, storage.Query{
		Filter:    storage.Filter{City: &city},
		GroupBy:   storage.ByHour,
		Aggregate: aggregation.OpSum,
	})
	if err != nil {
		return nil, err
	}

	out := make([]HourlyRevenue, 0, len(rows))
	for _, row := range rows {
		hour, convErr := strconv.Atoi(row.Key)
		if convErr != nil {
			return nil, &QueryError{Report: ReportRevenuePerHour, Err: fmt.Errorf("invalid hour key %q: %w", row.Key, convErr)}
		}
		out = append(out, HourlyRevenue{Hour: hour, TotalRevenue: row.Value})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Hour < out[j].Hour
	})

	span.SetAttr("rows", len(out))
	return out, nil
}

// TopPlazasByRevenue ranks plazas by revenue within the calendar month of
// month, from its first instant through its last instant inclusive.
// Ties are broken by plaza name. limit <= 0 yields an empty result.
func (s *Service) TopPlazasByRevenue(ctx context.Context, limit int, month time.Time) (result []PlazaRevenue, err error) {
	ctx, span := s.hook.Start(ctx, "reporting."+ReportTopPlazasByRevenue)
	defer endSpan(span, &err)

	window := aggregation.MonthRange(month)
	span.SetAttr("limit", limit)
	span.SetAttr("month", window.From.Format(aggregation.MonthLayout))

	if limit <= 0 {
		return []PlazaRevenue{}, nil
	}

	rows, err := s.aggregate(ctx, ReportTopPlazasByRevenue, storage.Query{
		Filter:    storage.Filter{Occurred: window},
		GroupBy:   storage.ByPlaza,
		Aggregate: aggregation.OpSum,
		OrderBy:   storage.OrderValueDesc,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]PlazaRevenue, 0, len(rows))
	for _, row := range rows {
		out = append(out, PlazaRevenue{Plaza: row.Key, TotalRevenue: row.Value})
	}

	span.SetAttr("rows", len(out))
	return out, nil
}

// VehicleTypeDistribution counts usages at plaza per vehicle type, most
// frequent first, ties by vehicle type.
func (s *Service) VehicleTypeDistribution(ctx context.Context, plaza string) (result []VehicleTypeCount, err error) {
	ctx, span := s.hook.Start(ctx, "reporting."+ReportVehicleTypeDistribution)
	defer endSpan(span, &err)
	span.SetAttr("plaza", plaza)

	rows, err := s.aggregate(ctx, ReportVehicleTypeDistribution, storage.Query{
		Filter:    storage.Filter{Plaza: &plaza},
		GroupBy:   storage.ByVehicleType,
		Aggregate: aggregation.OpCount,
		OrderBy:   storage.OrderValueDesc,
	})
	if err != nil {
		return nil, err
	}

	out := make([]VehicleTypeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, VehicleTypeCount{VehicleType: row.Key, Count: row.Value.IntPart()})
	}

	span.SetAttr("rows", len(out))
	return out, nil
}

// aggregate runs q under the configured query timeout and wraps store failures.
func (s *Service) aggregate(ctx context.Context, report string, q storage.Query) ([]storage.GroupRow, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	rows, err := s.store.Aggregate(ctx, q)
	if err != nil {
		return nil, &QueryError{Report: report, Err: err}
	}
	return rows, nil
}

func endSpan(span telemetry.Span, err *error) {
	if *err != nil {
		span.Fail(*err)
	}
	span.End()
}
