package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	v1 "github.com/tollgate-lab/tollgate/internal/api/v1"
	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
)

// Store is an in-memory implementation of storage.UsageStore.
// Useful for testing and development.
type Store struct {
	mu     sync.RWMutex
	usages []v1.Usage
	nextID int64
}

// NewStore creates an empty in-memory usage store.
func NewStore() *Store {
	return &Store{}
}

// SaveUsage appends a copy of usage and assigns the next id.
func (s *Store) SaveUsage(ctx context.Context, usage *v1.Usage) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := *usage
	stored.ID = s.nextID
	stored.OccurredAt = stored.OccurredAt.UTC()
	s.usages = append(s.usages, stored)

	return stored.ID, nil
}

// Aggregate scans every stored usage under a read lock.
func (s *Store) Aggregate(ctx context.Context, q storage.Query) ([]storage.GroupRow, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder, ok := aggregation.NewFolder(q.Aggregate)
	if !ok {
		return nil, fmt.Errorf("unsupported aggregate %q", q.Aggregate)
	}

	s.mu.RLock()
	for i := range s.usages {
		u := &s.usages[i]
		if !matches(q.Filter, u) {
			continue
		}
		folder.Add(groupKey(q.GroupBy, u), u.AmountPaid)
	}
	s.mu.RUnlock()

	groups := folder.Groups()
	rows := make([]storage.GroupRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, storage.GroupRow{Key: g.Key, Value: g.Value})
	}

	if q.OrderBy == storage.OrderValueDesc {
		storage.SortByValueDesc(rows)
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	return rows, nil
}

// CountUsages returns the number of stored rows.
func (s *Store) CountUsages(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.usages)), nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func matches(f storage.Filter, u *v1.Usage) bool {
	if f.City != nil && u.City != *f.City {
		return false
	}
	if f.Plaza != nil && u.Plaza != *f.Plaza {
		return false
	}
	return f.Occurred.Contains(u.OccurredAt)
}

func groupKey(d storage.Dimension, u *v1.Usage) string {
	switch d {
	case storage.ByHour:
		return strconv.Itoa(aggregation.HourOfDay(u.OccurredAt))
	case storage.ByPlaza:
		return u.Plaza
	case storage.ByVehicleType:
		return u.VehicleType
	}
	return ""
}
