package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/tollgate-lab/tollgate/internal/api/v1"
	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
	"github.com/tollgate-lab/tollgate/internal/core/storage/memory"
	storagemocks "github.com/tollgate-lab/tollgate/internal/mocks/storage"
	"github.com/tollgate-lab/tollgate/internal/telemetry"
)

func usage(at time.Time, plaza, city, vehicle, amount string) *v1.Usage {
	return &v1.Usage{
		OccurredAt:  at,
		Plaza:       plaza,
		City:        city,
		State:       "SP",
		AmountPaid:  decimal.RequireFromString(amount),
		VehicleType: vehicle,
	}
}

func seed(t *testing.T, usages ...*v1.Usage) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for _, u := range usages {
		_, err := store.SaveUsage(context.Background(), u)
		require.NoError(t, err)
	}
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRevenuePerHour(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	store := seed(t,
		usage(day.Add(10*time.Hour), "P1", "X", "Carro", "5.00"),
		usage(day.Add(10*time.Hour+30*time.Minute), "P2", "X", "Moto", "7.00"),
		// same hour on another day folds into the same bucket
		usage(day.AddDate(0, 0, 3).Add(14*time.Hour), "P1", "X", "Carro", "2.25"),
		usage(day.Add(10*time.Hour), "P1", "Y", "Carro", "100"),
	)
	svc := NewService(store, nil, 0)

	rows, err := svc.RevenuePerHour(context.Background(), "X")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, 10, rows[0].Hour)
	require.True(t, rows[0].TotalRevenue.Equal(dec("12")), "got %s", rows[0].TotalRevenue)
	require.Equal(t, 14, rows[1].Hour)
	require.True(t, rows[1].TotalRevenue.Equal(dec("2.25")))
}

func TestRevenuePerHour_UsesUTCHour(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	store := seed(t, usage(time.Date(2024, 5, 10, 22, 0, 0, 0, brt), "P1", "X", "Carro", "1"))

	rows, err := NewService(store, nil, 0).RevenuePerHour(context.Background(), "X")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].Hour)
}

func TestRevenuePerHour_CityIsExactMatch(t *testing.T) {
	store := seed(t, usage(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), "P1", "São Paulo", "Carro", "1"))
	svc := NewService(store, nil, 0)

	rows, err := svc.RevenuePerHour(context.Background(), "são paulo")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestRevenuePerHour_BlankCityIsEmpty(t *testing.T) {
	store := seed(t, usage(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), "P1", "X", "Carro", "1"))
	svc := NewService(store, nil, 0)

	for _, city := range []string{"", " "} {
		rows, err := svc.RevenuePerHour(context.Background(), city)
		require.NoError(t, err)
		require.NotNil(t, rows)
		require.Empty(t, rows)
	}
}

func TestTopPlazasByRevenue(t *testing.T) {
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := seed(t,
		usage(may.Add(time.Hour), "A", "X", "Carro", "60"),
		usage(may.Add(2*time.Hour), "B", "X", "Carro", "20"),
		usage(may.AddDate(0, 0, 9), "B", "X", "Moto", "10"),
		usage(may.AddDate(0, 0, 12), "C", "X", "Moto", "5"),
		// April does not count
		usage(may.Add(-time.Nanosecond), "C", "X", "Carro", "500"),
	)
	svc := NewService(store, nil, 0)

	t.Run("ranked by total", func(t *testing.T) {
		rows, err := svc.TopPlazasByRevenue(context.Background(), 2, time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, "A", rows[0].Plaza)
		require.True(t, rows[0].TotalRevenue.Equal(dec("60")))
		require.Equal(t, "B", rows[1].Plaza)
		require.True(t, rows[1].TotalRevenue.Equal(dec("30")))
	})

	t.Run("limit larger than plazas", func(t *testing.T) {
		rows, err := svc.TopPlazasByRevenue(context.Background(), 10, may)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, "C", rows[2].Plaza)
	})

	t.Run("non positive limit queries nothing", func(t *testing.T) {
		mockStore := storagemocks.NewUsageStore(t)
		for _, limit := range []int{0, -3} {
			rows, err := NewService(mockStore, nil, 0).TopPlazasByRevenue(context.Background(), limit, may)
			require.NoError(t, err)
			require.NotNil(t, rows)
			require.Empty(t, rows)
		}
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		first, err := svc.TopPlazasByRevenue(context.Background(), 3, may)
		require.NoError(t, err)
		second, err := svc.TopPlazasByRevenue(context.Background(), 3, may)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func TestTopPlazasByRevenue_MonthBoundaries(t *testing.T) {
	window := aggregation.MonthRange(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	store := seed(t,
		usage(window.From, "First", "X", "Carro", "1"),
		usage(window.LastInstant(), "Last", "X", "Carro", "1"),
		usage(window.To, "NextMonth", "X", "Carro", "1"),
	)

	rows, err := NewService(store, nil, 0).TopPlazasByRevenue(context.Background(), 10, window.From)
	require.NoError(t, err)

	plazas := make([]string, 0, len(rows))
	for _, r := range rows {
		plazas = append(plazas, r.Plaza)
	}
	require.ElementsMatch(t, []string{"First", "Last"}, plazas)
}

func TestTopPlazasByRevenue_TiesByPlazaName(t *testing.T) {
	at := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	store := seed(t,
		usage(at, "Beta", "X", "Carro", "10"),
		usage(at, "Alpha", "X", "Carro", "10"),
		usage(at, "Gamma", "X", "Carro", "10"),
	)

	rows, err := NewService(store, nil, 0).TopPlazasByRevenue(context.Background(), 2, at)
	require.NoError(t, err)
	require.Equal(t, []string{"Alpha", "Beta"}, []string{rows[0].Plaza, rows[1].Plaza})
}

func TestTopPlazasByRevenue_IssuesRankedQuery(t *testing.T) {
	may := aggregation.MonthRange(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	mockStore := storagemocks.NewUsageStore(t)
	mockStore.EXPECT().
		Aggregate(mock.Anything, storage.Query{
			Filter:    storage.Filter{Occurred: may},
			GroupBy:   storage.ByPlaza,
			Aggregate: aggregation.OpSum,
			OrderBy:   storage.OrderValueDesc,
			Limit:     5,
		}).
		Return([]storage.GroupRow{{Key: "A", Value: dec("9")}}, nil).
		Once()

	rows, err := NewService(mockStore, nil, 0).TopPlazasByRevenue(context.Background(), 5, time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, []PlazaRevenue{{Plaza: "A", TotalRevenue: dec("9")}}, rows)
}

func TestVehicleTypeDistribution(t *testing.T) {
	at := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	store := seed(t,
		usage(at, "P1", "X", "Carro", "1"),
		usage(at, "P1", "X", "Moto", "1"),
		usage(at, "P1", "X", "Carro", "1"),
		usage(at, "P2", "X", "Caminhão", "1"),
	)
	svc := NewService(store, nil, 0)

	rows, err := svc.VehicleTypeDistribution(context.Background(), "P1")
	require.NoError(t, err)
	require.Equal(t, []VehicleTypeCount{
		{VehicleType: "Carro", Count: 2},
		{VehicleType: "Moto", Count: 1},
	}, rows)

	rows, err = svc.VehicleTypeDistribution(context.Background(), "Unknown")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)

	rows, err = svc.VehicleTypeDistribution(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestReports_StoreErrorYieldsQueryError(t *testing.T) {
	storeErr := errors.New("connection reset")

	tests := []struct {
		name   string
		report string
		run    func(svc *Service) (interface{}, error)
	}{
		{
			name:   "revenue per hour",
			report: ReportRevenuePerHour,
			run: func(svc *Service) (interface{}, error) {
				return svc.RevenuePerHour(context.Background(), "X")
			},
		},
		{
			name:   "top plazas",
			report: ReportTopPlazasByRevenue,
			run: func(svc *Service) (interface{}, error) {
				return svc.TopPlazasByRevenue(context.Background(), 3, time.Now())
			},
		},
		{
			name:   "vehicle types",
			report: ReportVehicleTypeDistribution,
			run: func(svc *Service) (interface{}, error) {
				return svc.VehicleTypeDistribution(context.Background(), "P1")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockStore := storagemocks.NewUsageStore(t)
			mockStore.EXPECT().
				Aggregate(mock.Anything, mock.Anything).
				Return(nil, storeErr).
				Once()

			rec := &telemetry.Recorder{}
			result, err := tc.run(NewService(mockStore, rec, 0))

			require.Nil(t, result)
			var qerr *QueryError
			require.ErrorAs(t, err, &qerr)
			require.Equal(t, tc.report, qerr.Report)
			require.ErrorIs(t, err, storeErr)

			spans := rec.Spans()
			require.Len(t, spans, 1)
			require.Equal(t, "reporting."+tc.report, spans[0].Operation)
			require.ErrorIs(t, spans[0].Err, storeErr)
		})
	}
}

func TestReports_QueryTimeoutBoundsStoreCall(t *testing.T) {
	mockStore := storagemocks.NewUsageStore(t)
	mockStore.EXPECT().
		Aggregate(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ storage.Query) ([]storage.GroupRow, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			return []storage.GroupRow{}, nil
		}).
		Once()

	rows, err := NewService(mockStore, nil, time.Minute).VehicleTypeDistribution(context.Background(), "P1")
	require.NoError(t, err)
	require.Empty(t, rows)
}
