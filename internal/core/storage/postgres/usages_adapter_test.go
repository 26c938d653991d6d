package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/tollgate-lab/tollgate/internal/api/v1"
	"github.com/tollgate-lab/tollgate/internal/core/aggregation"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
)

func TestAdapter_SaveUsage(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	occurredAt := time.Date(2024, 5, 1, 7, 0, 0, 0, sp)

	tests := []struct {
		name       string
		mockResult func(mock sqlmock.Sqlmock, usage *v1.Usage)
		assertions func(t *testing.T, usage *v1.Usage, id int64, err error)
	}{
		{
			name: "success returns id",
			mockResult: func(mock sqlmock.Sqlmock, usage *v1.Usage) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveUsage)).
					WithArgs(
						occurredAt.UTC(),
						usage.Plaza,
						usage.City,
						usage.State,
						usage.AmountPaid,
						usage.VehicleType,
					).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
			},
			assertions: func(t *testing.T, usage *v1.Usage, id int64, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(42), id)
				require.Zero(t, usage.ID)
			},
		},
		{
			name: "driver error is wrapped",
			mockResult: func(mock sqlmock.Sqlmock, usage *v1.Usage) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveUsage)).
					WillReturnError(sql.ErrConnDone)
			},
			assertions: func(t *testing.T, usage *v1.Usage, id int64, err error) {
				require.ErrorIs(t, err, sql.ErrConnDone)
				require.ErrorContains(t, err, "failed to save usage")
				require.Zero(t, id)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			usage := &v1.Usage{
				OccurredAt:  occurredAt,
				Plaza:       "Imigrantes",
				City:        "São Paulo",
				State:       "SP",
				AmountPaid:  decimal.RequireFromString("8.50"),
				VehicleType: "Carro",
			}
			tc.mockResult(mock, usage)

			id, err := adapter.SaveUsage(context.Background(), usage)
			tc.assertions(t, usage, id, err)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_AggregateRevenuePerHour(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	q := storage.Query{
		Filter:    storage.Filter{City: storage.StrPtr("São Paulo")},
		GroupBy:   storage.ByHour,
		Aggregate: aggregation.OpSum,
	}
	query, _, err := buildAggregateQuery(q)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("São Paulo").
		WillReturnRows(sqlmock.NewRows(groupRowColumns()).
			AddRow("10", "12.00").
			AddRow("18", "3.5"),
		).RowsWillBeClosed()

	rows, err := adapter.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "10", rows[0].Key)
	require.True(t, decimal.NewFromInt(12).Equal(rows[0].Value))
	require.Equal(t, "18", rows[1].Key)
	require.True(t, decimal.RequireFromString("3.5").Equal(rows[1].Value))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_AggregateCountScansIntegers(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	q := storage.Query{
		Filter:    storage.Filter{Plaza: storage.StrPtr("P1")},
		GroupBy:   storage.ByVehicleType,
		Aggregate: aggregation.OpCount,
	}
	query, _, err := buildAggregateQuery(q)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("P1").
		WillReturnRows(sqlmock.NewRows(groupRowColumns()).
			AddRow("Carro", int64(2)).
			AddRow("Moto", int64(1)),
		)

	rows, err := adapter.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.True(t, decimal.NewFromInt(2).Equal(rows[0].Value))
	require.True(t, decimal.NewFromInt(1).Equal(rows[1].Value))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_AggregateEmptyResultIsNonNil(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	q := storage.Query{
		Filter:    storage.Filter{City: storage.StrPtr("Nowhere")},
		GroupBy:   storage.ByHour,
		Aggregate: aggregation.OpSum,
	}
	query, _, err := buildAggregateQuery(q)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("Nowhere").
		WillReturnRows(sqlmock.NewRows(groupRowColumns()))

	rows, err := adapter.Aggregate(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestAdapter_AggregateFailuresReturnNoPartialRows(t *testing.T) {
	q := storage.Query{GroupBy: storage.ByPlaza, Aggregate: aggregation.OpSum}
	query, _, err := buildAggregateQuery(q)
	require.NoError(t, err)

	t.Run("query error", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnError(context.DeadlineExceeded)

		rows, err := adapter.Aggregate(context.Background(), q)
		require.Nil(t, rows)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.ErrorContains(t, err, "grouped by plaza")
	})

	t.Run("row error mid-iteration", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		rowErr := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WillReturnRows(sqlmock.NewRows(groupRowColumns()).
				AddRow("A", "60").
				AddRow("B", "30").
				RowError(1, rowErr),
			)

		rows, err := adapter.Aggregate(context.Background(), q)
		require.Nil(t, rows)
		require.ErrorIs(t, err, rowErr)
	})

	t.Run("invalid query never reaches the database", func(t *testing.T) {
		adapter, mock, db := newMockAdapter(t)
		defer db.Close()

		_, err := adapter.Aggregate(context.Background(), storage.Query{GroupBy: "state", Aggregate: aggregation.OpSum})
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdapter_CountUsages(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryCountUsages)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	n, err := adapter.CountUsages(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CloseReturnsDBCloseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dbCloseErr := errors.New("db close failed")

	mock.ExpectPrepare(regexp.QuoteMeta(querySaveUsage)).WillBeClosed()
	stmtSave, err := db.Prepare(querySaveUsage)
	require.NoError(t, err)

	mock.ExpectPrepare(regexp.QuoteMeta(queryCountUsages)).WillBeClosed()
	stmtCount, err := db.Prepare(queryCountUsages)
	require.NoError(t, err)

	mock.ExpectClose().WillReturnError(dbCloseErr)

	adapter := &Adapter{
		db:              db,
		stmtSaveUsage:   stmtSave,
		stmtCountUsages: stmtCount,
	}

	err = adapter.Close()
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to close database")
	require.ErrorIs(t, err, dbCloseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:              db,
		stmtSaveUsage:   mustPrepareStmt(t, db, mock, querySaveUsage),
		stmtCountUsages: mustPrepareStmt(t, db, mock, queryCountUsages),
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}

func groupRowColumns() []string {
	return []string{"group_key", "value"}
}
