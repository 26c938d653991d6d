package postgres

import (
	"fmt"

	"github.com/tollgate-lab/tollgate/internal/core/storage"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanGroupRow scans one (group_key, value) row.
// Value is NUMERIC for sums and BIGINT for counts; decimal.Decimal scans both.
func scanGroupRow(row scanner) (storage.GroupRow, error) {
	var gr storage.GroupRow
	if err := row.Scan(&gr.Key, &gr.Value); err != nil {
		return storage.GroupRow{}, fmt.Errorf("failed to scan group row: %w", err)
	}
	return gr, nil
}
