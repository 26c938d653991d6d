package storage

import "sort"

// SortByValueDesc orders rows by Value descending, ties by Key ascending.
// Adapters that cannot sort natively use this so every store ranks identically.
func SortByValueDesc(rows []GroupRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Value.Cmp(rows[j].Value); c != 0 {
			return c > 0
		}
		return rows[i].Key < rows[j].Key
	})
}
