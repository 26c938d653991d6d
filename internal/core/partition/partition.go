package partition

import "hash/fnv"

// For returns the partition index in [0, count) for key.
// The same key always maps to the same partition (FNV-32a).
func For(key string, count int) int {
	if count <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(count))
}
