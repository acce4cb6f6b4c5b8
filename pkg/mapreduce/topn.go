package mapreduce

import (
	"fmt"
	"sort"
)

type kv struct {
	Key   string
	Value int
}

// ranked orders the positive entries by count descending and then by key,
// keeping at most n (all when n < 0).
func ranked(counts map[string]int, n int) []kv {
	ss := make([]kv, 0, len(counts))
	for k, v := range counts {
		if v > 0 {
			ss = append(ss, kv{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if n >= 0 && len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// TopN returns the n largest entries formatted as "key:count", ordered by
// count descending and then by key. Zero counts are skipped.
func TopN(counts map[string]int, n int) []string {
	ss := ranked(counts, n)
	out := make([]string, len(ss))
	for i, e := range ss {
		out[i] = fmt.Sprintf("%s:%d", e.Key, e.Value)
	}
	return out
}

// TopKeys is TopN without the counts.
func TopKeys(counts map[string]int, n int) []string {
	ss := ranked(counts, n)
	out := make([]string, len(ss))
	for i, e := range ss {
		out[i] = e.Key
	}
	return out
}
