package analysis

import "sort"

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Share is a CategoryCount with its percentage of the selection total.
type Share struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ValueCounts tallies values, most frequent first; ties sort by value.
// Empty strings are ignored.
func ValueCounts(values []string) []CategoryCount {
	m := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		m[v]++
	}
	out := make([]CategoryCount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// TopN keeps the first n counts and expresses each as a percentage of the
// kept total. n <= 0 keeps everything.
func TopN(counts []CategoryCount, n int) []Share {
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]Share, 0, len(counts))
	for _, c := range counts {
		s := Share{Value: c.Value, Count: c.Count}
		if total > 0 {
			s.Percent = float64(c.Count) / float64(total) * 100
		}
		out = append(out, s)
	}
	return out
}
