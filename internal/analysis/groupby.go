package analysis

import (
	"math"
	"sort"

	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
)

type GroupMean struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Column selectors for GroupByMean.
var (
	ByRegion = func(l domain.Listing) string { return l.Region }
	ByCity   = func(l domain.Listing) string { return l.City }
	ByTitle  = func(l domain.Listing) string { return l.Title }
	ByGender = func(l domain.Listing) string { return l.Gender }

	ByDescription = func(l domain.Listing) string { return l.Description }

	Salary     = func(l domain.Listing) float64 { return l.Salary }
	Experience = func(l domain.Listing) float64 { return l.Experience }
)

// GroupByMean averages measure per key. NaN measures and empty keys are
// skipped; the result is ordered by mean descending, then key.
func GroupByMean(rows []domain.Listing, key func(domain.Listing) string, measure func(domain.Listing) float64) []GroupMean {
	type acc struct {
		sum float64
		n   int
	}
	m := make(map[string]*acc)
	for _, r := range rows {
		k := key(r)
		v := measure(r)
		if k == "" || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		a := m[k]
		if a == nil {
			a = &acc{}
			m[k] = a
		}
		a.sum += v
		a.n++
	}

	out := make([]GroupMean, 0, len(m))
	for k, a := range m {
		out = append(out, GroupMean{Key: k, Mean: a.sum / float64(a.n), Count: a.n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean == out[j].Mean {
			return out[i].Key < out[j].Key
		}
		return out[i].Mean > out[j].Mean
	})
	return out
}

// Column extracts a categorical column.
func Column(rows []domain.Listing, key func(domain.Listing) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = key(r)
	}
	return out
}
