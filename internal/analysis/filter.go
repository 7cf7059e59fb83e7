package analysis

import (
	"sort"
	"strings"

	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
)

func normKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// FilterBy keeps rows whose key is one of selected. An empty selection
// keeps every row.
func FilterBy(t *domain.Table, key func(domain.Listing) string, selected []string) *domain.Table {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		if k := normKey(s); k != "" {
			want[k] = true
		}
	}
	if len(want) == 0 {
		return t
	}
	rows := make([]domain.Listing, 0, len(t.Rows))
	for _, r := range t.Rows {
		if want[normKey(key(r))] {
			rows = append(rows, r)
		}
	}
	return t.With(rows)
}

// Canonical maps selected values onto the matching choices, using the same
// matching as FilterBy. Selections with no matching choice are dropped.
func Canonical(choices, selected []string) []string {
	byKey := make(map[string]string, len(choices))
	for _, c := range choices {
		byKey[normKey(c)] = c
	}
	var out []string
	seen := map[string]bool{}
	for _, s := range selected {
		if c, ok := byKey[normKey(s)]; ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func FilterRegions(t *domain.Table, regions []string) *domain.Table {
	return FilterBy(t, ByRegion, regions)
}

func FilterCities(t *domain.Table, cities []string) *domain.Table {
	return FilterBy(t, ByCity, cities)
}

// Distinct returns the sorted non-empty values of a column.
func Distinct(rows []domain.Listing, key func(domain.Listing) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		v := key(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func Regions(t *domain.Table) []string { return Distinct(t.Rows, ByRegion) }
func Cities(t *domain.Table) []string  { return Distinct(t.Rows, ByCity) }
