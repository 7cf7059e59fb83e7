package domain

import (
	"math"
	"time"
)

// Listing is one row of the job-market dataset. Numeric fields hold NaN
// when the source cell was empty or unparseable.
type Listing struct {
	Title       string  `json:"job_title"`
	Description string  `json:"job_desc"`
	Salary      float64 `json:"salary"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Experience  float64 `json:"exper"`
	Gender      string  `json:"gender"`
}

func (l Listing) HasSalary() bool     { return !math.IsNaN(l.Salary) }
func (l Listing) HasExperience() bool { return !math.IsNaN(l.Experience) }

// Table is the loaded dataset. It is never mutated after load; filters
// return new tables sharing the same Listing values.
type Table struct {
	Rows     []Listing
	Source   string
	LoadedAt time.Time
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// With returns a table with the same provenance and a different row set.
func (t *Table) With(rows []Listing) *Table {
	return &Table{Rows: rows, Source: t.Source, LoadedAt: t.LoadedAt}
}
