package analysis

import (
	"math"
	"sort"
	"strconv"

	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
)

// Number is a float64 that encodes NaN and infinities as JSON null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type Summary struct {
	Listings       int    `json:"listings"`
	WithSalary     int    `json:"with_salary"`
	MeanSalary     Number `json:"mean_salary"`
	MedianSalary   Number `json:"median_salary"`
	MeanExperience Number `json:"mean_experience"`
	Regions        int    `json:"regions"`
	Cities         int    `json:"cities"`
	Titles         int    `json:"titles"`
}

// Summarize computes headline numbers. Means over no valid values are NaN.
func Summarize(rows []domain.Listing) Summary {
	s := Summary{Listings: len(rows)}
	var salaries []float64
	var expSum float64
	var expN int
	for _, r := range rows {
		if r.HasSalary() {
			salaries = append(salaries, r.Salary)
		}
		if r.HasExperience() {
			expSum += r.Experience
			expN++
		}
	}
	s.WithSalary = len(salaries)
	s.MeanSalary = Number(mean(salaries))
	s.MedianSalary = Number(median(salaries))
	s.MeanExperience = Number(math.NaN())
	if expN > 0 {
		s.MeanExperience = Number(expSum / float64(expN))
	}
	s.Regions = len(Distinct(rows, ByRegion))
	s.Cities = len(Distinct(rows, ByCity))
	s.Titles = len(Distinct(rows, ByTitle))
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ExperienceSalaryPoints pairs experience with salary for listings that
// have both.
func ExperienceSalaryPoints(rows []domain.Listing) []Point {
	var out []Point
	for _, r := range rows {
		if r.HasExperience() && r.HasSalary() {
			out = append(out, Point{X: r.Experience, Y: r.Salary})
		}
	}
	return out
}
