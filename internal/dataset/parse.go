package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"
)

// columnIndex resolves the configured header names to positions.
type columnIndex struct {
	title, desc, salary, region, city, exper, gender int
}

func resolveColumns(header []string, cols config.Columns) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	find := func(name string) int {
		i, ok := pos[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	idx := columnIndex{
		title:  find(cols.Title),
		desc:   find(cols.Description),
		salary: find(cols.Salary),
		region: find(cols.Region),
		city:   find(cols.City),
		exper:  find(cols.Experience),
		gender: find(cols.Gender),
	}
	if len(missing) > 0 {
		return idx, domainerrors.InvalidInput("dataset is missing columns: "+strings.Join(missing, ", "), nil)
	}
	return idx, nil
}

// Parse reads a CSV with a header row into a Table.
func Parse(r io.Reader, cols config.Columns) (*domain.Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domainerrors.InvalidInput("dataset is empty", nil)
	}
	if err != nil {
		return nil, domainerrors.InvalidInput("read csv header", err)
	}
	idx, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}

	t := &domain.Table{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, domainerrors.InvalidInput(fmt.Sprintf("read csv line %d", line), err)
		}
		if blank(rec) {
			continue
		}
		cell := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return cleanText(rec[i])
		}
		t.Rows = append(t.Rows, domain.Listing{
			Title:       cell(idx.title),
			Description: cell(idx.desc),
			Salary:      ParseNumber(cell(idx.salary)),
			Region:      cell(idx.region),
			City:        cell(idx.city),
			Experience:  ParseNumber(cell(idx.exper)),
			Gender:      cell(idx.gender),
		})
	}
	return t, nil
}

// cleanText folds non-breaking spaces and runs of whitespace into single
// spaces so that "Sales  Specialist" and "Sales Specialist" count together.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseNumber reads the leading number of s, accepting thousands separators,
// Arabic-Indic digits and a trailing unit ("3 Years", "5,000 SAR").
// It returns NaN when s holds no number.
func ParseNumber(s string) float64 {
	var b strings.Builder
	seenDigit, seenDot := false, false
scan:
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			seenDigit = true
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
			seenDigit = true
		case r == ',' || r == '٬' || r == '_':
			if !seenDigit {
				return math.NaN()
			}
		case (r == '.' || r == '٫') && !seenDot:
			b.WriteRune('.')
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
			b.WriteRune(r)
		default:
			if seenDigit {
				break scan
			}
			if r == ' ' {
				continue
			}
			return math.NaN()
		}
	}
	if !seenDigit {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
