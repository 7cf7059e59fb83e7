package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
	"github.com/ReyadGH/use-case-4-deployment/internal/charts"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

const bannerText = `
 ╦╔═╗╔╗   ╔╦╗╔═╗╦═╗╦╔═╔═╗╔╦╗
 ║║ ║╠╩╗  ║║║╠═╣╠╦╝╠╩╗║╣  ║
╚╝╚═╝╚═╝  ╩ ╩╩ ╩╩╚═╩ ╩╚═╝ ╩  saudi job listings
`

func colorizeText(text string) string {
	random := rand.New(rand.NewSource(time.Now().UnixNano()))
	start := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))
	end := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))

	chars := strings.Split(text, "")
	half := float32(len(chars)/2 + 1)
	var b strings.Builder
	for i, c := range chars {
		b.WriteString(start.Fade(0, half, float32(i%int(half)), end).Sprint(c))
	}
	return b.String()
}

func printBanner(silence bool) {
	if !silence {
		fmt.Println(colorizeText(bannerText))
	}
}

// colorSalary colours an amount against the overall mean of the selection.
func colorSalary(v, mean float64, currency string) string {
	s := charts.Money(v, currency)
	switch {
	case math.IsNaN(v) || math.IsNaN(mean) || mean <= 0:
		return s
	case v >= mean*1.25:
		return pterm.Green(s)
	case v >= mean:
		return pterm.LightGreen(s)
	case v >= mean*0.75:
		return pterm.Yellow(s)
	default:
		return pterm.Red(s)
	}
}

func titleRows(shares []analysis.Share) pterm.TableData {
	data := pterm.TableData{{"#", "Job title", "Listings", "Share"}}
	for i, s := range shares {
		data = append(data, []string{
			fmt.Sprint(i + 1),
			analysis.Visual(s.Value),
			humanize.Comma(int64(s.Count)),
			charts.Percent(s.Percent),
		})
	}
	return data
}

func salaryRows(label string, groups []analysis.GroupMean, mean float64, currency string) pterm.TableData {
	data := pterm.TableData{{label, "Mean salary", "Listings"}}
	for _, g := range groups {
		data = append(data, []string{
			analysis.Visual(g.Key),
			colorSalary(g.Mean, mean, currency),
			humanize.Comma(int64(g.Count)),
		})
	}
	return data
}

func genderRows(counts []analysis.CategoryCount) pterm.TableData {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	data := pterm.TableData{{"Gender", "Listings", "Share"}}
	for _, c := range counts {
		data = append(data, []string{
			c.Value,
			humanize.Comma(int64(c.Count)),
			charts.Percent(100 * float64(c.Count) / float64(total)),
		})
	}
	return data
}

func wordRows(words []analysis.WordCount) pterm.TableData {
	data := pterm.TableData{{"Word", "Count"}}
	for _, w := range words {
		data = append(data, []string{analysis.Visual(w.Word), humanize.Comma(int64(w.Count))})
	}
	return data
}

func skillRows(stats []analysis.SkillStat, currency string) pterm.TableData {
	data := pterm.TableData{{"Skill", "Listings", "Mean salary"}}
	for _, s := range stats {
		data = append(data, []string{
			s.Skill,
			humanize.Comma(int64(s.Listings)),
			charts.Money(float64(s.MeanSalary), currency),
		})
	}
	return data
}

func printReport(w io.Writer, r analysis.Report, currency string) error {
	s := r.Summary
	fmt.Fprintf(w, "\n%s listings, %s with a salary, mean %s, median %s\n",
		humanize.Comma(int64(s.Listings)),
		humanize.Comma(int64(s.WithSalary)),
		charts.Money(float64(s.MeanSalary), currency),
		charts.Money(float64(s.MedianSalary), currency),
	)

	mean := float64(s.MeanSalary)
	tables := []struct {
		title string
		data  pterm.TableData
	}{
		{"Top job titles", titleRows(r.TopTitles)},
		{"Mean salary by region", salaryRows("Region", r.SalaryByRegion, mean, currency)},
		{"Mean salary by city", salaryRows("City", r.SalaryByCity, mean, currency)},
		{"Gender", genderRows(r.Gender)},
		{"Skills", skillRows(r.Skills, currency)},
		{"Top description words", wordRows(r.Words)},
	}
	for _, t := range tables {
		if len(t.data) < 2 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, pterm.Bold.Sprint(t.title))
		if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(t.data).Render(); err != nil {
			return fmt.Errorf("render %s: %w", strings.ToLower(t.title), err)
		}
	}
	return nil
}
