package analysis

import "github.com/ReyadGH/use-case-4-deployment/internal/domain"

type ReportOptions struct {
	TopN   int
	Words  int
	Tagger SkillTagger
}

// Report bundles the aggregates shown on the dashboard for one selection.
type Report struct {
	Summary        Summary         `json:"summary"`
	TopTitles      []Share         `json:"top_titles"`
	SalaryByRegion []GroupMean     `json:"salary_by_region"`
	SalaryByCity   []GroupMean     `json:"salary_by_city"`
	Gender         []CategoryCount `json:"gender"`
	Skills         []SkillStat     `json:"skills"`
	Words          []WordCount     `json:"words"`
}

func NewReport(rows []domain.Listing, opts ReportOptions) Report {
	byCity := GroupByMean(rows, ByCity, Salary)
	if opts.TopN > 0 && len(byCity) > opts.TopN {
		byCity = byCity[:opts.TopN]
	}
	return Report{
		Summary:        Summarize(rows),
		TopTitles:      TopN(ValueCounts(Column(rows, ByTitle)), opts.TopN),
		SalaryByRegion: GroupByMean(rows, ByRegion, Salary),
		SalaryByCity:   byCity,
		Gender:         ValueCounts(Column(rows, ByGender)),
		Skills:         opts.Tagger.Stats(rows),
		Words:          WordFrequencies(Column(rows, ByDescription), WordOptions{Limit: opts.Words}),
	}
}
