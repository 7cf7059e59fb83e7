package analysis

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"

	"golang.org/x/text/cases"
)

// SkillTagger assigns skill tags to listings from keyword rules. Terms
// match whole words; a multi-word term matches consecutive words.
type SkillTagger struct {
	rules []skillRule
}

type skillRule struct {
	tag   string
	terms [][]string
}

func NewSkillTagger(rules []config.SkillRule) SkillTagger {
	fold := cases.Fold()
	prepared := make([]skillRule, 0, len(rules))
	for _, r := range rules {
		if r.Tag == "" {
			continue
		}
		sr := skillRule{tag: r.Tag}
		for _, term := range r.Any {
			if toks := Tokenize(term, fold); len(toks) > 0 {
				sr.terms = append(sr.terms, toks)
			}
		}
		if len(sr.terms) > 0 {
			prepared = append(prepared, sr)
		}
	}
	return SkillTagger{rules: prepared}
}

// Tags returns the skills mentioned in a listing's title or description.
func (s SkillTagger) Tags(l domain.Listing) []string {
	if len(s.rules) == 0 {
		return nil
	}
	words := Tokenize(l.Title+" "+l.Description, cases.Fold())

	var tags []string
	for _, r := range s.rules {
		for _, term := range r.terms {
			if containsTerm(words, term) {
				tags = append(tags, r.tag)
				break
			}
		}
	}
	return tags
}

func containsTerm(words, term []string) bool {
	for i := 0; i+len(term) <= len(words); i++ {
		ok := true
		for j, t := range term {
			if !wordMatches(words[i+j], t) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Arabic attaches the article and some particles to the word and inflects
// with suffixes, so Arabic terms match on the stem with those stripped.
var arabicPrefixes = []string{"وال", "بال", "كال", "فال", "لل", "ال"}

func wordMatches(word, term string) bool {
	if word == term {
		return true
	}
	if !IsRTL(term) {
		return false
	}
	return strings.HasPrefix(stripArticle(word), stripArticle(term))
}

func stripArticle(w string) string {
	for _, p := range arabicPrefixes {
		if rest := strings.TrimPrefix(w, p); rest != w && utf8.RuneCountInString(rest) >= 2 {
			return rest
		}
	}
	return w
}

type SkillStat struct {
	Skill      string `json:"skill"`
	Listings   int    `json:"listings"`
	MeanSalary Number `json:"mean_salary"`
	WithSalary int    `json:"with_salary"`
}

// Stats counts listings per skill and averages their salary. Skills never
// seen are omitted. Ordered by listing count descending, then name.
func (s SkillTagger) Stats(rows []domain.Listing) []SkillStat {
	type acc struct {
		n, withSalary int
		sum           float64
	}
	m := map[string]*acc{}
	for _, r := range rows {
		for _, tag := range s.Tags(r) {
			a := m[tag]
			if a == nil {
				a = &acc{}
				m[tag] = a
			}
			a.n++
			if !math.IsNaN(r.Salary) {
				a.sum += r.Salary
				a.withSalary++
			}
		}
	}

	out := make([]SkillStat, 0, len(m))
	for tag, a := range m {
		st := SkillStat{Skill: tag, Listings: a.n, WithSalary: a.withSalary, MeanSalary: Number(math.NaN())}
		if a.withSalary > 0 {
			st.MeanSalary = Number(a.sum / float64(a.withSalary))
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Listings == out[j].Listings {
			return out[i].Skill < out[j].Skill
		}
		return out[i].Listings > out[j].Listings
	})
	return out
}
