package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	RTL   bool   `json:"rtl"`
}

type WordOptions struct {
	Limit  int
	MinLen int
	// Extra stop words on top of the built-in English and Arabic lists.
	Stopwords []string
}

// WordFrequencies counts words across texts after NFKC normalization, case
// folding and removal of Arabic diacritics and tatweel. Digits and
// punctuation separate words. The most frequent Limit words are returned,
// ties alphabetical.
func WordFrequencies(texts []string, opts WordOptions) []WordCount {
	if opts.MinLen <= 0 {
		opts.MinLen = 2
	}
	stop := make(map[string]bool, len(defaultStopwords)+len(opts.Stopwords))
	for _, w := range defaultStopwords {
		stop[w] = true
	}
	fold := cases.Fold()
	for _, w := range opts.Stopwords {
		stop[fold.String(norm.NFKC.String(strings.TrimSpace(w)))] = true
	}

	counts := map[string]int{}
	for _, text := range texts {
		for _, tok := range Tokenize(text, fold) {
			if utf8.RuneCountInString(tok) < opts.MinLen || stop[tok] {
				continue
			}
			counts[tok]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, WordCount{Word: w, Count: n, RTL: IsRTL(w)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Word < out[j].Word
		}
		return out[i].Count > out[j].Count
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Tokenize splits text into normalized words.
func Tokenize(text string, fold cases.Caser) []string {
	text = fold.String(norm.NFKC.String(text))
	text = strings.Map(func(r rune) rune {
		if isArabicMark(r) {
			return -1
		}
		return r
	}, text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
	})
}

// tashkeel, superscript alef and tatweel
func isArabicMark(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670 || r == 0x0640
}

// IsRTL reports whether the first strong character of s is right-to-left.
func IsRTL(s string) bool {
	for len(s) > 0 {
		p, sz := bidi.LookupString(s)
		if sz == 0 {
			return false
		}
		switch p.Class() {
		case bidi.R, bidi.AL:
			return true
		case bidi.L:
			return false
		}
		s = s[sz:]
	}
	return false
}

// Visual returns s in display order for outputs without bidi support:
// right-to-left words are reversed, others kept.
func Visual(s string) string {
	if !IsRTL(s) {
		return s
	}
	return bidi.ReverseString(s)
}

var defaultStopwords = []string{
	// english
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "have",
	"in", "is", "it", "its", "of", "on", "or", "our", "the", "to", "we", "will",
	"with", "you", "your", "this", "that", "all", "any", "can", "etc", "must",
	"not", "other", "who", "within", "able", "based", "such", "per", "into",
	"their", "they", "should", "would", "also", "more", "well", "work", "job",
	// arabic
	"في", "من", "على", "إلى", "الى", "عن", "مع", "أو", "او", "و", "ان", "أن", "إن",
	"هذا", "هذه", "التي", "الذي", "ذلك", "كل", "بعض", "غير", "لدى", "لدي", "حيث",
	"كما", "ما", "لا", "هو", "هي", "قبل", "بعد", "عند", "بين", "خلال", "ضمن", "ثم",
	"قد", "تم", "يتم", "وفق", "حسب", "عبر", "نحو",
}
