package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg together with
// blocking errors and advisory warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Cache.Backend = strings.ToLower(strings.TrimSpace(out.Cache.Backend))
	out.App.LogFormat = strings.ToLower(strings.TrimSpace(out.App.LogFormat))
	out.Dataset.URL = strings.TrimSpace(out.Dataset.URL)
	out.Assets.GeoJSONURL = strings.TrimSpace(out.Assets.GeoJSONURL)
	out.Assets.FontURL = strings.TrimSpace(out.Assets.FontURL)

	var skills []SkillRule
	for _, s := range out.Skills {
		s.Tag = strings.TrimSpace(s.Tag)
		s.Any = trimList(s.Any)
		skills = append(skills, s)
	}
	out.Skills = skills

	// ---- Validation rules ----

	if out.App.Addr == "" {
		res.addErr("app.addr is required")
	}
	switch out.App.LogFormat {
	case "", "json", "console":
	default:
		res.addErr("app.log_format must be json or console, got %q", out.App.LogFormat)
	}

	checkURL := func(key, raw string, required bool) {
		if raw == "" {
			if required {
				res.addErr("%s is required", key)
			}
			return
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			res.addErr("%s must be an absolute http(s) URL, got %q", key, raw)
		}
	}
	checkURL("dataset.url", out.Dataset.URL, true)
	checkURL("assets.geojson_url", out.Assets.GeoJSONURL, false)
	checkURL("assets.font_url", out.Assets.FontURL, false)

	if out.Dataset.RefreshInterval < 0 {
		res.addErr("dataset.refresh_interval must be >= 0")
	} else if out.Dataset.RefreshInterval > 0 && out.Dataset.RefreshInterval < time.Minute {
		res.addWarn("dataset.refresh_interval is very low (%s) and re-downloads the whole CSV each time.", out.Dataset.RefreshInterval)
	}
	if out.Dataset.FetchTimeout <= 0 {
		res.addErr("dataset.fetch_timeout must be > 0")
	}
	if out.Dataset.MaxBytes <= 0 {
		res.addErr("dataset.max_bytes must be > 0")
	}

	cols := map[string]string{
		"job_title":  out.Dataset.Columns.Title,
		"job_desc":   out.Dataset.Columns.Description,
		"salary":     out.Dataset.Columns.Salary,
		"region":     out.Dataset.Columns.Region,
		"city":       out.Dataset.Columns.City,
		"experience": out.Dataset.Columns.Experience,
		"gender":     out.Dataset.Columns.Gender,
	}
	for _, k := range []string{"job_title", "job_desc", "salary", "region", "city", "experience", "gender"} {
		if strings.TrimSpace(cols[k]) == "" {
			res.addErr("dataset.columns.%s is required", k)
		}
	}

	if out.Dataset.RequestsPerSecond < 0 {
		res.addErr("dataset.requests_per_second must be >= 0")
	}
	if out.Dataset.RequestsPerSecond > 0 && out.Dataset.Burst <= 0 {
		res.addErr("dataset.burst must be > 0 when dataset.requests_per_second is set")
	}
	if out.Assets.RequestsPerSecond <= 0 {
		res.addErr("assets.requests_per_second must be > 0")
	}
	if out.Assets.Burst <= 0 {
		res.addErr("assets.burst must be > 0")
	}

	switch out.Cache.Backend {
	case "memory", "sqlite":
	case "redis":
		if strings.TrimSpace(out.Cache.Redis.Addr) == "" {
			res.addErr("cache.redis.addr is required when cache.backend=redis")
		}
	default:
		res.addErr("cache.backend must be memory, sqlite or redis, got %q", out.Cache.Backend)
	}

	if out.Page.TopN <= 0 {
		res.addErr("page.top_n must be > 0")
	} else if out.Page.TopN > 50 {
		res.addWarn("page.top_n is %d; bar labels will be hard to read.", out.Page.TopN)
	}
	if out.Page.WordCloudWords <= 0 {
		res.addErr("page.word_cloud_words must be > 0")
	}

	seenTags := map[string]bool{}
	for i, s := range out.Skills {
		if s.Tag == "" {
			res.addErr("skills[%d].tag is required", i)
		}
		if len(s.Any) == 0 {
			res.addErr("skills[%d].any must have at least 1 term", i)
		}
		key := strings.ToLower(s.Tag)
		if s.Tag != "" && seenTags[key] {
			res.addWarn("skill tag appears more than once: %q", s.Tag)
		}
		seenTags[key] = true
	}

	if out.Admin.Token == "" && out.Admin.KeyringAccount == "" {
		res.addWarn("no admin token source configured; POST /api/reload will always be rejected.")
	}

	return out, res
}
