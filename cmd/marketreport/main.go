// Command marketreport prints the job market aggregates to the terminal.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ReyadGH/use-case-4-deployment/internal/analysis"
	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/dataset"
	"github.com/ReyadGH/use-case-4-deployment/internal/domain"
	"github.com/ReyadGH/use-case-4-deployment/internal/fetch"
	"github.com/ReyadGH/use-case-4-deployment/internal/logging"

	"github.com/cheggaaa/pb/v3"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "config file (defaults are used when empty)")
	url := flag.String("url", "", "dataset URL, overrides the config")
	region := flag.String("region", "", "comma separated regions to keep")
	top := flag.Int("top", 10, "number of job titles to show")
	words := flag.Int("words", 20, "number of description words to show")
	noBanner := flag.Bool("nobanner", false, "do not print the banner")
	flag.Parse()

	printBanner(*noBanner)

	if err := run(*cfgPath, *url, splitRegions(*region), *top, *words); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(cfgPath, url string, regions []string, top, words int) error {
	config.LoadDotEnv(".env")

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.OverlaySkills(&cfg, filepath.Join(filepath.Dir(cfgPath), "skills.yml")); err != nil {
			return fmt.Errorf("load skills: %w", err)
		}
	} else {
		config.ApplyEnv(&cfg)
	}
	if url != "" {
		cfg.Dataset.URL = url
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return fmt.Errorf("invalid config: %s", strings.Join(vr.Errors, "; "))
	}

	// the report owns stdout; keep the logger quiet unless asked
	level := cfg.App.LogLevel
	if level == "" || level == "info" {
		level = "warn"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	table, err := download(ctx, cfg, log)
	if err != nil {
		return err
	}

	rows := analysis.FilterRegions(table, regions).Rows
	if len(rows) == 0 {
		pterm.Warning.Printfln("no listings match regions %v", regions)
		return nil
	}
	report := analysis.NewReport(rows, analysis.ReportOptions{
		TopN:   top,
		Words:  words,
		Tagger: analysis.NewSkillTagger(cfg.Skills),
	})
	return printReport(os.Stdout, report, cfg.Page.Currency)
}

// download fetches the CSV with a progress bar on stderr and parses it.
func download(ctx context.Context, cfg config.Config, log *zap.Logger) (*domain.Table, error) {
	opts := fetch.DefaultOptions()
	if cfg.Dataset.FetchTimeout > 0 {
		opts.Timeout = cfg.Dataset.FetchTimeout
	}
	if cfg.Dataset.MaxBytes > 0 {
		opts.MaxBytes = cfg.Dataset.MaxBytes
	}

	var bar *pb.ProgressBar
	opts.WrapBody = func(n int64, body io.Reader) io.Reader {
		bar = pb.New64(n)
		bar.SetTemplate(pb.Full)
		bar.Set(pb.Bytes, true)
		bar.SetWriter(os.Stderr)
		bar.Start()
		return bar.NewProxyReader(body)
	}

	f := fetch.New(opts, nil, log)
	e, err := f.Get(ctx, cfg.Dataset.URL)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	t, err := dataset.Parse(bytes.NewReader(e.Data), cfg.Dataset.Columns)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfg.Dataset.URL, err)
	}
	pterm.Success.Printfln("loaded %d listings from %s", len(t.Rows), cfg.Dataset.URL)
	return t, nil
}

func splitRegions(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
