package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	"github.com/ReyadGH/use-case-4-deployment/internal/logging"
	"github.com/ReyadGH/use-case-4-deployment/internal/secrets"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	defaultDataDir := os.Getenv("DASHBOARD_DATA_DIR")
	if defaultDataDir == "" {
		defaultDataDir = "."
	}
	dataDir := flag.String("data-dir", defaultDataDir, "directory holding config.yml, skills.yml and caches")
	cfgPath := flag.String("config", "", "config file (default <data-dir>/config.yml)")
	setToken := flag.String("set-admin-token", "", `store the admin token in the OS keyring and exit ("-" reads it from stdin)`)
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "data dir:", err)
		os.Exit(1)
	}
	config.LoadDotEnv(filepath.Join(*dataDir, ".env"), ".env")

	cfg, path, err := loadConfig(*dataDir, *cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed (%s): %v\n", path, err)
		os.Exit(1)
	}

	if *setToken != "" {
		if err := storeToken(cfg, *setToken); err != nil {
			fmt.Fprintln(os.Stderr, "set admin token:", err)
			os.Exit(1)
		}
		fmt.Printf("admin token stored in keyring (%s/%s)\n", secrets.KeyringService, cfg.Admin.KeyringAccount)
		return
	}

	log, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	_, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Warn("config", zap.String("warning", w))
	}
	if !vr.OK() {
		log.Fatal("invalid config", zap.String("path", path), zap.Strings("errors", vr.Errors))
	}
	log.Info("config loaded", zap.String("path", path), zap.String("dataset", cfg.Dataset.URL))

	app := fx.New(
		fx.Supply(cfg, log),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Provide(
			newCache,
			newFetcher,
			newLoader,
			newHub,
			newBuilder,
			newDeps,
			newServer,
		),
		fx.Invoke(
			startTracing,
			startRefresh,
			warmUp,
			func(*serverHandle) {},
		),
	)
	app.Run()
}

// loadConfig bootstraps the user config from config/config.yml on first run,
// then loads it with the skills overlay and environment overrides.
func loadConfig(dataDir, path string) (config.Config, string, error) {
	if path == "" {
		var err error
		path, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if errors.Is(err, os.ErrNotExist) {
			path = filepath.Join(dataDir, "config.yml")
			err = config.SaveAtomic(path, config.Default())
		}
		if err != nil {
			return config.Config{}, path, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, err
	}
	if err := config.OverlaySkills(&cfg, filepath.Join(dataDir, "skills.yml")); err != nil {
		return cfg, path, err
	}
	cfg.App.DataDir = dataDir
	normalized, _ := config.NormalizeAndValidate(cfg)
	return normalized, path, nil
}

func storeToken(cfg config.Config, token string) error {
	if token == "-" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return err
		}
		token = line
	}
	return secrets.SetAdminToken(cfg.Admin.KeyringAccount, strings.TrimSpace(token))
}
