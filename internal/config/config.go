package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SkillRule tags a listing with Tag when its title or description
// contains any of the terms in Any.
type SkillRule struct {
	Tag string   `yaml:"tag" json:"tag"`
	Any []string `yaml:"any" json:"any"`
}

// Columns maps listing fields onto CSV header names.
type Columns struct {
	Title       string `yaml:"job_title" json:"job_title"`
	Description string `yaml:"job_desc" json:"job_desc"`
	Salary      string `yaml:"salary" json:"salary"`
	Region      string `yaml:"region" json:"region"`
	City        string `yaml:"city" json:"city"`
	Experience  string `yaml:"experience" json:"experience"`
	Gender      string `yaml:"gender" json:"gender"`
}

type Config struct {
	App struct {
		Addr      string `yaml:"addr" json:"addr"`
		DataDir   string `yaml:"data_dir" json:"data_dir"`
		LogLevel  string `yaml:"log_level" json:"log_level"`
		LogFormat string `yaml:"log_format" json:"log_format"` // json | console
	} `yaml:"app" json:"app"`

	Dataset struct {
		URL             string        `yaml:"url" json:"url"`
		RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"` // 0 keeps the first load for the process lifetime
		FetchTimeout    time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
		MaxBytes        int64         `yaml:"max_bytes" json:"max_bytes"`
		Columns         Columns       `yaml:"columns" json:"columns"`

		// RequestsPerSecond throttles the dataset host on its own; 0 shares the asset limits.
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"dataset" json:"dataset"`

	Assets struct {
		GeoJSONURL          string        `yaml:"geojson_url" json:"geojson_url"`
		GeoJSONNameProperty string        `yaml:"geojson_name_property" json:"geojson_name_property"`
		FontURL             string        `yaml:"font_url" json:"font_url"`
		CacheTTL            time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
		RequestsPerSecond   float64       `yaml:"requests_per_second" json:"requests_per_second"`
		Burst               int           `yaml:"burst" json:"burst"`
	} `yaml:"assets" json:"assets"`

	Cache struct {
		Backend string `yaml:"backend" json:"backend"` // memory | sqlite | redis
		Redis   struct {
			Addr     string `yaml:"addr" json:"addr"`
			Password string `yaml:"password" json:"-"`
			DB       int    `yaml:"db" json:"db"`
		} `yaml:"redis" json:"redis"`
	} `yaml:"cache" json:"cache"`

	Page struct {
		Title           string `yaml:"title" json:"title"`
		TopN            int    `yaml:"top_n" json:"top_n"`
		WordCloudWords  int    `yaml:"word_cloud_words" json:"word_cloud_words"`
		ShowErrorDetail bool   `yaml:"show_error_detail" json:"show_error_detail"`
		Currency        string `yaml:"currency" json:"currency"`
	} `yaml:"page" json:"page"`

	Regions struct {
		Aliases map[string]string `yaml:"aliases" json:"aliases"`
	} `yaml:"regions" json:"regions"`

	Skills []SkillRule `yaml:"skills" json:"skills"`

	Admin struct {
		Token          string `yaml:"token" json:"-"`
		KeyringAccount string `yaml:"keyring_account" json:"keyring_account"`
	} `yaml:"admin" json:"admin"`

	Telemetry struct {
		OTLPEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint"`
		ServiceName  string `yaml:"service_name" json:"service_name"`
	} `yaml:"telemetry" json:"telemetry"`
}

const DefaultDatasetURL = "https://raw.githubusercontent.com/ReyadGH/use-case-5-deployment/main/data/clean.csv"

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	var c Config
	c.App.Addr = "127.0.0.1:8501"
	c.App.LogLevel = "info"
	c.App.LogFormat = "json"

	c.Dataset.URL = DefaultDatasetURL
	c.Dataset.FetchTimeout = 30 * time.Second
	c.Dataset.MaxBytes = 64 << 20
	c.Dataset.RequestsPerSecond = 1
	c.Dataset.Burst = 1
	c.Dataset.Columns = Columns{
		Title:       "job_title",
		Description: "job_desc",
		Salary:      "salary",
		Region:      "region",
		City:        "city",
		Experience:  "exper",
		Gender:      "gender",
	}

	c.Assets.GeoJSONNameProperty = "name"
	c.Assets.FontURL = "https://raw.githubusercontent.com/google/fonts/main/ofl/amiri/Amiri-Regular.ttf"
	c.Assets.CacheTTL = 24 * time.Hour
	c.Assets.RequestsPerSecond = 2
	c.Assets.Burst = 2

	c.Cache.Backend = "memory"

	c.Page.Title = "Unveiling Job Market Trends in Saudi Arabia: The Treasure Hunt"
	c.Page.TopN = 10
	c.Page.WordCloudWords = 100
	c.Page.ShowErrorDetail = true
	c.Page.Currency = "SAR"

	c.Admin.KeyringAccount = "dashboard:admin"

	c.Telemetry.ServiceName = "jobmarket-dashboard"
	return c
}

// Load reads path on top of Default, then applies .env and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}
