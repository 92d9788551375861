package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/transform"
)

const (
	EnvPrefix         = "MACROPULSE"
	DefaultConfigFile = "inputs/run_config.yaml"
	dateLayout        = "2006-01-02"
)

// Config holds one pipeline run. Values come from the YAML run file first and are then
// overridden by MACROPULSE_* environment variables.
type Config struct {
	StartDate    string            `yaml:"start_date" envconfig:"START_DATE"`
	EndDate      string            `yaml:"end_date" envconfig:"END_DATE"`
	ANPFile      string            `yaml:"anp_bronze_file" envconfig:"ANP_FILE"`
	ANPSheet     string            `yaml:"anp_sheet" envconfig:"ANP_SHEET"`
	ANPColumns   map[string]string `yaml:"anp_columns" envconfig:"ANP_COLUMNS"`
	DBPath       string            `yaml:"db_path" envconfig:"DB_PATH"`
	DataDir      string            `yaml:"data_dir" envconfig:"DATA_DIR"`
	SeriesFile   string            `yaml:"series_file" envconfig:"SERIES_FILE"`
	TargetSeries string            `yaml:"target_series" envconfig:"TARGET_SERIES"`
	SummaryPath  string            `yaml:"summary_path" envconfig:"SUMMARY_PATH"`
	Logging      LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	BCB          BCBConfig         `yaml:"bcb" envconfig:"BCB"`
	IBGE         IBGEConfig        `yaml:"ibge" envconfig:"IBGE"`

	start time.Time
	end   time.Time
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

type BCBConfig struct {
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RateLimit   float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Burst       int           `yaml:"burst" envconfig:"BURST"`
	MaxRetries  int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	WindowYears int           `yaml:"window_years" envconfig:"WINDOW_YEARS"`
}

type IBGEConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// Load reads the run file at path (or MACROPULSE_CONFIG_FILE, or the default location),
// applies environment overrides and validates the result. A missing default file is not an
// error; a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG_FILE"))
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigFile
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ANPFile == "" {
		c.ANPFile = "data/bronze/anp_precos.csv"
	}
	if c.DBPath == "" {
		c.DBPath = "data/macropulse.db"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.SeriesFile == "" {
		c.SeriesFile = "inputs/bcb_series.csv"
	}
	if c.TargetSeries == "" {
		c.TargetSeries = "selic"
	}
	if c.SummaryPath == "" {
		c.SummaryPath = "gold/summary.md"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.BCB.MaxRetries == 0 {
		c.BCB.MaxRetries = 3
	}
}

func (c *Config) validate() error {
	for key := range c.ANPColumns {
		if !isPriceField(key) {
			return fmt.Errorf("anp_columns: unknown field %q (expected uf, product, date, price)", key)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", c.Logging.Format)
	}
	return nil
}

// ValidateRun checks the extraction window. Only commands that fetch data need it; Start and
// End are zero until it succeeds.
func (c *Config) ValidateRun() error {
	start, err := time.Parse(dateLayout, strings.TrimSpace(c.StartDate))
	if err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD: %q", c.StartDate)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(c.EndDate))
	if err != nil {
		return fmt.Errorf("end_date must be YYYY-MM-DD: %q", c.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("end_date %s is before start_date %s", c.EndDate, c.StartDate)
	}
	c.start = start
	c.end = end
	return nil
}

func (c *Config) Start() time.Time {
	return c.start
}

func (c *Config) End() time.Time {
	return c.end
}

// ColumnOverride returns the explicit ANP header mapping, or nil when none is configured.
func (c *Config) ColumnOverride() map[transform.Field]string {
	if len(c.ANPColumns) == 0 {
		return nil
	}
	labels := make(map[transform.Field]string, len(c.ANPColumns))
	for key, label := range c.ANPColumns {
		labels[transform.Field(strings.ToLower(strings.TrimSpace(key)))] = label
	}
	return labels
}

func isPriceField(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, field := range transform.PriceFields {
		if string(field) == key {
			return true
		}
	}
	return false
}
