package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/geo"
	"go-accident-dashboard/internal/store"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable, e.g. DASHBOARD_SOURCE.
const EnvPrefix = "DASHBOARD"

// DefaultFile is read when no config file is given.
const DefaultFile = "dashboard.yaml"

// Config is the dashboard configuration.
type Config struct {
	// Dataset source
	Source     string `mapstructure:"source" yaml:"source"`
	SourceType string `mapstructure:"source_type" yaml:"source_type"`
	SQLDriver  string `mapstructure:"sql_driver" yaml:"sql_driver"`
	SQLDSN     string `mapstructure:"sql_dsn" yaml:"sql_dsn"`
	SQLTable   string `mapstructure:"sql_table" yaml:"sql_table"`

	// Server and outputs
	ListenAddr     string `mapstructure:"listen_addr" yaml:"listen_addr"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	ChartDir       string `mapstructure:"chart_dir" yaml:"chart_dir"`
	ReloadSchedule string `mapstructure:"reload_schedule" yaml:"reload_schedule"`

	// ShutdownTimeout is a duration such as "10s"; unparseable values use the default.
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Dashboard
	GeoTable  string `mapstructure:"geo_table" yaml:"geo_table"`
	TopCauses int    `mapstructure:"top_causes" yaml:"top_causes"`
	Currency  string `mapstructure:"currency" yaml:"currency"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty" yaml:"log_pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "")
	v.SetDefault("source_type", "")
	v.SetDefault("sql_driver", store.DriverSQLite)
	v.SetDefault("sql_dsn", "")
	v.SetDefault("sql_table", "accidents")

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("chart_dir", "")
	v.SetDefault("reload_schedule", "")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("geo_table", "")
	v.SetDefault("top_causes", analytics.DefaultTopCauses)
	v.SetDefault("currency", analytics.DefaultCurrency)

	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 5000)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return &c
}

// Load reads configuration with precedence env > config file > defaults.
// A .env file in the working directory is loaded into the environment
// first. When cfgFile is empty, ./dashboard.yaml is read if present.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes c as YAML to path, creating parent directories.
func Save(c *Config, path string) error {
	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch strings.ToLower(c.SourceType) {
	case "", dataset.TypeCSV, dataset.TypeJSON, dataset.TypeSQL:
	default:
		return fmt.Errorf("invalid source_type %q: want csv, json or sql", c.SourceType)
	}
	if c.TopCauses < 0 {
		return fmt.Errorf("invalid top_causes %d", c.TopCauses)
	}
	if c.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.ReloadSchedule); err != nil {
			return fmt.Errorf("invalid reload_schedule %q: %w", c.ReloadSchedule, err)
		}
	}
	return nil
}

// DatasetSource describes where the dataset is loaded from.
func (c *Config) DatasetSource() dataset.Source {
	src := dataset.Source{Type: strings.ToLower(c.SourceType), Location: c.Source}
	if src.Type == dataset.TypeSQL || (src.Type == "" && c.Source == "" && c.SQLDSN != "") {
		src.Type = dataset.TypeSQL
		src.Location = ""
		src.Driver = c.SQLDriver
		src.DSN = c.SQLDSN
		src.Table = c.SQLTable
	}
	return src
}

// HTTPTimeout returns the timeout for remote sources.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// Retry returns the retry policy for remote sources.
func (c *Config) Retry() dataset.RetryConfig {
	r := dataset.DefaultRetryConfig
	if c.RetryMaxAttempts > 0 {
		r.MaxAttempts = c.RetryMaxAttempts
	}
	if c.RetryBaseDelayMs > 0 {
		r.InitialDelay = time.Duration(c.RetryBaseDelayMs) * time.Millisecond
	}
	if c.RetryMaxDelayMs > 0 {
		r.MaxDelay = time.Duration(c.RetryMaxDelayMs) * time.Millisecond
	}
	return r
}

// Loader returns a dataset loader using the HTTP and retry settings.
func (c *Config) Loader() *dataset.Loader {
	l := dataset.NewLoader(c.HTTPTimeout())
	l.Retry = c.Retry()
	return l
}

// Countries returns the coordinate table, with geo_table overlaid on the
// built-in one.
func (c *Config) Countries() (geo.Table, error) {
	return geo.LoadFile(c.GeoTable)
}

// DashboardOptions returns the analytics options for the configured
// coordinate table, cause ranking and currency.
func (c *Config) DashboardOptions() (analytics.DashboardOptions, error) {
	countries, err := c.Countries()
	if err != nil {
		return analytics.DashboardOptions{}, err
	}
	return analytics.DashboardOptions{
		ViewOptions: analytics.ViewOptions{TopCauses: c.TopCauses, Countries: countries},
		Currency:    c.Currency,
	}, nil
}
