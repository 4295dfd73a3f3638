package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"energy-insights/internal/calc"
	"energy-insights/internal/dashboard"
	"energy-insights/internal/fetcher"
	"energy-insights/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	API        APIConfig        `mapstructure:"api"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Selection  SelectionConfig  `mapstructure:"selection"`
	Server     ServerConfig     `mapstructure:"server"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	Export     ExportConfig     `mapstructure:"export"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	// Category selects which monitoring records the records command lists.
	Category string `mapstructure:"category"`
}

// APIConfig covers the aggregate REST API.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Paths          PathsConfig   `mapstructure:"paths"`
}

// PathsConfig overrides individual resource paths. Empty keeps the default.
type PathsConfig struct {
	DepartmentCosts   string `mapstructure:"department_costs"`
	AvgKWH            string `mapstructure:"avg_kwh"`
	KWHParts          string `mapstructure:"kwh_parts"`
	ConsumptionMolten string `mapstructure:"consumption_molten"`
	TimeZone          string `mapstructure:"time_zone"`
	Consumption       string `mapstructure:"consumption"`
	Chat              string `mapstructure:"chat"`
}

// ThresholdsConfig holds the annotation limits.
type ThresholdsConfig struct {
	KWHPerTonne         float64 `mapstructure:"kwh_per_tonne"`
	SpecificConsumption float64 `mapstructure:"specific_consumption"`
}

// SelectionConfig is the initial panel selection.
type SelectionConfig struct {
	AvgMode    string `mapstructure:"avg_mode"`
	Machine    string `mapstructure:"machine"`
	Day        string `mapstructure:"day"`
	Department string `mapstructure:"department"`
	Metric     string `mapstructure:"metric"`
}

// ServerConfig sets the HTTP view API.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

// RefreshConfig governs periodic reloads while serving. Zero disables them.
type RefreshConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the record store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ENERGYDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "energydash")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.category", "energy")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.request_timeout", "15s")
	v.SetDefault("api.user_agent", "")
	for _, key := range []string{"department_costs", "avg_kwh", "kwh_parts", "consumption_molten", "time_zone", "consumption", "chat"} {
		v.SetDefault("api.paths."+key, "")
	}

	v.SetDefault("thresholds.kwh_per_tonne", calc.KWHPerTonneLimit)
	v.SetDefault("thresholds.specific_consumption", calc.SpecificConsumptionCeiling)

	v.SetDefault("selection.avg_mode", string(dashboard.ModeCombined))
	v.SetDefault("selection.machine", "")
	v.SetDefault("selection.day", "2024-07-30")
	v.SetDefault("selection.department", "Melting")
	v.SetDefault("selection.metric", string(calc.MetricConsumption))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.graceful_timeout", "10s")

	v.SetDefault("refresh.interval", "0s")
	v.SetDefault("refresh.align_to_interval", true)
	v.SetDefault("refresh.startup_delay", "0s")

	v.SetDefault("export.dir", "charts")
	v.SetDefault("export.width", 1280)
	v.SetDefault("export.height", 720)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be greater than zero")
	}
	if c.Thresholds.KWHPerTonne <= 0 {
		return fmt.Errorf("thresholds.kwh_per_tonne must be greater than zero")
	}
	if c.Thresholds.SpecificConsumption <= 0 {
		return fmt.Errorf("thresholds.specific_consumption must be greater than zero")
	}
	if _, err := dashboard.ParseAvgMode(c.Selection.AvgMode); err != nil {
		return fmt.Errorf("selection.avg_mode: %w", err)
	}
	if _, err := calc.ParseMetric(c.Selection.Metric); err != nil {
		return fmt.Errorf("selection.metric: %w", err)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval cannot be negative")
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("export.width and export.height must be greater than zero")
	}
	return nil
}

// FetcherOptions maps the api section onto client options.
func (c *Config) FetcherOptions() fetcher.Options {
	paths := map[fetcher.Resource]string{
		fetcher.ResourceDepartmentCosts:   c.API.Paths.DepartmentCosts,
		fetcher.ResourceAverageKWH:        c.API.Paths.AvgKWH,
		fetcher.ResourceKWHParts:          c.API.Paths.KWHParts,
		fetcher.ResourceConsumptionMolten: c.API.Paths.ConsumptionMolten,
		fetcher.ResourceTimeZone:          c.API.Paths.TimeZone,
		fetcher.ResourceDailyConsumption:  c.API.Paths.Consumption,
		fetcher.ResourceChat:              c.API.Paths.Chat,
	}
	return fetcher.Options{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.RequestTimeout,
		UserAgent: c.API.UserAgent,
		Paths:     paths,
	}
}

// SessionOptions maps thresholds and the initial selection onto a session.
// Values are assumed validated.
func (c *Config) SessionOptions() dashboard.Options {
	mode, _ := dashboard.ParseAvgMode(c.Selection.AvgMode)
	metric, _ := calc.ParseMetric(c.Selection.Metric)
	return dashboard.Options{
		Selection: dashboard.Selection{
			AvgMode:    mode,
			Machine:    c.Selection.Machine,
			Day:        c.Selection.Day,
			Department: c.Selection.Department,
			Metric:     metric,
		},
		Thresholds: dashboard.Thresholds{
			KWHPerTonne:         c.Thresholds.KWHPerTonne,
			SpecificConsumption: c.Thresholds.SpecificConsumption,
		},
	}
}
