package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/distillate-labs/dieseldesk/internal/analytics"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	FRED        FREDConfig       `mapstructure:"fred"`
	EIA         EIAConfig        `mapstructure:"eia"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Analytics   analytics.Config `mapstructure:"analytics"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	Telemetry   TelemetryConfig  `mapstructure:"telemetry"`
	Admin       AdminConfig      `mapstructure:"admin"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FREDConfig points at the Federal Reserve Economic Data API, the source
// of the crude and diesel price series.
type FREDConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"`
}

// EIAConfig points at the US Energy Information Administration v2 API,
// the source of distillate inventory data.
type EIAConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"`
}

type MarketDataConfig struct {
	RefreshInterval string  `mapstructure:"refresh_interval"`
	HistoryMonths   int     `mapstructure:"history_months"`
	WeeklyDemandKB  float64 `mapstructure:"weekly_demand_kb"`
}

type CacheConfig struct {
	LatestTTL    string `mapstructure:"latest_ttl"`
	AnalyticsTTL string `mapstructure:"analytics_ttl"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"` // "otlp" or "stdout"
	Endpoint string `mapstructure:"endpoint"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key" json:"-" yaml:"-"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Keys the deployment always supplies through the environment.
	for key, env := range map[string]string{
		"fred.api_key":       "FRED_API_KEY",
		"eia.api_key":        "EIA_API_KEY",
		"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":   "TELEGRAM_CHAT_ID",
		"admin.api_key":      "ADMIN_API_KEY",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is fine, defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate fails fast on anything that would only surface mid-request
// otherwise: unparseable durations and broken analytics tables.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"market_data.refresh_interval": c.MarketData.RefreshInterval,
		"cache.latest_ttl":             c.Cache.LatestTTL,
		"cache.analytics_ttl":          c.Cache.AnalyticsTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if c.MarketData.HistoryMonths <= 0 {
		return fmt.Errorf("market_data.history_months must be positive, got %d", c.MarketData.HistoryMonths)
	}

	if c.Telemetry.Enabled && c.Telemetry.Exporter != "otlp" && c.Telemetry.Exporter != "stdout" {
		return fmt.Errorf("telemetry.exporter must be otlp or stdout, got %q", c.Telemetry.Exporter)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("invalid analytics configuration: %w", err)
	}

	return nil
}

// RefreshInterval returns the parsed collection interval. Validate has
// already run, so the parse cannot fail.
func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.MarketData.RefreshInterval)
	return d
}

// LatestTTL returns the cache TTL for latest-value endpoints.
func (c *Config) LatestTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.LatestTTL)
	return d
}

// AnalyticsTTL returns the cache TTL for computed analytics payloads.
func (c *Config) AnalyticsTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.AnalyticsTTL)
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "dieseldesk")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")
	viper.SetDefault("fred.api_key", "")
	viper.SetDefault("fred.timeout", 30)

	viper.SetDefault("eia.base_url", "https://api.eia.gov/v2")
	viper.SetDefault("eia.api_key", "")
	viper.SetDefault("eia.timeout", 30)

	viper.SetDefault("market_data.refresh_interval", "6h")
	viper.SetDefault("market_data.history_months", 24)
	// US distillate weekly product supplied, thousand barrels.
	viper.SetDefault("market_data.weekly_demand_kb", 29050.0)

	viper.SetDefault("cache.latest_ttl", "60s")
	viper.SetDefault("cache.analytics_ttl", "300s")

	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.exporter", "stdout")
	viper.SetDefault("telemetry.endpoint", "localhost:4318")

	viper.SetDefault("admin.api_key", "")

	setAnalyticsDefaults()
}

// setAnalyticsDefaults mirrors analytics.DefaultConfig so the thresholds
// stay overridable from config.yaml without being hardcoded in formulas.
func setAnalyticsDefaults() {
	def := analytics.DefaultConfig()

	viper.SetDefault("analytics.gasoil_bbl_per_mt", def.GasoilBblPerMT)
	viper.SetDefault("analytics.crude_bbl_per_mt", def.CrudeBblPerMT)
	viper.SetDefault("analytics.gal_per_bbl", def.GalPerBbl)
	viper.SetDefault("analytics.crack_tiers", thresholdMaps(def.CrackTiers))
	viper.SetDefault("analytics.crack_floor_label", def.CrackFloorLabel)
	viper.SetDefault("analytics.backwardation_min", def.BackwardationMin)
	viper.SetDefault("analytics.contango_max", def.ContangoMax)
	viper.SetDefault("analytics.inventory_tiers", thresholdMaps(def.InventoryTiers))
	viper.SetDefault("analytics.inventory_ceiling_label", def.InventoryCeilingLabel)
	viper.SetDefault("analytics.arb_threshold", def.ArbThreshold)
	viper.SetDefault("analytics.correlation_min_samples", def.CorrelationMinSamples)
	viper.SetDefault("analytics.volatility_min_returns", def.VolatilityMinReturns)
	viper.SetDefault("analytics.vol_short_window_days", def.VolShortWindowDays)
	viper.SetDefault("analytics.vol_baseline_windows", def.VolBaselineWindows)
	viper.SetDefault("analytics.vol_low_multiplier", def.VolLowMultiplier)
	viper.SetDefault("analytics.vol_high_multiplier", def.VolHighMultiplier)
	viper.SetDefault("analytics.trading_days_per_year", def.TradingDaysPerYear)
}

func thresholdMaps(tiers []analytics.Threshold) []map[string]interface{} {
	out := make([]map[string]interface{}, len(tiers))
	for i, t := range tiers {
		out[i] = map[string]interface{}{"boundary": t.Boundary, "label": t.Label}
	}
	return out
}
