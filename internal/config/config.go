package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Gamma       GammaConfig       `mapstructure:"gamma"`
	XAI         XAIConfig         `mapstructure:"xai"`
	Opportunity OpportunityConfig `mapstructure:"opportunity"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Portfolio   PortfolioConfig   `mapstructure:"portfolio"`
	Cron        CronConfig        `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type GammaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type XAIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpportunityConfig struct {
	FetchLimit   int `mapstructure:"fetch_limit"`
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Window        time.Duration `mapstructure:"window"`
	LightRequests int           `mapstructure:"light_requests"`
	HeavyRequests int           `mapstructure:"heavy_requests"`
}

type PortfolioConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	MinTradeAmount float64 `mapstructure:"min_trade_amount"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	PriceRefresh string `mapstructure:"price_refresh"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "30s")
	v.SetDefault("xai.base_url", "https://api.x.ai")
	v.SetDefault("xai.model", "grok-4-1-fast")
	v.SetDefault("xai.timeout", "120s")
	v.SetDefault("opportunity.fetch_limit", 100)
	v.SetDefault("opportunity.default_limit", 10)
	v.SetDefault("opportunity.max_limit", 50)
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("rate_limit.window", "60s")
	v.SetDefault("rate_limit.light_requests", 60)
	v.SetDefault("rate_limit.heavy_requests", 5)
	v.SetDefault("portfolio.initial_balance", 100000)
	v.SetDefault("portfolio.min_trade_amount", 1)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.price_refresh", "@every 5m")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
