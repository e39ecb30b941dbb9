package config

import (
    "errors"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/joho/godotenv"
    "github.com/spf13/viper"
)

type Server struct {
    Port               string `mapstructure:"port" validate:"required,numeric"`
    RequestTimeoutSec  int    `mapstructure:"request_timeout_sec" validate:"gte=1"`
    ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" validate:"gte=1"`
}

type Auth struct {
    JWTSecret string `mapstructure:"jwt_secret"`
    Issuer    string `mapstructure:"issuer"`
}

type Schedule struct {
    Enabled         bool   `mapstructure:"enabled"`
    Cron            string `mapstructure:"cron" validate:"required_if=Enabled true"`
    RunOnStart      bool   `mapstructure:"run_on_start"`
    SweepTimeoutSec int    `mapstructure:"sweep_timeout_sec" validate:"gte=0"`
}

type Sweep struct {
    PersistConcurrency int `mapstructure:"persist_concurrency" validate:"gte=1,lte=256"`
    LeaseTTLSec        int `mapstructure:"lease_ttl_sec" validate:"gte=1"`
}

type Quotes struct {
    TimeoutSec       int     `mapstructure:"timeout_sec" validate:"gte=1"`
    MaxConcurrency   int     `mapstructure:"max_concurrency" validate:"gte=1,lte=256"`
    BinanceURL       string  `mapstructure:"binance_url" validate:"required,url"`
    BinanceMirrorURL string  `mapstructure:"binance_mirror_url" validate:"omitempty,url"`
    FinnhubURL       string  `mapstructure:"finnhub_url" validate:"required,url"`
    FinnhubAPIKey    string  `mapstructure:"finnhub_api_key"`
    FinnhubRPS       float64 `mapstructure:"finnhub_rps" validate:"gte=0"`
    FinnhubBurst     int     `mapstructure:"finnhub_burst" validate:"gte=0"`
    YahooURL         string  `mapstructure:"yahoo_url" validate:"omitempty,url"`
    YahooMinIntervalMs int   `mapstructure:"yahoo_min_interval_ms" validate:"gte=0"`
}

type Mongo struct {
    URI               string `mapstructure:"uri"`
    Database          string `mapstructure:"database" validate:"required"`
    ConnectTimeoutSec int    `mapstructure:"connect_timeout_sec" validate:"gte=1"`
    EnsureIndexes     bool   `mapstructure:"ensure_indexes"`
}

type Redis struct {
    Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
    Password string `mapstructure:"password"`
    DB       int    `mapstructure:"db" validate:"gte=0"`
    Prefix   string `mapstructure:"prefix"`
}

type Log struct {
    Level      string `mapstructure:"level" validate:"oneof=trace debug info warn warning error disabled off"`
    Format     string `mapstructure:"format" validate:"oneof=console json"`
    File       string `mapstructure:"file"`
    MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
    MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
    MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

type Config struct {
    Server   Server   `mapstructure:"server"`
    Auth     Auth     `mapstructure:"auth"`
    Schedule Schedule `mapstructure:"schedule"`
    Sweep    Sweep    `mapstructure:"sweep"`
    Quotes   Quotes   `mapstructure:"quotes"`
    Mongo    Mongo    `mapstructure:"mongo"`
    Redis    Redis    `mapstructure:"redis"`
    Log      Log      `mapstructure:"log"`
}

func Default() Config {
    return Config{
        Server:   Server{Port: "8080", RequestTimeoutSec: 30, ShutdownTimeoutSec: 10},
        Schedule: Schedule{Enabled: true, Cron: "*/5 * * * *", SweepTimeoutSec: 240},
        Sweep:    Sweep{PersistConcurrency: 8, LeaseTTLSec: 240},
        Quotes: Quotes{
            TimeoutSec:         8,
            MaxConcurrency:     8,
            BinanceURL:         "https://api.binance.com",
            BinanceMirrorURL:   "https://data-api.binance.vision",
            FinnhubURL:         "https://finnhub.io/api/v1",
            FinnhubRPS:         1,
            FinnhubBurst:       5,
            YahooURL:           "https://query1.finance.yahoo.com",
            YahooMinIntervalMs: 250,
        },
        Mongo: Mongo{Database: "pricealerts", ConnectTimeoutSec: 10, EnsureIndexes: true},
        Redis: Redis{Prefix: "pricealerts:"},
        Log:   Log{Level: "info", Format: "console"},
    }
}

// Load builds the configuration from, in increasing precedence: defaults,
// the config file at path (or ./config.{json,yaml,toml} when path is
// empty), ALERTS_* environment variables and the legacy variable names.
// A .env file in the working directory is loaded first without
// overriding the real environment.
func Load(path string) (Config, error) {
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        return Config{}, fmt.Errorf("read .env: %w", err)
    }

    v := viper.New()
    setDefaults(v, Default())
    v.SetEnvPrefix("ALERTS")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    if path != "" {
        v.SetConfigFile(path)
        if err := v.ReadInConfig(); err != nil {
            return Config{}, fmt.Errorf("read config: %w", err)
        }
    } else {
        v.SetConfigName("config")
        v.AddConfigPath(".")
        if err := v.ReadInConfig(); err != nil {
            var notFound viper.ConfigFileNotFoundError
            if !errors.As(err, &notFound) {
                return Config{}, fmt.Errorf("read config: %w", err)
            }
        }
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return Config{}, fmt.Errorf("parse config: %w", err)
    }
    applyEnv(&cfg)
    if err := cfg.Validate(); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
    if err := validate.Struct(c); err != nil {
        return fmt.Errorf("invalid config: %w", err)
    }
    return nil
}

// applyEnv maps the variable names the web application already uses.
func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("MONGODB_URI"); v != "" && cfg.Mongo.URI == "" { cfg.Mongo.URI = v }
    if cfg.Quotes.FinnhubAPIKey == "" {
        cfg.Quotes.FinnhubAPIKey = firstEnv("FINNHUB_API_KEY", "NEXT_PUBLIC_FINNHUB_API_KEY")
    }
    if v := os.Getenv("JWT_SECRET"); v != "" && cfg.Auth.JWTSecret == "" { cfg.Auth.JWTSecret = v }
    if v := os.Getenv("REDIS_ADDR"); v != "" && cfg.Redis.Addr == "" { cfg.Redis.Addr = v }
}

func firstEnv(keys ...string) string {
    for _, k := range keys {
        if v := strings.TrimSpace(os.Getenv(k)); v != "" { return v }
    }
    return ""
}

func (s Server) RequestTimeout() time.Duration  { return time.Duration(s.RequestTimeoutSec) * time.Second }
func (s Server) ShutdownTimeout() time.Duration { return time.Duration(s.ShutdownTimeoutSec) * time.Second }
func (s Schedule) SweepTimeout() time.Duration  { return time.Duration(s.SweepTimeoutSec) * time.Second }
func (s Sweep) LeaseTTL() time.Duration         { return time.Duration(s.LeaseTTLSec) * time.Second }
func (q Quotes) Timeout() time.Duration         { return time.Duration(q.TimeoutSec) * time.Second }
func (q Quotes) YahooMinInterval() time.Duration {
    return time.Duration(q.YahooMinIntervalMs) * time.Millisecond
}
func (m Mongo) ConnectTimeout() time.Duration { return time.Duration(m.ConnectTimeoutSec) * time.Second }

func setDefaults(v *viper.Viper, d Config) {
    defaults := map[string]any{
        "server.port":                 d.Server.Port,
        "server.request_timeout_sec":  d.Server.RequestTimeoutSec,
        "server.shutdown_timeout_sec": d.Server.ShutdownTimeoutSec,

        "auth.jwt_secret": d.Auth.JWTSecret,
        "auth.issuer":     d.Auth.Issuer,

        "schedule.enabled":           d.Schedule.Enabled,
        "schedule.cron":              d.Schedule.Cron,
        "schedule.run_on_start":      d.Schedule.RunOnStart,
        "schedule.sweep_timeout_sec": d.Schedule.SweepTimeoutSec,

        "sweep.persist_concurrency": d.Sweep.PersistConcurrency,
        "sweep.lease_ttl_sec":       d.Sweep.LeaseTTLSec,

        "quotes.timeout_sec":           d.Quotes.TimeoutSec,
        "quotes.max_concurrency":       d.Quotes.MaxConcurrency,
        "quotes.binance_url":           d.Quotes.BinanceURL,
        "quotes.binance_mirror_url":    d.Quotes.BinanceMirrorURL,
        "quotes.finnhub_url":           d.Quotes.FinnhubURL,
        "quotes.finnhub_api_key":       d.Quotes.FinnhubAPIKey,
        "quotes.finnhub_rps":           d.Quotes.FinnhubRPS,
        "quotes.finnhub_burst":         d.Quotes.FinnhubBurst,
        "quotes.yahoo_url":             d.Quotes.YahooURL,
        "quotes.yahoo_min_interval_ms": d.Quotes.YahooMinIntervalMs,

        "mongo.uri":                 d.Mongo.URI,
        "mongo.database":            d.Mongo.Database,
        "mongo.connect_timeout_sec": d.Mongo.ConnectTimeoutSec,
        "mongo.ensure_indexes":      d.Mongo.EnsureIndexes,

        "redis.addr":     d.Redis.Addr,
        "redis.password": d.Redis.Password,
        "redis.db":       d.Redis.DB,
        "redis.prefix":   d.Redis.Prefix,

        "log.level":        d.Log.Level,
        "log.format":       d.Log.Format,
        "log.file":         d.Log.File,
        "log.max_size_mb":  d.Log.MaxSizeMB,
        "log.max_backups":  d.Log.MaxBackups,
        "log.max_age_days": d.Log.MaxAgeDays,
    }
    for k, val := range defaults { v.SetDefault(k, val) }
}
