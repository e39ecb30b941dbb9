package config

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
    t.Helper()
    p := filepath.Join(t.TempDir(), name)
    require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
    return p
}

func TestDefaultsAreValid(t *testing.T) {
    require.NoError(t, Default().Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
    t.Setenv("FINNHUB_API_KEY", "")
    t.Setenv("NEXT_PUBLIC_FINNHUB_API_KEY", "")
    cfg, err := Load("")
    require.NoError(t, err)
    require.Equal(t, "*/5 * * * *", cfg.Schedule.Cron)
    require.Equal(t, "https://data-api.binance.vision", cfg.Quotes.BinanceMirrorURL)
    require.Equal(t, 8, cfg.Quotes.MaxConcurrency)
    require.Empty(t, cfg.Quotes.FinnhubAPIKey)
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
    path := writeFile(t, "config.yaml", `
server:
  port: "9090"
schedule:
  cron: "*/1 * * * *"
quotes:
  max_concurrency: 4
  finnhub_rps: 0.5
mongo:
  database: alerts_dev
log:
  format: json
`)
    t.Setenv("ALERTS_QUOTES_MAX_CONCURRENCY", "16")
    t.Setenv("ALERTS_SWEEP_PERSIST_CONCURRENCY", "3")
    t.Setenv("PORT", "")

    cfg, err := Load(path)
    require.NoError(t, err)
    require.Equal(t, "9090", cfg.Server.Port)
    require.Equal(t, "*/1 * * * *", cfg.Schedule.Cron)
    require.Equal(t, 16, cfg.Quotes.MaxConcurrency)
    require.Equal(t, 3, cfg.Sweep.PersistConcurrency)
    require.InDelta(t, 0.5, cfg.Quotes.FinnhubRPS, 1e-9)
    require.Equal(t, "alerts_dev", cfg.Mongo.Database)
    require.Equal(t, "json", cfg.Log.Format)
    // untouched keys keep their defaults
    require.Equal(t, "https://api.binance.com", cfg.Quotes.BinanceURL)
}

func TestLegacyEnvironmentNames(t *testing.T) {
    t.Setenv("PORT", "3000")
    t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
    t.Setenv("FINNHUB_API_KEY", "")
    t.Setenv("NEXT_PUBLIC_FINNHUB_API_KEY", "pub-key")
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("REDIS_ADDR", "localhost:6379")

    cfg, err := Load("")
    require.NoError(t, err)
    require.Equal(t, "3000", cfg.Server.Port)
    require.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
    require.Equal(t, "pub-key", cfg.Quotes.FinnhubAPIKey)
    require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
    require.Equal(t, "localhost:6379", cfg.Redis.Addr)

    t.Setenv("FINNHUB_API_KEY", "server-key")
    cfg, err = Load("")
    require.NoError(t, err)
    require.Equal(t, "server-key", cfg.Quotes.FinnhubAPIKey)
}

func TestInvalidConfigIsRejected(t *testing.T) {
    path := writeFile(t, "config.json", `{"log":{"format":"xml"}}`)
    _, err := Load(path)
    require.ErrorContains(t, err, "invalid config")

    path = writeFile(t, "config.json", `{"quotes":{"binance_url":"not a url"}}`)
    _, err = Load(path)
    require.Error(t, err)

    _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
    require.ErrorContains(t, err, "read config")
}

func TestDurations(t *testing.T) {
    d := Default()
    require.Equal(t, "8s", d.Quotes.Timeout().String())
    require.Equal(t, "250ms", d.Quotes.YahooMinInterval().String())
    require.Equal(t, "4m0s", d.Sweep.LeaseTTL().String())
}
