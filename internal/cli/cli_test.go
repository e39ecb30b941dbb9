package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MONGODB_URI", "REDIS_ADDR", "FINNHUB_API_KEY", "NEXT_PUBLIC_FINNHUB_API_KEY", "JWT_SECRET", "PORT"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, binanceURL string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
quotes:
  binance_url: %q
  binance_mirror_url: ""
  yahoo_url: ""
log:
  level: error
`, binanceURL)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(io.Discard)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","lastPrice":"3100.25","priceChangePercent":"-2.00"}`))
	}))
	defer srv.Close()

	out, err := run(t, "quote", "--config", writeConfig(t, srv.URL), "ethusdt", "AAPL")
	require.NoError(t, err)

	var body struct {
		Quotes []struct {
			Symbol string   `json:"symbol"`
			Price  *float64 `json:"price"`
			Source string   `json:"source"`
		} `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Quotes, 2)
	require.Equal(t, "ETHUSDT", body.Quotes[0].Symbol)
	require.NotNil(t, body.Quotes[0].Price)
	require.InDelta(t, 3100.25, *body.Quotes[0].Price, 1e-9)
	require.Equal(t, "AAPL", body.Quotes[1].Symbol)
	require.Nil(t, body.Quotes[1].Price)
}

func TestQuoteCommandNeedsSymbol(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, "quote", "--config", writeConfig(t, "http://127.0.0.1:1"))
	require.Error(t, err)
}

func TestSweepCommandWithEmptyStore(t *testing.T) {
	isolateEnv(t)
	out, err := run(t, "sweep", "--config", writeConfig(t, "http://127.0.0.1:1"))
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res["run_id"])
	require.EqualValues(t, 0, res["alerts"])
}

func TestBadConfigFileFails(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, "sweep", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestCloseErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	closeLogged(zerolog.New(&buf), func(context.Context) error { return errors.New("mongo disconnect: boom") })
	require.Contains(t, buf.String(), "close backends")
	require.Contains(t, buf.String(), "mongo disconnect: boom")

	buf.Reset()
	closeLogged(zerolog.New(&buf), func(context.Context) error { return nil })
	require.Empty(t, buf.String())
}
