package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"pricealerts/internal/alert"
	"pricealerts/internal/store/memstore"
	"pricealerts/internal/sweep"
)

var secret = []byte("test-secret")

func init() { gin.SetMode(gin.TestMode) }

type fakeSweeper struct {
	calls  int
	caller string
	err    error
}

func (f *fakeSweeper) Run(ctx context.Context) (sweep.Result, error) {
	f.calls++
	f.caller, _ = sweep.Caller(ctx)
	return sweep.Result{RunID: "run-1", Triggered: 2}, f.err
}

func token(t *testing.T, key []byte, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validToken(t *testing.T, sub string) string {
	return token(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func newTestRouter(sw Sweeper, inbox *memstore.Store) *gin.Engine {
	if inbox == nil {
		inbox = memstore.New()
	}
	return NewRouter(Deps{Sweeper: sw, Inbox: inbox, JWTSecret: secret, RequestTimeout: time.Second, Log: zerolog.Nop()})
}

func do(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSweepRequiresAuthentication(t *testing.T) {
	sw := &fakeSweeper{}
	r := newTestRouter(sw, nil)

	expired := token(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))})
	wrongKey := token(t, []byte("other"), jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	noSubject := token(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{})
	hs512 := token(t, secret, jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u1"})

	for name, bearer := range map[string]string{
		"missing": "", "garbage": "not-a-jwt", "expired": expired, "wrong key": wrongKey,
		"no subject": noSubject, "unexpected alg": hs512,
	} {
		t.Run(name, func(t *testing.T) {
			rr := do(r, http.MethodPost, "/api/v1/alerts/sweep", bearer)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
	require.Zero(t, sw.calls)
}

func TestSweepRunsForCaller(t *testing.T) {
	sw := &fakeSweeper{}
	rr := do(newTestRouter(sw, nil), http.MethodPost, "/api/v1/alerts/sweep", validToken(t, "user-42"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, 1, sw.calls)
	require.Equal(t, "user-42", sw.caller)

	var res sweep.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, 2, res.Triggered)
}

func TestSweepFailure(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("load active alerts: timeout")}
	rr := do(newTestRouter(sw, nil), http.MethodPost, "/api/v1/alerts/sweep", validToken(t, "u1"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "sweep_failed")
}

func TestNotificationInbox(t *testing.T) {
	inbox := memstore.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := inbox.InsertNotification(context.Background(), alert.Draft{UserID: "u1", AlertID: "a1", Symbol: "AAPL", Message: "AAPL is above 150", TriggeredAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := inbox.InsertNotification(context.Background(), alert.Draft{UserID: "u2", TriggeredAt: base})
	require.NoError(t, err)

	r := newTestRouter(&fakeSweeper{}, inbox)
	tok := validToken(t, "u1")

	rr := do(r, http.MethodGet, "/api/v1/notifications?limit=2", tok)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Notifications []alert.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 2)
	require.True(t, body.Notifications[0].TriggeredAt.After(body.Notifications[1].TriggeredAt))

	rr = do(r, http.MethodGet, "/api/v1/notifications?limit=zero", tok)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/api/v1/notifications/read", tok)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"updated":3}`, rr.Body.String())

	// other users' notifications are untouched
	list, err := inbox.ListNotifications(context.Background(), "u2", 0)
	require.NoError(t, err)
	require.False(t, list[0].Read)
}

func TestHealthzIsPublic(t *testing.T) {
	rr := do(newTestRouter(&fakeSweeper{}, nil), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestMissingSecretRejectsEverything(t *testing.T) {
	sw := &fakeSweeper{}
	r := NewRouter(Deps{Sweeper: sw, Inbox: memstore.New(), Log: zerolog.Nop()})
	rr := do(r, http.MethodPost, "/api/v1/alerts/sweep", validToken(t, "u1"))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Zero(t, sw.calls)
}
