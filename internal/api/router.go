// Package api exposes the on-demand sweep trigger and the notification
// inbox over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"pricealerts/internal/store"
	"pricealerts/internal/sweep"
)

// MaxListLimit caps ?limit= on the notification list.
const MaxListLimit = 100

type Sweeper interface {
	Run(ctx context.Context) (sweep.Result, error)
}

type Deps struct {
	Sweeper        Sweeper
	Inbox          store.NotificationReader
	JWTSecret      []byte
	JWTIssuer      string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log), corsHeaders(), limitBody(1<<20))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	h := &handlers{deps: d}
	v1 := r.Group("/api/v1", RequireJWT(d.JWTSecret, d.JWTIssuer))
	v1.POST("/alerts/sweep", h.runSweep)
	v1.GET("/notifications", h.listNotifications)
	v1.POST("/notifications/read", h.markRead)
	return r
}

type handlers struct{ deps Deps }

func (h *handlers) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.deps.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.deps.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

func (h *handlers) runSweep(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.deps.Sweeper.Run(sweep.WithCaller(ctx, userID(c)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep_failed", "message": err.Error(), "run_id": res.RunID})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listNotifications(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, err := h.deps.Inbox.ListNotifications(ctx, userID(c), store.Limit(limit, MaxListLimit))
	if err != nil {
		h.deps.Log.Error().Err(err).Msg("list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *handlers) markRead(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	n, err := h.deps.Inbox.MarkNotificationsRead(ctx, userID(c))
	if err != nil {
		h.deps.Log.Error().Err(err).Msg("mark notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
