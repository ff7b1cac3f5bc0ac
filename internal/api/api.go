// Package api exposes a lockkv store over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/illarion/lockkv/internal/core"
	"github.com/illarion/lockkv/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ValueStore is the part of core.Store served over HTTP
type ValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Inspect(ctx context.Context, key string) (core.State, error)
	Keys(ctx context.Context) ([]string, error)
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store ValueStore
	Ping  Pinger // optional, checked by /healthz
	Log   zerolog.Logger
}

type setRequest struct {
	Value *string `json:"value"`
}

// NewRouter wires the handlers, health check and metrics endpoint.
// ping and gatherer may be nil.
func NewRouter(store ValueStore, ping Pinger, gatherer prometheus.Gatherer, log zerolog.Logger) *gin.Engine {
	h := &Handler{Store: store, Ping: ping, Log: log}

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog)

	r.GET("/healthz", h.Health)
	r.GET("/v1/keys", h.ListKeys)
	r.GET("/v1/values/*key", h.Get)
	r.PUT("/v1/values/*key", h.Set)
	r.DELETE("/v1/values/*key", h.Delete)
	r.GET("/v1/states/*key", h.State)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

func (h *Handler) Health(c *gin.Context) {
	if h.Ping != nil {
		if err := h.Ping.Ping(c.Request.Context()); err != nil {
			h.Log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.Store.Keys(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, keys)
}

func (h *Handler) Get(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	value, found, err := h.Store.Get(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *Handler) Set(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// A pointer so that an empty string is a valid value
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	if err := h.Store.Set(c.Request.Context(), key, *req.Value); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Delete(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	if err := h.Store.Remove(c.Request.Context(), key); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) State(c *gin.Context) {
	key, ok := h.key(c)
	if !ok {
		return
	}

	state, err := h.Store.Inspect(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "state": state.String()})
}

// key extracts and validates the catch-all key parameter
func (h *Handler) key(c *gin.Context) (string, bool) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := security.ValidateKey(key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return key, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var bsErr *core.BackingStoreError
	switch {
	case errors.Is(err, core.ErrInvalidUTF8) && !errors.Is(err, core.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrListUnsupported):
		return http.StatusNotImplemented
	case errors.As(err, &bsErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.Log.Debug().
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", c.Writer.Status()).
		Dur("took", time.Since(start)).
		Msg("http request")
}
