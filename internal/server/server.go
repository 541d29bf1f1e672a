// Package server exposes the msgpackd record API over gin.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/msgpackhttp"
	"github.com/unkn0wn-root/msgpackhttp/ginmsgpack"
	"github.com/unkn0wn-root/msgpackhttp/internal/store"
)

type Options struct {
	Gateway     *msgpackhttp.Gateway
	Store       *store.Store
	UploadLimit int64
	Gatherer    prometheus.Gatherer // nil => prometheus.DefaultGatherer
	Logger      *zap.Logger         // nil => zap.NewNop()
}

type apiError struct {
	Error string `msgpack:"error"`
}

type handler struct {
	gw    *msgpackhttp.Gateway
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

// New returns the gin engine serving:
//
//	POST   /v1/records      body limit from the Gateway's Config
//	GET    /v1/records/:id
//	DELETE /v1/records/:id
//	POST   /v1/uploads      body limit UploadLimit
//	GET    /healthz, /metrics
func New(opts Options) *gin.Engine {
	h := &handler{gw: opts.Gateway, store: opts.Store, log: opts.Logger, now: time.Now}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/records", h.putRecord)
	v1.GET("/records/:id", h.getRecord)
	v1.DELETE("/records/:id", h.deleteRecord)

	uploads := v1.Group("/uploads", ginmsgpack.Limit(msgpackhttp.NewConfig().Limit(opts.UploadLimit)))
	uploads.POST("", h.putRecord)

	return r
}

func (h *handler) putRecord(c *gin.Context) {
	rec, ok := ginmsgpack.Bind[store.Record](c, h.gw)
	if !ok {
		return
	}
	if rec.ID == "" {
		ginmsgpack.Render(c, h.gw, http.StatusBadRequest, apiError{Error: "id is required"})
		return
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = h.now().UTC()
	}
	if err := h.store.Put(c.Request.Context(), rec); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrRejected) {
			status = http.StatusServiceUnavailable
		}
		h.log.Warn("record put failed", zap.String("id", rec.ID), zap.Error(err))
		ginmsgpack.Render(c, h.gw, status, apiError{Error: "store unavailable"})
		return
	}
	ginmsgpack.Render(c, h.gw, http.StatusCreated, rec)
}

func (h *handler) getRecord(c *gin.Context) {
	id := c.Param("id")
	rec, ok, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Warn("record get failed", zap.String("id", id), zap.Error(err))
		ginmsgpack.Render(c, h.gw, http.StatusInternalServerError, apiError{Error: "store unavailable"})
		return
	}
	if !ok {
		ginmsgpack.Render(c, h.gw, http.StatusNotFound, apiError{Error: "not found"})
		return
	}
	ginmsgpack.Render(c, h.gw, http.StatusOK, rec)
}

func (h *handler) deleteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.log.Warn("record delete failed", zap.String("id", id), zap.Error(err))
		ginmsgpack.Render(c, h.gw, http.StatusInternalServerError, apiError{Error: "store unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("took", time.Since(start)),
			zap.Strings("errors", c.Errors.Errors()),
		)
	}
}
