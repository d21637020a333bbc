package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/careline-api/internal/handler/health"
	"github.com/jwalitptl/careline-api/internal/middleware"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
	"github.com/jwalitptl/careline-api/pkg/httputil"
)

// Handler is a resource handler that mounts its own routes.
type Handler interface {
	RegisterRoutes(r gin.IRouter, auth *middleware.AuthMiddleware)
}

type Config struct {
	RateLimitEnabled bool
	RateLimit        float64
	RateBurst        int
	AllowedOrigins   []string
	AllowCredentials bool
	MaxBodyBytes     int64
	EnforceHTTPS     bool
	MetricsEnabled   bool
	MetricsPath      string
	MetricsPrefix    string
	// Registry receives the HTTP metrics and backs the metrics endpoint.
	// Defaults to the prometheus default registry.
	Registry *prometheus.Registry
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	health   *health.Handler
	handlers []Handler
	config   Config
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(auth *middleware.AuthMiddleware, healthH *health.Handler, config Config, handlers ...Handler) *Router {
	if config.MetricsPrefix == "" {
		config.MetricsPrefix = "careline"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}

	middleware.RegisterValidators()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	if config.Registry != nil {
		reg = config.Registry
	}

	r := &Router{
		engine:   engine,
		auth:     auth,
		health:   healthH,
		handlers: handlers,
		config:   config,
		metrics:  initRouterMetrics(config.MetricsPrefix, reg),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.CORS(config.AllowedOrigins, config.AllowCredentials),
	)
	if config.RateLimitEnabled {
		engine.Use(middleware.NewRateLimiter(config.RateLimit, config.RateBurst).Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(config.EnforceHTTPS),
		middleware.SizeLimit(config.MaxBodyBytes),
	)

	engine.NoRoute(func(c *gin.Context) {
		httputil.RespondWithError(c, apperrors.NotFound("route", nil))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, httputil.ErrorBody{
			Code:    http.StatusMethodNotAllowed,
			Error:   "method_not_allowed",
			Message: "method not allowed",
			TraceID: c.GetString(middleware.ContextRequestID),
		})
	})

	return r
}

// Setup mounts the health, metrics and resource routes.
func (r *Router) Setup() {
	if r.health != nil {
		r.health.RegisterRoutes(r.engine)
	}
	if r.config.MetricsEnabled {
		r.engine.GET(r.config.MetricsPath, gin.WrapH(r.metricsHandler()))
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(r.engine, r.auth)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsHandler() http.Handler {
	if r.config.Registry != nil {
		return promhttp.HandlerFor(r.config.Registry, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			kind := "client"
			if c.Writer.Status() >= 500 {
				kind = "server"
			}
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, kind).Inc()
		}
	}
}
