// Package httpapi wires the HTTP transport (Gin) to the bot dispatcher,
// middleware, and webhook handlers. It centralizes cross-cutting concerns
// such as tracing, correlation IDs, logging, panic recovery, metrics, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AsilenceBTF/sf6bot/internal/bot"
	"github.com/AsilenceBTF/sf6bot/internal/config"
	"github.com/AsilenceBTF/sf6bot/internal/http/handlers"
	"github.com/AsilenceBTF/sf6bot/internal/http/middleware"
)

// maxWebhookBody caps webhook payload size. Messages are short; anything
// beyond this is not a legitimate delivery.
const maxWebhookBody = 256 << 10

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: health and metrics plus the two platform webhooks.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per webhook route)
func RegisterRoutes(r *gin.Engine, d *bot.Dispatcher, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Webhook body size limit
	r.Use(limitBody(maxWebhookBody))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Rate limiting, one bucket per webhook route
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByRouteOrIP())
	r.Use(rl.Handler())

	// Liveness probe
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	qq := &handlers.QQHandler{AppSecret: cfg.QQ.AppSecret, Dispatcher: d}
	ob := &handlers.OneBotHandler{BotUserID: cfg.OneBot.BotUserID, Dispatcher: d}

	r.POST("/webhook/qq", qq.Post)
	r.POST("/webhook/onebot", ob.Post)
}

// limitBody rejects request bodies larger than maxBytes.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
