// Package httpapi wires the HTTP transport (Gin) to the article and cache
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, rate limiting, compression, CORS and security headers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-news-aggregator/docs"
	"github.com/tbourn/go-news-aggregator/internal/cache"
	"github.com/tbourn/go-news-aggregator/internal/config"
	"github.com/tbourn/go-news-aggregator/internal/http/handlers"
	"github.com/tbourn/go-news-aggregator/internal/http/middleware"
	"github.com/tbourn/go-news-aggregator/internal/services"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
	swaggerPath = "/swagger/*any"

	maxBodyBytes = 1 << 20
)

var (
	corsMethods = []string{"GET", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "If-None-Match"}
	corsExpose  = []string{"X-Request-ID", middleware.CacheHeader, "ETag", "Content-Length"}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with apiKey/header redaction
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per IP; health, metrics and docs exempt)
//  8. gzip (metrics excluded, promhttp negotiates its own encoding)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, store *cache.Store, fetcher services.Fetcher, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.Logger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET(metricsPath, gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per IP; RATE_RPS=0 disables it
	if cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP(), healthPath, metricsPath, swaggerPath)
		r.Use(rl.Handler())
	}

	// 8) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath})))

	// 9) CORS posture (allow all if none configured) and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness plus a storage ping
	r.GET(healthPath, health(store))

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET(swaggerPath, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← store/fetcher
	artSvc := services.NewArticleService(store, fetcher)
	if cfg.MaxArticles > 0 {
		artSvc.Limit = cfg.MaxArticles
	}
	cacheSvc := services.NewCacheService(store.DB(), store)
	h := handlers.New(artSvc, cacheSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/articles", h.GetArticles)

		admin := api.Group("/cache", middleware.NoStore())
		admin.GET("", h.ListCache)
		admin.GET("/related", h.RelatedKeys)
		admin.PUT("/:kind", h.PutCacheEntry)
		admin.DELETE("/:kind", h.DeleteCacheEntry)
	}
}

// corsMiddleware returns the CORS chain for the configured allowlist.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     corsMethods,
				AllowHeaders:     corsHeaders,
				ExposeHeaders:    corsExpose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		// Echo ACAO with the request Origin when it is in the allowlist.
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// health reports liveness and whether the cache database answers a ping.
func health(store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "cache": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": "ok"})
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
