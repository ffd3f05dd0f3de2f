package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Parzival048/natekarfront/internal/config"
	"github.com/Parzival048/natekarfront/internal/handler"
	"github.com/Parzival048/natekarfront/internal/middleware"
	"github.com/Parzival048/natekarfront/internal/proxy"
	"github.com/Parzival048/natekarfront/internal/routegate"
	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/internal/upstream"
	"github.com/Parzival048/natekarfront/pkg/logger"
	pkgredis "github.com/Parzival048/natekarfront/pkg/redis"
	"github.com/Parzival048/natekarfront/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting front desk...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		log.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		log.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// The front desk keeps no database of its own; all facility data lives
	// behind the operations API. Redis is optional, for rate limiting and
	// profile caching.
	var redis *pkgredis.Client
	if cfg.Redis.Enabled {
		redis, err = pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: 2 * time.Second,
		})
		if err != nil {
			log.Warn("Redis connection failed, running without cache and distributed rate limiting")
			redis = nil
		} else {
			defer redis.Close()
			log.Info("Redis connected")
		}
	}

	// Remote operations API client
	client, err := upstream.New(upstream.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		Timeout:       cfg.Upstream.Timeout,
		ExportTimeout: cfg.Upstream.ExportTimeout,
	})
	if err != nil {
		log.Fatal(fmt.Sprintf("Invalid upstream configuration: %v", err))
	}

	// Session wiring: cookie store, optional Redis profile cache, resolver
	store := session.NewCookieStore(cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure, cfg.Session.Domain)
	var cache session.ProfileCache = session.NoopCache{}
	if redis != nil {
		cache = session.NewRedisProfileCache(redis, cfg.Session.CacheTTL)
	}
	resolver := session.NewResolver(store, client, cache, cfg.Session.JWTSecret)
	gate := routegate.NewGate(resolver)

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS())

	if cfg.RateLimit.Enabled {
		rateLimitConfig := middleware.DefaultRateLimitConfig()
		rateLimitConfig.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rateLimitConfig.BurstSize = cfg.RateLimit.BurstSize
		if redis != nil {
			rateLimitConfig.UseRedis = true
			rateLimitConfig.RedisClient = redis
			log.Info("Rate limiting enabled (Redis-backed, distributed)")
		} else {
			log.Info("Rate limiting enabled (local, non-distributed)")
		}
		router.Use(middleware.RateLimiter(rateLimitConfig))
	}

	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/static", "./web/static")

	// Health checks
	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Page shells behind the authorization gate
	pageHandler := handler.NewPageHandler(cfg.App.Name)
	pages := router.Group("/", gate.Pages())
	{
		// The gate always redirects "/" (to the login page or the caller's
		// role home), so this handler body never runs.
		pages.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, routegate.LoginPath)
		})
		pages.GET(routegate.LoginPath, pageHandler.Login)
		pages.GET(routegate.RegisterPath, pageHandler.Register)
		pages.GET("/customer", pageHandler.Customer)
		pages.GET("/supervisor", pageHandler.Supervisor)
		pages.GET("/admin", pageHandler.Admin)
	}

	// Session mutators
	authHandler := handler.NewAuthHandler(client, store, cache, log)
	router.POST(routegate.LoginPath, authHandler.Login)
	router.POST(routegate.RegisterPath, authHandler.Register)
	router.POST("/logout", authHandler.Logout)

	// Feature API: explicit export download, everything else proxied
	exportHandler := handler.NewExportHandler(client, log)
	api := router.Group("/api", gate.Authenticate())
	{
		api.GET("/attendance/export", exportHandler.Attendance)
	}

	passthrough := proxy.New(proxy.Config{
		Upstream:       client.BaseURL(),
		StripPrefix:    "/api",
		Routes:         proxy.DefaultRoutes(),
		DefaultTimeout: cfg.Upstream.Timeout,
	})
	passthroughHandler := passthrough.Handler()
	router.NoRoute(gate.Authenticate(), func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			passthroughHandler(c)
			return
		}
		c.Redirect(http.StatusFound, routegate.RootPath)
	})

	log.Info(fmt.Sprintf("Proxy configured: upstream=%s", cfg.Upstream.BaseURL))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info(fmt.Sprintf("Front desk listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("Server exited gracefully")
}
