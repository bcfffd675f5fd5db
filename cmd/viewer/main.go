package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dandedj/csp-client/internal/adapters/geojson"
	"github.com/dandedj/csp-client/internal/adapters/http"
	"github.com/dandedj/csp-client/internal/adapters/plaqueapi"
	"github.com/dandedj/csp-client/internal/adapters/valkey"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/core/usecases"
	"github.com/dandedj/csp-client/internal/pkg/config"
	"github.com/dandedj/csp-client/internal/pkg/logging"
	"github.com/dandedj/csp-client/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("csp-viewer")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Optional detail cache
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, detail cache disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Upstream catalog client
	source := plaqueapi.NewClient(cfg.API, logging.Component("plaqueapi"))

	// Park boundary (degrades to a no-op fit command when missing)
	boundary := geojson.Load(cfg.Map.BoundaryPath, logging.Component("boundary"))

	// Use cases
	policy := usecases.DefaultDensityPolicy()
	detail := usecases.NewDetailService(source, cacheService(cache), logging.Component("detail"))

	deps := &http.Dependencies{
		Source:   source,
		Detail:   detail,
		Boundary: boundary,
		Policy:   policy,
		Cache:    cache,
		Cfg:      cfg,
		Log:      slog.Default(),
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Plaque Map Gateway",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("viewer gateway starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// cacheService keeps a nil *valkey.Cache from becoming a non-nil
// interface value.
func cacheService(c *valkey.Cache) ports.CacheService {
	if c == nil {
		return nil
	}
	return c
}
