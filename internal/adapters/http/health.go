package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dandedj/csp-client/internal/core/domain"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler checks upstream catalog and cache connectivity. The
// boundary is reported but never fails readiness: the map works
// without it.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Upstream plaque catalog: an error here means every listing
		// and search will fail soft, which is degraded, not down. Still
		// reported so orchestration can see it.
		if _, err := deps.Detail.Get(ctx, "__readiness_probe__"); err != nil && !errors.Is(err, domain.ErrPlaqueNotFound) {
			checks["catalog"] = "error: " + err.Error()
			allOK = false
		} else {
			checks["catalog"] = "ok"
		}

		// Valkey cache
		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		// Boundary resource (informational)
		if _, ok := deps.Boundary.Envelope(); ok {
			checks["boundary"] = "ok"
		} else {
			checks["boundary"] = "not loaded"
		}

		status := "ready"
		code := 200
		if !allOK {
			status = "not ready"
			code = 503
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
