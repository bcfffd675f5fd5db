package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses by
// endpoint, unless the handler already set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}
		if existing := c.GetRespHeader("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case path == "/v1/boundary":
			ttl = "public, max-age=86400" // Park outline changes about never

		case strings.HasPrefix(path, "/v1/plaques/search"):
			ttl = "public, max-age=120" // Search results churn with the catalog

		case strings.HasPrefix(path, "/v1/plaques/"):
			ttl = "public, max-age=600" // Single plaque, matches the detail cache TTL

		case strings.HasPrefix(path, "/v1/markers"):
			ttl = "public, max-age=60" // Viewport render lists

		case strings.HasPrefix(path, "/v1/photos/"):
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}
		return err
	}
}
