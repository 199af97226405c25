// Package api assembles the fiber application: websocket upgrade, health and
// metrics endpoints, static client files and optional rate limiting.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MaicolCorrea/Chat-Realtime/internal/config"
	"github.com/MaicolCorrea/Chat-Realtime/internal/metrics"
	"github.com/MaicolCorrea/Chat-Realtime/internal/ws"
)

// NewServer wires the HTTP surface. rdb may be nil, in which case the
// upgrade route is not rate limited.
func NewServer(cfg *config.Config, wsh *ws.Handler, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
	})
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if rdb != nil {
		rl := NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.Redis.Limit, cfg.RateLimitWindow)
		app.Use("/ws", rl.MiddlewareByKey(func(c *fiber.Ctx) string { return c.IP() }))
	}
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsh.Handle()))

	if cfg.Server.StaticDir != "" {
		app.Static("/", cfg.Server.StaticDir)
	}

	return app
}
