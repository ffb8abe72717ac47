package web

import (
	"time"

	"github.com/dukex/notimaster/pkg/metrics"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// RegisterRoutes mounts every API endpoint on router.
func RegisterRoutes(router fiber.Router, h *APIHandlers) {
	router.Get("/health", h.HealthCheck)

	n := router.Group("/notifications")
	n.Get("/", h.GetNotifications)
	n.Post("/", h.CreateNotification)
	n.Get("/:id", h.GetNotification)
	n.Patch("/:id", h.UpdateNotification)
	n.Delete("/:id", h.DeleteNotification)
	n.Post("/:id/enable", h.EnableNotification)
	n.Post("/:id/disable", h.DisableNotification)

	t := router.Group("/triggers")
	t.Get("/", h.GetTriggers)
	t.Get("/:id", h.GetTrigger)
	t.Post("/:id/fire", h.FireTrigger)

	router.Get("/integrations", h.GetIntegrations)

	router.Get("/settings", h.GetSettings)
	router.Put("/settings", h.UpdateSettings)

	router.Get("/logs", h.GetLogs)
	router.Delete("/logs", h.ClearLogs)

	p := router.Group("/push")
	p.Post("/subscriptions", h.Subscribe)
	p.Delete("/subscriptions", h.Unsubscribe)
	p.Get("/vapid-public-key", h.GetVAPIDPublicKey)
}

// RegisterMetrics exposes the collector on /metrics and records every request.
func RegisterMetrics(app *fiber.App, collector *metrics.Collector) {
	app.Use(func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		collector.ObserveRequest(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))

		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
}
