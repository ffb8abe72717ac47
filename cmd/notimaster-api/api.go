// Package main provides the Notimaster API server.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/services"
	"github.com/dukex/notimaster/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	app      *cmd.App
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, app *cmd.App) *API {
	return &API{
		logger:   logger,
		app:      app,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	p := a.app.Persistence

	handlers := web.NewAPIHandlers(web.Dependencies{
		Notifications:  services.NewNotification(p, a.app.Catalog, a.app.Registry),
		Settings:       services.NewSettings(p),
		Logs:           services.NewLogs(p, a.logger),
		Subscriptions:  services.NewSubscriptions(p),
		Catalog:        a.app.Catalog,
		Triggers:       a.app.Triggers,
		Registry:       a.app.Registry,
		Validator:      a.validate,
		VAPIDPublicKey: a.app.Config.VAPID.PublicKey,
	})

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	web.RegisterMetrics(app, a.app.Metrics)

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Notimaster API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

// Start serves until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		if err := app.Shutdown(); err != nil {
			a.logger.Error("Failed to shut down API", "error", err)
		}
	}()

	a.logger.InfoContext(ctx, "Notimaster API listening", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
