package web

import (
	"errors"

	"github.com/dukex/notimaster/pkg/services"
	"github.com/dukex/notimaster/pkg/triggers"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var serviceErr *services.ServiceError

	switch {
	case services.IsValidationError(err):
		problemType := "validation_error"
		if errors.As(err, &serviceErr) && serviceErr.Code != "" {
			problemType = serviceErr.Code
		}

		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType(problemType).
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, services.ErrNotificationNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("notification_not_found").
			WithDetail("notification not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.Is(err, services.ErrSubscriptionNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("subscription_not_found").
			WithDetail("subscription not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.Is(err, triggers.ErrUnknownTrigger):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("trigger_not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		return internalError(c, err)
	}
}
