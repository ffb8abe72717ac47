// Package web provides HTTP handlers and REST API endpoints for notification management.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/dukex/notimaster/pkg/registry"
	"github.com/dukex/notimaster/pkg/services"
	"github.com/dukex/notimaster/pkg/triggers"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Dependencies holds the collaborators of the API handlers.
type Dependencies struct {
	Notifications  *services.Notification
	Settings       *services.Settings
	Logs           *services.Logs
	Subscriptions  *services.Subscriptions
	Catalog        *triggers.Catalog
	Triggers       *triggers.Service
	Registry       *registry.Registry
	Validator      *validator.Validate
	VAPIDPublicKey string
}

type APIHandlers struct {
	deps Dependencies
}

func NewAPIHandlers(deps Dependencies) *APIHandlers {
	if deps.Validator == nil {
		deps.Validator = validator.New(validator.WithRequiredStructEnabled())
	}

	return &APIHandlers{deps: deps}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.deps.Registry.HealthCheck()
	repositoryCheck, repOk := h.deps.Notifications.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Notimaster API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Notimaster API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetNotifications(c fiber.Ctx) error {
	req := services.ListNotificationsRequest{TriggerID: c.Query("trigger_id")}

	if enabledStr := c.Query("enabled"); enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return badRequest(c, "Invalid query parameters: "+err.Error())
		}

		req.Enabled = &enabled
	}

	notifications, err := h.deps.Notifications.List(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total_count":   len(notifications),
	})
}

func (h *APIHandlers) GetNotification(c fiber.Ctx) error {
	notification, err := h.deps.Notifications.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(notification)
}

func (h *APIHandlers) CreateNotification(c fiber.Ctx) error {
	var req CreateNotificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.deps.Validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	notification := &models.Notification{
		Title:       req.Title,
		TriggerID:   req.TriggerID,
		Enabled:     req.Enabled == nil || *req.Enabled,
		Connections: req.Connections,
	}

	created, err := h.deps.Notifications.Create(c.Context(), notification)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateNotification(c fiber.Ctx) error {
	var req UpdateNotificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.deps.Validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.deps.Notifications.Update(c.Context(), c.Params("id"), services.UpdateNotificationRequest{
		Title:       req.Title,
		TriggerID:   req.TriggerID,
		Enabled:     req.Enabled,
		Connections: req.Connections,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteNotification(c fiber.Ctx) error {
	err := h.deps.Notifications.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) EnableNotification(c fiber.Ctx) error {
	return h.setEnabled(c, true)
}

func (h *APIHandlers) DisableNotification(c fiber.Ctx) error {
	return h.setEnabled(c, false)
}

func (h *APIHandlers) setEnabled(c fiber.Ctx, enabled bool) error {
	notification, err := h.deps.Notifications.SetEnabled(c.Context(), c.Params("id"), enabled)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(notification)
}

func (h *APIHandlers) GetTriggers(c fiber.Ctx) error {
	definitions := h.deps.Catalog.All()

	out := make([]TriggerResponse, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, h.triggerResponse(d))
	}

	return c.JSON(fiber.Map{"triggers": out})
}

func (h *APIHandlers) GetTrigger(c fiber.Ctx) error {
	definition, ok := h.deps.Catalog.Get(c.Params("id"))
	if !ok {
		return notFound(c, "Trigger not found")
	}

	return c.JSON(h.triggerResponse(definition))
}

func (h *APIHandlers) triggerResponse(d triggers.Definition) TriggerResponse {
	tags := h.deps.Catalog.Tags(d.ID)

	entries := make([]MergeTagEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, MergeTagEntry{Tag: tag.Tag, Description: tag.Description})
	}

	return TriggerResponse{
		ID:          d.ID,
		Name:        d.Name,
		Group:       d.Group,
		Description: d.Description,
		MergeTags:   entries,
	}
}

// FireTrigger fires a trigger with the request body as its context.
func (h *APIHandlers) FireTrigger(c fiber.Ctx) error {
	triggerID := c.Params("id")

	data := models.TriggerContext{}

	if body := c.Body(); len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			return badRequest(c, "Trigger data must be a JSON object")
		}
	}

	dispatched, err := h.deps.Triggers.Fire(c.Context(), triggerID, data)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(FireTriggerResponse{TriggerID: triggerID, Dispatched: dispatched})
}

func (h *APIHandlers) GetIntegrations(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"integrations": h.deps.Registry.Integrations()})
}

func (h *APIHandlers) GetSettings(c fiber.Ctx) error {
	settings, err := h.deps.Settings.Get(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(settings)
}

func (h *APIHandlers) UpdateSettings(c fiber.Ctx) error {
	var settings models.Settings
	if err := c.Bind().JSON(&settings); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.deps.Settings.Update(c.Context(), settings)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) GetLogs(c fiber.Ctx) error {
	opts := persistence.ListLogsOptions{NotificationID: c.Query("notification_id")}

	for name, target := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}

		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "Invalid query parameters: "+name+" must be a number")
		}

		*target = n
	}

	opts = opts.Normalize()

	result, err := h.deps.Logs.List(c.Context(), opts)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries":     result.Entries,
		"total_count": result.TotalCount,
		"pagination": fiber.Map{
			"limit":  opts.Limit,
			"offset": opts.Offset,
		},
	})
}

func (h *APIHandlers) ClearLogs(c fiber.Ctx) error {
	err := h.deps.Logs.Clear(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Subscribe(c fiber.Ctx) error {
	var req SubscribeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.deps.Validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	subscription, err := h.deps.Subscriptions.Subscribe(c.Context(), &models.PushSubscription{
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(subscription)
}

func (h *APIHandlers) Unsubscribe(c fiber.Ctx) error {
	var req UnsubscribeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.deps.Validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.deps.Subscriptions.Unsubscribe(c.Context(), req.Endpoint)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetVAPIDPublicKey(c fiber.Ctx) error {
	if h.deps.VAPIDPublicKey == "" {
		return notFound(c, "Web push is not configured")
	}

	return c.JSON(VAPIDKeyResponse{PublicKey: h.deps.VAPIDPublicKey})
}
