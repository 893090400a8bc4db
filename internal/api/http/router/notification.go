package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(api fiber.Router, h *handler.NotificationHandler, authRequired fiber.Handler) {
	group := api.Group("/notifications", authRequired)

	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Post("/batch", h.CreateBatch)
	group.Get("/templates", h.ListTemplates)

	group.Get("/:id", h.Get)
	group.Put("/:id/status", h.UpdateStatus)
	group.Delete("/:id", h.Delete)
}
