package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerReviewRoutes(api fiber.Router, h *handler.ReviewHandler, authRequired fiber.Handler) {
	group := api.Group("/reviews", authRequired)

	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Post("/bulk", h.CreateBulk)
	group.Get("/stats", h.Stats)

	group.Get("/:id", h.Get)
	group.Put("/:id/sent", h.MarkSent)
	group.Put("/:id/complete", h.Complete)
}
