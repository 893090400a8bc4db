package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerPrescriptionRoutes(api fiber.Router, h *handler.PrescriptionHandler, authRequired fiber.Handler) {
	group := api.Group("/prescriptions", authRequired)

	group.Get("/", h.List)
	group.Post("/", h.Create)

	group.Get("/uploads/:id/download", h.DownloadURL)
	group.Delete("/uploads/:id", h.DeleteUpload)

	group.Get("/:id", h.Get)
	group.Delete("/:id", h.Delete)
}
