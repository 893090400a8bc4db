package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerSettingsRoutes(api fiber.Router, h *handler.SettingsHandler, authRequired fiber.Handler) {
	// Public branding lookup for the mobile app.
	api.Get("/clinic/default", h.DefaultBranding)

	settings := api.Group("/settings", authRequired)
	settings.Get("/clinic", h.GetClinic)
	settings.Put("/clinic", h.UpdateClinic)
	settings.Patch("/clinic", h.UpdateClinic)

	// Legacy path kept for older dashboard builds.
	settings.All("/", h.RedirectToClinic)
}
