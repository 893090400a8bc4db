package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerReportRoutes(api fiber.Router, h *handler.ReportHandler, authRequired fiber.Handler) {
	api.Get("/reports", authRequired, h.Generate)
}
