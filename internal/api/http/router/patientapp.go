package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerPatientAppRoutes(
	api fiber.Router,
	h *handler.PatientAppHandler,
	patientAuth fiber.Handler,
	otpLimiter fiber.Handler,
) {
	// The mobile app is served from app webviews and needs CORS on every
	// response, independent of the global middleware set.
	group := api.Group("/patient", cors.New())

	authGroup := group.Group("/auth", otpLimiter)
	authGroup.Post("/request-otp", h.RequestOTP)
	authGroup.Post("/verify-otp", h.VerifyOTP)

	group.Get("/profile", patientAuth, h.Profile)
	group.Get("/reminders", patientAuth, h.Reminders)
	group.Get("/prescriptions", patientAuth, h.Prescriptions)
}
