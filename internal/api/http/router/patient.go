package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
)

func (r *Router) registerPatientRoutes(
	api fiber.Router,
	ph *handler.PatientHandler,
	nh *handler.NotificationHandler,
	prh *handler.PrescriptionHandler,
	authRequired fiber.Handler,
) {
	patients := api.Group("/patients", authRequired)

	// Patient CRUD
	patients.Get("/", ph.List)
	patients.Post("/", ph.Create)
	patients.Get("/search", ph.SearchByPhone)

	// Legacy ad-hoc notification send carried on the patients surface.
	patients.Patch("/", nh.NotifyPatient)

	p := patients.Group("/:id")
	p.Get("/", ph.Get)
	p.Put("/", ph.Update)

	// Follow-ups
	p.Get("/notifications", nh.ListForPatient)
	p.Post("/notifications", nh.CreateForPatient)
	p.Post("/notifications/batch", nh.CreateBatchForPatient)

	// Prescriptions
	p.Get("/prescriptions", prh.ListForPatient)
	p.Post("/prescriptions/upload", prh.Upload)
	p.Get("/prescriptions/uploads", prh.ListUploads)
}
