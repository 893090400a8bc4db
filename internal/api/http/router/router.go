package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/handler"
	"github.com/clinicpulse/clinicpulse_backend/internal/api/http/middleware"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/auth"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/clinic"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/notification"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patient"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patientauth"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/prescription"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/report"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/review"
	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	AuthSvc         auth.Service
	ClinicSvc       clinic.Service
	PatientSvc      patient.Service
	PatientAuthSvc  patientauth.Service
	NotificationSvc notification.Service
	ReviewSvc       review.Service
	PrescriptionSvc prescription.Service
	ReportSvc       report.Service
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)
	patientAuth := middleware.PatientAuthRequired(r.p.PasetoMgr)
	otpLimiter := middleware.NewOTPLimiter(r.p.Redis)

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	reviewH := handler.NewReviewHandler(r.p.ReviewSvc)
	prescriptionH := handler.NewPrescriptionHandler(r.p.PrescriptionSvc)
	reportH := handler.NewReportHandler(r.p.ReportSvc)
	settingsH := handler.NewSettingsHandler(r.p.ClinicSvc)
	patientAppH := handler.NewPatientAppHandler(
		r.p.PatientAuthSvc, r.p.PatientSvc, r.p.NotificationSvc, r.p.PrescriptionSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerPatientRoutes(api, patientH, notificationH, prescriptionH, authRequired)
	r.registerNotificationRoutes(api, notificationH, authRequired)
	r.registerReviewRoutes(api, reviewH, authRequired)
	r.registerPrescriptionRoutes(api, prescriptionH, authRequired)
	r.registerReportRoutes(api, reportH, authRequired)
	r.registerSettingsRoutes(api, settingsH, authRequired)
	r.registerPatientAppRoutes(api, patientAppH, patientAuth, otpLimiter)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
