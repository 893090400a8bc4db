package app

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/auth"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/clinic"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/notification"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patient"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patientauth"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/prescription"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/report"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/review"
	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
	s3pkg "github.com/clinicpulse/clinicpulse_backend/pkg/s3"
	"github.com/clinicpulse/clinicpulse_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideAuthService,
		ProvideClinicService,
		ProvidePatientService,
		ProvidePatientAuthService,
		ProvideNotificationService,
		ProvideReviewService,
		ProvidePrescriptionService,
		ProvideReportService,
	),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideAuthService(db *gorm.DB, rdb *redis.Client, mgr *pasetotoken.Manager, cfg *config.Config) auth.Service {
	return auth.New(db, rdb, mgr, cfg)
}

func ProvideClinicService(db *gorm.DB) clinic.Service {
	return clinic.New(db)
}

func ProvidePatientService(db *gorm.DB) patient.Service {
	return patient.New(db)
}

func ProvidePatientAuthService(
	db *gorm.DB,
	rdb *redis.Client,
	patients patient.Service,
	smsCli *sms.Client,
	mgr *pasetotoken.Manager,
	cfg *config.Config,
	logger *slog.Logger,
) patientauth.Service {
	return patientauth.New(db, rdb, patients, smsCli, mgr, cfg, logger)
}

func ProvideNotificationService(db *gorm.DB, nc *nats.Conn, logger *slog.Logger) notification.Service {
	return notification.New(db, nc, logger)
}

func ProvideReviewService(db *gorm.DB, nc *nats.Conn, logger *slog.Logger, cfg *config.Config) review.Service {
	window := time.Duration(cfg.Reviews.DedupWindowDays) * 24 * time.Hour
	return review.New(db, nc, logger, window)
}

func ProvidePrescriptionService(db *gorm.DB, storage *s3pkg.Client, logger *slog.Logger) prescription.Service {
	return prescription.New(db, storage, logger)
}

func ProvideReportService(db *gorm.DB) report.Service {
	return report.New(db)
}
