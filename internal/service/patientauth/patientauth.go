// Package patientauth implements the mobile-app OTP login flow. Codes are
// random, stored hashed in Redis with a short TTL, and never persisted to
// the database.
package patientauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patient"
	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
	"github.com/clinicpulse/clinicpulse_backend/pkg/sms"
	"github.com/clinicpulse/clinicpulse_backend/pkg/util/otp"
	"github.com/clinicpulse/clinicpulse_backend/pkg/util/phone"
)

func redisKeyOTP(suffix string) string         { return "otp:patient:" + suffix }
func redisKeyOTPAttempts(suffix string) string { return "otp:patient:attempts:" + suffix }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	PatientID    uuid.UUID
	ClinicID     uuid.UUID
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// RequestOTP issues a code for a registered patient mobile and delivers
	// it over SMS.
	RequestOTP(ctx context.Context, mobile string) error

	// VerifyOTP checks the code, marks the patient's app installation
	// active, and issues tokens. In the development environment any
	// well-formed code of the configured length is accepted.
	VerifyOTP(ctx context.Context, mobile, code string) (*AuthTokens, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientAuthService struct {
	db       *gorm.DB
	rdb      *goredis.Client
	patients patient.Service
	smsCli   *sms.Client
	paseto   *pasetotoken.Manager
	cfg      *config.Config
	otpCfg   otp.Config
	logger   *slog.Logger
}

func New(
	db *gorm.DB,
	rdb *goredis.Client,
	patients patient.Service,
	smsCli *sms.Client,
	mgr *pasetotoken.Manager,
	cfg *config.Config,
	logger *slog.Logger,
) Service {
	return &patientAuthService{
		db:       db,
		rdb:      rdb,
		patients: patients,
		smsCli:   smsCli,
		paseto:   mgr,
		cfg:      cfg,
		otpCfg:   otp.FromCentralConfig(cfg.OTP),
		logger:   logger,
	}
}

func (s *patientAuthService) otpTTL() time.Duration {
	ttl := time.Duration(s.cfg.Authentication.OTPTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return ttl
}

func (s *patientAuthService) RequestOTP(ctx context.Context, mobile string) error {
	suffix := phone.Suffix(mobile)
	if suffix == "" {
		return ErrInvalidMobile
	}

	p, err := s.patients.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return ErrPatientNotFound
		}
		return err
	}

	code, err := otp.Generate(s.otpCfg.DefaultLength)
	if err != nil {
		return fmt.Errorf("generate OTP: %w", err)
	}

	ttl := s.otpTTL()
	if err := s.rdb.Set(ctx, redisKeyOTP(suffix), otp.Hash(code), ttl).Err(); err != nil {
		return fmt.Errorf("store OTP: %w", err)
	}
	s.rdb.Del(ctx, redisKeyOTPAttempts(suffix))

	if !s.smsCli.IsEnabled() {
		// Development convenience: surface the code in logs since nothing
		// will deliver it.
		s.logger.Info("sms disabled, otp not delivered",
			"patient_id", p.ID, "code", code)
		return nil
	}

	if err := s.smsCli.SendOTP(ctx, p.Mobile, s.cfg.SMS.SMSIR.TemplateID, code); err != nil {
		return fmt.Errorf("send OTP: %w", err)
	}
	return nil
}

func (s *patientAuthService) VerifyOTP(ctx context.Context, mobile, code string) (*AuthTokens, error) {
	suffix := phone.Suffix(mobile)
	if suffix == "" {
		return nil, ErrInvalidMobile
	}

	p, err := s.patients.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	if s.cfg.IsDevelopment() {
		if !otp.IsWellFormed(code, s.otpCfg.DefaultLength) {
			return nil, ErrOTPInvalid
		}
	} else {
		otpHash, err := s.rdb.Get(ctx, redisKeyOTP(suffix)).Result()
		if err == goredis.Nil {
			return nil, ErrOTPExpired
		} else if err != nil {
			return nil, fmt.Errorf("redis get otp: %w", err)
		}

		attempts, _ := s.rdb.Get(ctx, redisKeyOTPAttempts(suffix)).Int()
		if attempts >= s.otpCfg.MaxAttempts {
			return nil, ErrOTPMaxAttempts
		}

		if err := otp.Verify(otpHash, code); err != nil {
			s.rdb.Incr(ctx, redisKeyOTPAttempts(suffix))
			return nil, ErrOTPInvalid
		}

		s.rdb.Del(ctx, redisKeyOTP(suffix), redisKeyOTPAttempts(suffix))
	}

	if err := s.activateInstallation(ctx, p); err != nil {
		return nil, err
	}

	sub := pasetotoken.Subject{
		ID:       p.ID,
		ClinicID: p.ClinicID,
		Scope:    pasetotoken.ScopePatient,
	}

	accessToken, err := s.paseto.IssueAccess(sub)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.paseto.IssueRefresh(sub)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
		PatientID:    p.ID,
		ClinicID:     p.ClinicID,
	}, nil
}

// activateInstallation upserts the patient's app installation record. A
// verified OTP login is what makes a patient push-eligible.
func (s *patientAuthService) activateInstallation(ctx context.Context, p *model.Patient) error {
	now := time.Now()

	var install model.AppInstallation
	err := s.db.WithContext(ctx).Where("patient_id = ?", p.ID).First(&install).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		install = model.AppInstallation{
			ClinicID:    p.ClinicID,
			PatientID:   p.ID,
			Active:      true,
			LastLoginAt: &now,
		}
		if err := s.db.WithContext(ctx).Create(&install).Error; err != nil {
			return fmt.Errorf("create app installation: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get app installation: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&install).Updates(map[string]any{
		"active":        true,
		"last_login_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("activate app installation: %w", err)
	}
	return nil
}
