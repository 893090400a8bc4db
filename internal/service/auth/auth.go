// Package auth handles dashboard staff sessions. Tokens are PASETO, session
// state lives in Redis so a logout invalidates refresh immediately.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
	"github.com/clinicpulse/clinicpulse_backend/pkg/util/password"
)

func redisKeySession(sessionID string) string { return "session:staff:" + sessionID }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string
	Password string
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
	StaffID      uuid.UUID
	ClinicID     uuid.UUID
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	db     *gorm.DB
	rdb    *goredis.Client
	paseto *pasetotoken.Manager
	cfg    *config.Config
}

func New(db *gorm.DB, rdb *goredis.Client, mgr *pasetotoken.Manager, cfg *config.Config) Service {
	return &authService{db: db, rdb: rdb, paseto: mgr, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var staff model.Staff
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn time so a missing account is indistinguishable from a
			// wrong password.
			_ = password.Verify("$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup staff: %w", err)
	}

	if err := password.Verify(staff.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&staff).Update("last_login_at", now).Error; err != nil {
		slog.Warn("update last login failed", "staff_id", staff.ID, "err", err)
	}

	return s.createSession(ctx, &staff)
}

func (s *authService) createSession(ctx context.Context, staff *model.Staff) (*AuthTokens, error) {
	sessionID := uuid.New()

	sessionTTL := time.Duration(s.cfg.Authentication.SessionTTLMinutes) * time.Minute
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}

	key := redisKeySession(sessionID.String())
	if err := s.rdb.Set(ctx, key, staff.ID.String(), sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	sub := pasetotoken.Subject{
		ID:        staff.ID,
		ClinicID:  staff.ClinicID,
		Scope:     pasetotoken.ScopeStaff,
		SessionID: &sessionID,
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
		StaffID:      staff.ID,
		ClinicID:     staff.ClinicID,
	}, nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.paseto.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != pasetotoken.TokenTypeRefresh || claims.Scope != pasetotoken.ScopeStaff {
		return nil, ErrInvalidToken
	}
	if claims.SessionID == nil {
		return nil, ErrInvalidToken
	}

	key := redisKeySession(claims.SessionID.String())
	if err := s.rdb.Get(ctx, key).Err(); err == goredis.Nil {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	// Sliding session: extend on refresh.
	sessionTTL := time.Duration(s.cfg.Authentication.SessionTTLMinutes) * time.Minute
	if sessionTTL > 0 {
		s.rdb.Expire(ctx, key, sessionTTL)
	}

	sub := pasetotoken.Subject{
		ID:        claims.SubjectID,
		ClinicID:  claims.ClinicID,
		Scope:     pasetotoken.ScopeStaff,
		SessionID: claims.SessionID,
	}

	accessToken, err := s.paseto.IssueAccess(sub)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
		StaffID:      claims.SubjectID,
		ClinicID:     claims.ClinicID,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.rdb.Del(ctx, redisKeySession(sessionID.String())).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		// Session already expired — not an error from the client's perspective
		slog.Debug("logout: session not found in Redis (already expired)", "session_id", sessionID)
	}
	return nil
}
