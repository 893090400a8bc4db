package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UpdateRequest struct {
	Name           *string
	DoctorName     *string
	Email          *string
	Phone          *string
	Address        *string
	LogoURL        *string
	PrimaryColor   *string
	SecondaryColor *string
	// Settings replaces the whole settings blob when non-nil.
	Settings json.RawMessage
}

// Branding is the public subset served without authentication.
type Branding struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	DoctorName     string    `json:"doctor_name"`
	LogoURL        string    `json:"logo_url"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error)
	Update(ctx context.Context, clinicID uuid.UUID, req UpdateRequest) (*model.Clinic, error)

	// DefaultBranding serves the public branding lookup.
	DefaultBranding(ctx context.Context) (*Branding, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type clinicService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &clinicService{db: db}
}

func (s *clinicService) Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error) {
	var c model.Clinic
	err := s.db.WithContext(ctx).Where("id = ?", clinicID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("get clinic: %w", err)
	}
	return &c, nil
}

func (s *clinicService) Update(ctx context.Context, clinicID uuid.UUID, req UpdateRequest) (*model.Clinic, error) {
	c, err := s.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.DoctorName != nil {
		updates["doctor_name"] = strings.TrimSpace(*req.DoctorName)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.PrimaryColor != nil {
		updates["primary_color"] = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		updates["secondary_color"] = *req.SecondaryColor
	}
	if req.Settings != nil {
		if !json.Valid(req.Settings) {
			return nil, fmt.Errorf("settings blob is not valid JSON")
		}
		updates["settings"] = datatypes.JSON(req.Settings)
	}

	if len(updates) == 0 {
		return c, nil
	}

	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update clinic: %w", err)
	}
	return c, nil
}

func (s *clinicService) DefaultBranding(ctx context.Context) (*Branding, error) {
	var c model.Clinic
	err := s.db.WithContext(ctx).Where("is_default = ?", true).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDefaultClinic
		}
		return nil, fmt.Errorf("get default clinic: %w", err)
	}

	return &Branding{
		ID:             c.ID,
		Name:           c.Name,
		DoctorName:     c.DoctorName,
		LogoURL:        c.LogoURL,
		PrimaryColor:   c.PrimaryColor,
		SecondaryColor: c.SecondaryColor,
	}, nil
}
