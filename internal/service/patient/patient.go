package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	"github.com/clinicpulse/clinicpulse_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type PaginatedResult[T any] struct {
	Data       []T
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

type ListPatientsRequest struct {
	Page     int
	PerPage  int
	Search   string // matches name or mobile suffix
	OptedOut *bool
	Sort     string // created_at | visit_date
	Order    string // asc | desc
}

type CreatePatientRequest struct {
	Name          string
	Mobile        string
	Email         *string
	Gender        *string
	Age           *int
	BirthDate     *time.Time
	Address       *string
	VisitDate     *time.Time
	NextVisitDate *time.Time
}

type UpdatePatientRequest struct {
	Name          *string
	Email         *string
	Gender        *string
	Age           *int
	BirthDate     *time.Time
	Address       *string
	VisitDate     *time.Time
	NextVisitDate *time.Time
	OptedOut      *bool
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, clinicID uuid.UUID, req CreatePatientRequest) (*model.Patient, error)
	GetByID(ctx context.Context, clinicID, patientID uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, clinicID uuid.UUID, req ListPatientsRequest) (*PaginatedResult[model.Patient], error)
	Update(ctx context.Context, clinicID, patientID uuid.UUID, req UpdatePatientRequest) (*model.Patient, error)

	// SearchByPhone matches patients by the last ten digits of any phone
	// input shape. Clinic-scoped; there is no unauthenticated variant.
	SearchByPhone(ctx context.Context, clinicID uuid.UUID, rawPhone string) ([]model.Patient, error)

	// FindByMobile resolves a patient across clinics by suffix. Used by the
	// mobile-app OTP flow, which has no clinic context yet.
	FindByMobile(ctx context.Context, rawPhone string) (*model.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &patientService{db: db}
}

func (s *patientService) Create(ctx context.Context, clinicID uuid.UUID, req CreatePatientRequest) (*model.Patient, error) {
	suffix := phone.Suffix(req.Mobile)
	if suffix == "" {
		return nil, ErrInvalidMobile
	}

	// Duplicate detection on (clinic_id, mobile suffix).
	var existing model.Patient
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND mobile_suffix = ?", clinicID, suffix).
		First(&existing).Error
	if err == nil {
		return &existing, ErrPatientAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check patient: %w", err)
	}

	p := model.Patient{
		ClinicID:      clinicID,
		Name:          strings.TrimSpace(req.Name),
		Mobile:        strings.TrimSpace(req.Mobile),
		MobileSuffix:  suffix,
		Age:           req.Age,
		BirthDate:     req.BirthDate,
		VisitDate:     req.VisitDate,
		NextVisitDate: req.NextVisitDate,
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Address != nil {
		p.Address = *req.Address
	}

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &p, nil
}

func (s *patientService) GetByID(ctx context.Context, clinicID, patientID uuid.UUID) (*model.Patient, error) {
	var p model.Patient
	err := s.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", patientID, clinicID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (s *patientService) List(ctx context.Context, clinicID uuid.UUID, req ListPatientsRequest) (*PaginatedResult[model.Patient], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	offset := (req.Page - 1) * req.PerPage

	q := s.db.WithContext(ctx).Model(&model.Patient{}).Where("clinic_id = ?", clinicID)

	if search := strings.TrimSpace(req.Search); search != "" {
		suffix := phone.Suffix(search)
		if suffix != "" && suffix == phone.Digits(search) {
			q = q.Where("mobile_suffix LIKE ?", "%"+suffix)
		} else {
			q = q.Where("name ILIKE ?", "%"+search+"%")
		}
	}
	if req.OptedOut != nil {
		q = q.Where("opted_out = ?", *req.OptedOut)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}

	sortCol := "created_at"
	if req.Sort == "visit_date" {
		sortCol = "visit_date"
	}
	order := "DESC"
	if req.Order == "asc" {
		order = "ASC"
	}

	var patients []model.Patient
	err := q.Order(sortCol + " " + order).
		Offset(offset).
		Limit(req.PerPage).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	totalPages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return &PaginatedResult[model.Patient]{
		Data:       patients,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *patientService) Update(ctx context.Context, clinicID, patientID uuid.UUID, req UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.GetByID(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.BirthDate != nil {
		updates["birth_date"] = *req.BirthDate
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.VisitDate != nil {
		updates["visit_date"] = *req.VisitDate
	}
	if req.NextVisitDate != nil {
		updates["next_visit_date"] = *req.NextVisitDate
	}
	if req.OptedOut != nil {
		updates["opted_out"] = *req.OptedOut
	}

	if len(updates) == 0 {
		return p, nil
	}

	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *patientService) SearchByPhone(ctx context.Context, clinicID uuid.UUID, rawPhone string) ([]model.Patient, error) {
	suffix := phone.Suffix(rawPhone)
	if suffix == "" {
		return nil, ErrInvalidMobile
	}

	var patients []model.Patient
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND mobile_suffix = ?", clinicID, suffix).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("search patients by phone: %w", err)
	}
	return patients, nil
}

func (s *patientService) FindByMobile(ctx context.Context, rawPhone string) (*model.Patient, error) {
	suffix := phone.Suffix(rawPhone)
	if suffix == "" {
		return nil, ErrInvalidMobile
	}

	var p model.Patient
	err := s.db.WithContext(ctx).
		Where("mobile_suffix = ?", suffix).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("find patient by mobile: %w", err)
	}
	return &p, nil
}
