package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	"github.com/clinicpulse/clinicpulse_backend/pkg/s3"
)

// MaxUploadBytes caps attached prescription files.
const MaxUploadBytes = 10 << 20

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID uuid.UUID
	Diagnosis string
	// Medicines accepts any historical shape; it is normalized once here.
	Medicines     json.RawMessage
	VisitDate     *time.Time
	NextVisitDate *time.Time
	Notes         string
}

type ListRequest struct {
	Page      int
	PerPage   int
	PatientID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type PaginatedResult struct {
	Data       []model.Prescription
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

type UploadRequest struct {
	PatientID   uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	UploadedBy  uuid.UUID
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*model.Prescription, error)
	GetByID(ctx context.Context, clinicID, prescriptionID uuid.UUID) (*model.Prescription, error)
	List(ctx context.Context, clinicID uuid.UUID, req ListRequest) (*PaginatedResult, error)
	Delete(ctx context.Context, clinicID, prescriptionID uuid.UUID) error

	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]model.Prescription, error)

	// Upload stores the file in object storage under
	// prescriptions/{clinic_id}/{uuid}{ext} and records its metadata.
	Upload(ctx context.Context, clinicID uuid.UUID, req UploadRequest) (*model.UploadedPrescription, error)
	ListUploads(ctx context.Context, clinicID, patientID uuid.UUID) ([]model.UploadedPrescription, error)
	DownloadURL(ctx context.Context, clinicID, uploadID uuid.UUID) (string, error)
	DeleteUpload(ctx context.Context, clinicID, uploadID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type prescriptionService struct {
	db      *gorm.DB
	storage *s3.Client
	logger  *slog.Logger
}

// New creates the prescription service. storage may be nil when object
// storage is not configured; upload operations then fail cleanly.
func New(db *gorm.DB, storage *s3.Client, logger *slog.Logger) Service {
	return &prescriptionService{db: db, storage: storage, logger: logger}
}

func (s *prescriptionService) Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*model.Prescription, error) {
	meds, err := model.ParseMedicines(req.Medicines)
	if err != nil {
		return nil, ErrInvalidMedicines
	}
	col, err := model.MedicinesJSON(meds)
	if err != nil {
		return nil, fmt.Errorf("encode medicines: %w", err)
	}

	var patientCount int64
	if err := s.db.WithContext(ctx).Model(&model.Patient{}).
		Where("id = ? AND clinic_id = ?", req.PatientID, clinicID).
		Count(&patientCount).Error; err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	}
	if patientCount == 0 {
		return nil, ErrPatientNotFound
	}

	p := model.Prescription{
		ClinicID:      clinicID,
		PatientID:     req.PatientID,
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		Medicines:     col,
		VisitDate:     req.VisitDate,
		NextVisitDate: req.NextVisitDate,
		Notes:         req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	return &p, nil
}

func (s *prescriptionService) GetByID(ctx context.Context, clinicID, prescriptionID uuid.UUID) (*model.Prescription, error) {
	var p model.Prescription
	err := s.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", prescriptionID, clinicID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	return &p, nil
}

func (s *prescriptionService) List(ctx context.Context, clinicID uuid.UUID, req ListRequest) (*PaginatedResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	offset := (req.Page - 1) * req.PerPage

	q := s.db.WithContext(ctx).Model(&model.Prescription{}).Where("clinic_id = ?", clinicID)
	if req.PatientID != nil {
		q = q.Where("patient_id = ?", *req.PatientID)
	}
	if req.From != nil {
		q = q.Where("created_at >= ?", *req.From)
	}
	if req.To != nil {
		q = q.Where("created_at <= ?", *req.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count prescriptions: %w", err)
	}

	var prescriptions []model.Prescription
	err := q.Order("created_at DESC").Offset(offset).Limit(req.PerPage).Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}

	totalPages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return &PaginatedResult{
		Data:       prescriptions,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *prescriptionService) Delete(ctx context.Context, clinicID, prescriptionID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", prescriptionID, clinicID).
		Delete(&model.Prescription{})
	if res.Error != nil {
		return fmt.Errorf("delete prescription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPrescriptionNotFound
	}
	return nil
}

func (s *prescriptionService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]model.Prescription, error) {
	var prescriptions []model.Prescription
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("list patient prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (s *prescriptionService) Upload(ctx context.Context, clinicID uuid.UUID, req UploadRequest) (*model.UploadedPrescription, error) {
	if req.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if req.Size > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if s.storage == nil {
		return nil, fmt.Errorf("object storage not configured")
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	key := fmt.Sprintf("prescriptions/%s/%s%s", clinicID, uuid.New(), ext)

	if err := s.storage.Upload(ctx, key, req.ContentType, req.Body, req.Size); err != nil {
		return nil, fmt.Errorf("store prescription file: %w", err)
	}

	u := model.UploadedPrescription{
		ClinicID:    clinicID,
		PatientID:   req.PatientID,
		FileName:    req.FileName,
		ObjectKey:   key,
		ContentType: req.ContentType,
		SizeBytes:   req.Size,
		UploadedBy:  req.UploadedBy,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		// Orphaned object; best-effort cleanup.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("cleanup of orphaned upload failed", "key", key, "err", delErr)
		}
		return nil, fmt.Errorf("record uploaded prescription: %w", err)
	}
	return &u, nil
}

func (s *prescriptionService) ListUploads(ctx context.Context, clinicID, patientID uuid.UUID) ([]model.UploadedPrescription, error) {
	var uploads []model.UploadedPrescription
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ?", clinicID, patientID).
		Order("created_at DESC").
		Find(&uploads).Error
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

func (s *prescriptionService) DownloadURL(ctx context.Context, clinicID, uploadID uuid.UUID) (string, error) {
	u, err := s.getUpload(ctx, clinicID, uploadID)
	if err != nil {
		return "", err
	}
	if s.storage == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	return s.storage.PresignDownload(ctx, u.ObjectKey)
}

func (s *prescriptionService) DeleteUpload(ctx context.Context, clinicID, uploadID uuid.UUID) error {
	u, err := s.getUpload(ctx, clinicID, uploadID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(u).Error; err != nil {
		return fmt.Errorf("delete upload record: %w", err)
	}

	// Best-effort object removal; the record is already gone.
	if s.storage != nil {
		if err := s.storage.Delete(ctx, u.ObjectKey); err != nil {
			s.logger.Warn("delete upload object failed", "key", u.ObjectKey, "err", err)
		}
	}
	return nil
}

func (s *prescriptionService) getUpload(ctx context.Context, clinicID, uploadID uuid.UUID) (*model.UploadedPrescription, error) {
	var u model.UploadedPrescription
	err := s.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", uploadID, clinicID).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return &u, nil
}
