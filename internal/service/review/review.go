package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

// SubjectRequested is published after each review request insert. The review
// worker picks it up and sends the review link email.
const SubjectRequested = "clinicpulse.review.requested"

// DefaultDedupWindow is the rolling window in which at most one active
// review request may exist per patient.
const DefaultDedupWindow = 7 * 24 * time.Hour

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID uuid.UUID
	Platform  string
}

type Conflict struct {
	ReviewID    uuid.UUID
	Status      string
	RequestDate time.Time
}

type BulkResult struct {
	Eligible         []model.Review
	AlreadyRequested map[uuid.UUID]Conflict
}

type ListRequest struct {
	Page    int
	PerPage int
	Status  *string
	From    *time.Time
	To      *time.Time
}

type PaginatedResult struct {
	Data       []model.Review
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

type Stats struct {
	Total         int64
	ByStatus      map[string]int64
	Positive      int64
	Neutral       int64
	Negative      int64
	AverageRating float64
}

// RequestedEvent is the NATS payload for SubjectRequested.
type RequestedEvent struct {
	ReviewID  uuid.UUID `json:"review_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	PatientID uuid.UUID `json:"patient_id"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create inserts a review request unless the patient already has a
	// pending or sent request inside the dedup window. The conflicting
	// review is returned alongside ErrAlreadyRequested.
	Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*model.Review, *Conflict, error)

	// CreateBulk partitions patientIDs into eligible (request created) and
	// already-requested using the same window.
	CreateBulk(ctx context.Context, clinicID uuid.UUID, patientIDs []uuid.UUID, platform string) (*BulkResult, error)

	List(ctx context.Context, clinicID uuid.UUID, req ListRequest) (*PaginatedResult, error)
	GetByID(ctx context.Context, clinicID, reviewID uuid.UUID) (*model.Review, error)

	// MarkSent stamps the request as delivered to the patient.
	MarkSent(ctx context.Context, clinicID, reviewID uuid.UUID) (*model.Review, error)

	// Complete records the patient's response (received with rating, or
	// skipped/failed).
	Complete(ctx context.Context, clinicID, reviewID uuid.UUID, status string, rating *int, comment string) (*model.Review, error)

	Stats(ctx context.Context, clinicID uuid.UUID, from, to *time.Time) (*Stats, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type reviewService struct {
	db          *gorm.DB
	nc          *nats.Conn
	logger      *slog.Logger
	dedupWindow time.Duration
}

// New creates the review service. dedupWindow <= 0 falls back to the 7-day
// default. nc may be nil; publishes are then skipped.
func New(db *gorm.DB, nc *nats.Conn, logger *slog.Logger, dedupWindow time.Duration) Service {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &reviewService{db: db, nc: nc, logger: logger, dedupWindow: dedupWindow}
}

// activeConflict returns the newest pending/sent review for the patient
// inside the dedup window, or nil.
func (s *reviewService) activeConflict(ctx context.Context, tx *gorm.DB, clinicID, patientID uuid.UUID, now time.Time) (*Conflict, error) {
	cutoff := now.Add(-s.dedupWindow)

	var existing model.Review
	err := tx.WithContext(ctx).
		Where("clinic_id = ? AND patient_id = ? AND status IN ? AND request_date >= ?",
			clinicID, patientID,
			[]string{model.ReviewStatusPending, model.ReviewStatusSent},
			cutoff).
		Order("request_date DESC").
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("check active review: %w", err)
	}
	return &Conflict{
		ReviewID:    existing.ID,
		Status:      existing.Status,
		RequestDate: existing.RequestDate,
	}, nil
}

func (s *reviewService) Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*model.Review, *Conflict, error) {
	now := time.Now()

	conflict, err := s.activeConflict(ctx, s.db, clinicID, req.PatientID, now)
	if err != nil {
		return nil, nil, err
	}
	if conflict != nil {
		return nil, conflict, ErrAlreadyRequested
	}

	r := model.Review{
		ClinicID:    clinicID,
		PatientID:   req.PatientID,
		Status:      model.ReviewStatusPending,
		Platform:    req.Platform,
		RequestDate: now,
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, nil, fmt.Errorf("create review: %w", err)
	}

	s.publishRequested(&r)
	return &r, nil, nil
}

func (s *reviewService) CreateBulk(ctx context.Context, clinicID uuid.UUID, patientIDs []uuid.UUID, platform string) (*BulkResult, error) {
	now := time.Now()
	result := &BulkResult{
		AlreadyRequested: make(map[uuid.UUID]Conflict),
	}

	seen := make(map[uuid.UUID]bool, len(patientIDs))
	for _, pid := range patientIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true

		conflict, err := s.activeConflict(ctx, s.db, clinicID, pid, now)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			result.AlreadyRequested[pid] = *conflict
			continue
		}

		r := model.Review{
			ClinicID:    clinicID,
			PatientID:   pid,
			Status:      model.ReviewStatusPending,
			Platform:    platform,
			RequestDate: now,
		}
		if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
			return nil, fmt.Errorf("create review for patient %s: %w", pid, err)
		}
		result.Eligible = append(result.Eligible, r)
		s.publishRequested(&r)
	}

	return result, nil
}

func (s *reviewService) publishRequested(r *model.Review) {
	if s.nc == nil {
		return
	}
	payload, err := json.Marshal(RequestedEvent{
		ReviewID:  r.ID,
		ClinicID:  r.ClinicID,
		PatientID: r.PatientID,
	})
	if err != nil {
		return
	}
	if err := s.nc.Publish(SubjectRequested, payload); err != nil {
		s.logger.Warn("publish review.requested failed", "err", err, "review_id", r.ID)
	}
}

func (s *reviewService) List(ctx context.Context, clinicID uuid.UUID, req ListRequest) (*PaginatedResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	offset := (req.Page - 1) * req.PerPage

	q := s.db.WithContext(ctx).Model(&model.Review{}).Where("clinic_id = ?", clinicID)
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.From != nil {
		q = q.Where("request_date >= ?", *req.From)
	}
	if req.To != nil {
		q = q.Where("request_date <= ?", *req.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	var reviews []model.Review
	err := q.Order("request_date DESC").Offset(offset).Limit(req.PerPage).Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	totalPages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return &PaginatedResult{
		Data:       reviews,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *reviewService) GetByID(ctx context.Context, clinicID, reviewID uuid.UUID) (*model.Review, error) {
	var r model.Review
	err := s.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", reviewID, clinicID).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &r, nil
}

func (s *reviewService) MarkSent(ctx context.Context, clinicID, reviewID uuid.UUID) (*model.Review, error) {
	r, err := s.GetByID(ctx, clinicID, reviewID)
	if err != nil {
		return nil, err
	}
	if r.Status != model.ReviewStatusPending {
		return nil, ErrInvalidStatus
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Model(r).Updates(map[string]any{
		"status":  model.ReviewStatusSent,
		"sent_at": now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("mark review sent: %w", err)
	}
	return r, nil
}

func (s *reviewService) Complete(ctx context.Context, clinicID, reviewID uuid.UUID, status string, rating *int, comment string) (*model.Review, error) {
	switch status {
	case model.ReviewStatusReceived, model.ReviewStatusSkipped, model.ReviewStatusFailed:
	default:
		return nil, ErrInvalidStatus
	}

	r, err := s.GetByID(ctx, clinicID, reviewID)
	if err != nil {
		return nil, err
	}
	if r.Status != model.ReviewStatusPending && r.Status != model.ReviewStatusSent {
		return nil, ErrInvalidStatus
	}

	updates := map[string]any{"status": status}
	if status == model.ReviewStatusReceived {
		if rating == nil || *rating < 1 || *rating > 5 {
			return nil, ErrInvalidRating
		}
		updates["rating"] = *rating
		updates["comment"] = comment
		updates["received_at"] = time.Now()
	}

	if err := s.db.WithContext(ctx).Model(r).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("complete review: %w", err)
	}
	return r, nil
}

func (s *reviewService) Stats(ctx context.Context, clinicID uuid.UUID, from, to *time.Time) (*Stats, error) {
	q := s.db.WithContext(ctx).Model(&model.Review{}).Where("clinic_id = ?", clinicID)
	if from != nil {
		q = q.Where("request_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("request_date <= ?", *to)
	}

	var reviews []model.Review
	if err := q.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("load reviews for stats: %w", err)
	}

	return reduceStats(reviews), nil
}

// reduceStats buckets ratings: >=4 positive, ==3 neutral, <=2 negative.
func reduceStats(reviews []model.Review) *Stats {
	stats := &Stats{
		Total:    int64(len(reviews)),
		ByStatus: make(map[string]int64),
	}

	var ratingSum, ratingCount int64
	for _, r := range reviews {
		stats.ByStatus[r.Status]++
		if r.Rating == nil {
			continue
		}
		ratingSum += int64(*r.Rating)
		ratingCount++
		switch {
		case *r.Rating >= 4:
			stats.Positive++
		case *r.Rating == 3:
			stats.Neutral++
		default:
			stats.Negative++
		}
	}
	if ratingCount > 0 {
		stats.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	return stats
}
