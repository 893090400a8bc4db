package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

// SubjectCreated is published after each successful notification insert.
const SubjectCreated = "clinicpulse.notification.created"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID     uuid.UUID
	Type          string
	Category      string
	Title         string
	Message       string
	ScheduledDate *time.Time
}

type ListRequest struct {
	Page      int
	PerPage   int
	PatientID *uuid.UUID
	Status    *string
	From      *time.Time
	To        *time.Time
}

type PaginatedResult struct {
	Data       []model.Notification
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// CreatedEvent is the NATS payload for SubjectCreated.
type CreatedEvent struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	ClinicID       uuid.UUID  `json:"clinic_id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	Status         string     `json:"status"`
	ScheduledDate  *time.Time `json:"scheduled_date,omitempty"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create inserts one notification and decrements the clinic balance in
	// the same transaction. The patient must have an active app installation
	// and the clinic balance must cover the insert.
	Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*model.Notification, error)

	// CreateBatch checks balance >= len(reqs) up front and inserts all rows
	// with a single aggregate decrement. All-or-nothing.
	CreateBatch(ctx context.Context, clinicID uuid.UUID, reqs []CreateRequest) ([]model.Notification, error)

	List(ctx context.Context, clinicID uuid.UUID, req ListRequest) (*PaginatedResult, error)
	GetByID(ctx context.Context, clinicID, notifID uuid.UUID) (*model.Notification, error)

	// UpdateStatus applies a lifecycle transition and stamps its timestamp.
	UpdateStatus(ctx context.Context, clinicID, notifID uuid.UUID, status, failReason string) (*model.Notification, error)

	// Delete removes a still-scheduled notification and refunds one credit.
	Delete(ctx context.Context, clinicID, notifID uuid.UUID) error

	// DispatchDue transitions scheduled notifications whose scheduled date
	// has passed to sent. Returns how many rows moved.
	DispatchDue(ctx context.Context, now time.Time) (int, error)

	// UpcomingForPatient lists scheduled reminders for the mobile app.
	UpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]model.Notification, error)

	ListTemplates(ctx context.Context) ([]model.NotificationTemplate, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	db     *gorm.DB
	nc     *nats.Conn
	logger *slog.Logger
}

// New creates the notification service. nc may be nil when the event bus is
// not configured; publishes are then skipped.
func New(db *gorm.DB, nc *nats.Conn, logger *slog.Logger) Service {
	return &notificationService{db: db, nc: nc, logger: logger}
}

func initialStatus(scheduledDate *time.Time, now time.Time) (string, *time.Time) {
	if scheduledDate != nil && scheduledDate.After(now) {
		return model.NotificationStatusScheduled, nil
	}
	sentAt := now
	return model.NotificationStatusSent, &sentAt
}

// validTransition encodes the scheduled -> sent -> delivered -> read
// lifecycle. failed is reachable from any state before read.
func validTransition(from, to string) bool {
	switch to {
	case model.NotificationStatusSent:
		return from == model.NotificationStatusScheduled
	case model.NotificationStatusDelivered:
		return from == model.NotificationStatusSent
	case model.NotificationStatusRead:
		return from == model.NotificationStatusDelivered
	case model.NotificationStatusFailed:
		return from != model.NotificationStatusRead && from != model.NotificationStatusFailed
	default:
		return false
	}
}

func (s *notificationService) Create(ctx context.Context, clinicID uuid.UUID, req CreateRequest) (*model.Notification, error) {
	created, err := s.createMany(ctx, clinicID, []CreateRequest{req})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

func (s *notificationService) CreateBatch(ctx context.Context, clinicID uuid.UUID, reqs []CreateRequest) ([]model.Notification, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	return s.createMany(ctx, clinicID, reqs)
}

// createMany is the single balance-guarded insert path. The conditional
// UPDATE serializes concurrent requests against the same clinic: whichever
// transaction commits first consumes the credits, the loser sees zero rows
// affected and aborts.
func (s *notificationService) createMany(ctx context.Context, clinicID uuid.UUID, reqs []CreateRequest) ([]model.Notification, error) {
	now := time.Now()
	count := len(reqs)

	rows := make([]model.Notification, 0, count)
	for _, req := range reqs {
		if strings.TrimSpace(req.Message) == "" {
			return nil, ErrMessageRequired
		}

		status, sentAt := initialStatus(req.ScheduledDate, now)
		rows = append(rows, model.Notification{
			ClinicID:       clinicID,
			PatientID:      req.PatientID,
			Type:           req.Type,
			Category:       req.Category,
			Title:          req.Title,
			Message:        req.Message,
			ScheduledDate:  req.ScheduledDate,
			Status:         status,
			DeliveryMethod: model.DeliveryMethodPush,
			SentAt:         sentAt,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, req := range reqs {
			var installs int64
			if err := tx.Model(&model.AppInstallation{}).
				Where("patient_id = ? AND clinic_id = ? AND active = ?", req.PatientID, clinicID, true).
				Count(&installs).Error; err != nil {
				return fmt.Errorf("check app installation: %w", err)
			}
			if installs == 0 {
				return ErrNoAppInstallation
			}
		}

		res := tx.Model(&model.Clinic{}).
			Where("id = ? AND push_notification_balance >= ?", clinicID, count).
			Update("push_notification_balance", gorm.Expr("push_notification_balance - ?", count))
		if res.Error != nil {
			return fmt.Errorf("decrement balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert notifications: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range rows {
		s.publishCreated(&rows[i])
	}
	return rows, nil
}

func (s *notificationService) publishCreated(n *model.Notification) {
	if s.nc == nil {
		return
	}
	payload, err := json.Marshal(CreatedEvent{
		NotificationID: n.ID,
		ClinicID:       n.ClinicID,
		PatientID:      n.PatientID,
		Status:         n.Status,
		ScheduledDate:  n.ScheduledDate,
	})
	if err != nil {
		return
	}
	if err := s.nc.Publish(SubjectCreated, payload); err != nil {
		s.logger.Warn("publish notification.created failed", "err", err, "notification_id", n.ID)
	}
}

func (s *notificationService) List(ctx context.Context, clinicID uuid.UUID, req ListRequest) (*PaginatedResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	offset := (req.Page - 1) * req.PerPage

	q := s.db.WithContext(ctx).Model(&model.Notification{}).Where("clinic_id = ?", clinicID)
	if req.PatientID != nil {
		q = q.Where("patient_id = ?", *req.PatientID)
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.From != nil {
		q = q.Where("created_at >= ?", *req.From)
	}
	if req.To != nil {
		q = q.Where("created_at <= ?", *req.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	var notifications []model.Notification
	err := q.Order("created_at DESC").Offset(offset).Limit(req.PerPage).Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	totalPages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return &PaginatedResult{
		Data:       notifications,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *notificationService) GetByID(ctx context.Context, clinicID, notifID uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", notifID, clinicID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *notificationService) UpdateStatus(ctx context.Context, clinicID, notifID uuid.UUID, status, failReason string) (*model.Notification, error) {
	n, err := s.GetByID(ctx, clinicID, notifID)
	if err != nil {
		return nil, err
	}

	if !validTransition(n.Status, status) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	updates := map[string]any{"status": status}
	switch status {
	case model.NotificationStatusSent:
		updates["sent_at"] = now
	case model.NotificationStatusDelivered:
		updates["delivered_at"] = now
	case model.NotificationStatusRead:
		updates["read_at"] = now
	case model.NotificationStatusFailed:
		updates["failed_at"] = now
		updates["fail_reason"] = failReason
	}

	if err := s.db.WithContext(ctx).Model(n).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update notification status: %w", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, clinicID, notifID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete guarded on status so a concurrent dispatch cannot slip a
		// refund in after the notification went out.
		res := tx.Where("id = ? AND clinic_id = ? AND status = ?",
			notifID, clinicID, model.NotificationStatusScheduled).
			Delete(&model.Notification{})
		if res.Error != nil {
			return fmt.Errorf("delete notification: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&model.Notification{}).
				Where("id = ? AND clinic_id = ?", notifID, clinicID).
				Count(&exists).Error; err != nil {
				return fmt.Errorf("check notification: %w", err)
			}
			if exists == 0 {
				return ErrNotificationNotFound
			}
			return ErrNotDeletable
		}

		err := tx.Model(&model.Clinic{}).
			Where("id = ?", clinicID).
			Update("push_notification_balance", gorm.Expr("push_notification_balance + 1")).Error
		if err != nil {
			return fmt.Errorf("refund balance: %w", err)
		}
		return nil
	})
}

func (s *notificationService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("status = ? AND scheduled_date <= ?", model.NotificationStatusScheduled, now).
		Updates(map[string]any{
			"status":  model.NotificationStatusSent,
			"sent_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("dispatch due notifications: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *notificationService) UpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.WithContext(ctx).
		Where("patient_id = ? AND status IN ?", patientID,
			[]string{model.NotificationStatusScheduled, model.NotificationStatusSent, model.NotificationStatusDelivered}).
		Order("scheduled_date ASC NULLS LAST").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list patient reminders: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) ListTemplates(ctx context.Context) ([]model.NotificationTemplate, error) {
	var templates []model.NotificationTemplate
	err := s.db.WithContext(ctx).Order("category, offset_days").Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("list notification templates: %w", err)
	}
	return templates, nil
}
