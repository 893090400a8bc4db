// Package report produces the date-ranged aggregates behind the dashboard.
// Matching rows are loaded into memory and reduced with plain iteration;
// clinics are small enough that no paging strategy is needed.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

// Report type selectors for the reports endpoint.
const (
	TypeOverview      = "overview"
	TypeNotifications = "notifications"
	TypeDemographics  = "demographics"
	TypeMedicines     = "medicines"
	TypeReviews       = "reviews"
	TypeActivity      = "activity"
)

// TopMedicinesLimit caps the medicines frequency list.
const TopMedicinesLimit = 10

// Age bands for demographic breakdowns.
var ageBuckets = []string{"Under 18", "18-25", "26-35", "36-45", "46-60", "61+"}

// ---------------------------------------------------------------------------
// Result types
// ---------------------------------------------------------------------------

type NotificationsReport struct {
	Total        int64              `json:"total"`
	ByStatus     map[string]int64   `json:"by_status"`
	DeliveryRate float64            `json:"delivery_rate"`
	ReadRate     float64            `json:"read_rate"`
	FailureRate  float64            `json:"failure_rate"`
	ByCategory   map[string]int64   `json:"by_category"`
}

type DemographicsReport struct {
	TotalPatients int64            `json:"total_patients"`
	AgeBuckets    map[string]int64 `json:"age_buckets"`
	ByGender      map[string]int64 `json:"by_gender"`
	OptedOut      int64            `json:"opted_out"`
}

type MedicineCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type MedicinesReport struct {
	TotalPrescriptions int64           `json:"total_prescriptions"`
	TopMedicines       []MedicineCount `json:"top_medicines"`
}

type ReviewsReport struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"by_status"`
	Positive      int64            `json:"positive"`
	Neutral       int64            `json:"neutral"`
	Negative      int64            `json:"negative"`
	AverageRating float64          `json:"average_rating"`
}

type ActivityReport struct {
	ByDay  map[string]int64 `json:"by_day"`  // YYYY-MM-DD -> count
	ByHour map[int]int64    `json:"by_hour"` // 0-23 -> count
}

type OverviewReport struct {
	Notifications *NotificationsReport `json:"notifications"`
	Demographics  *DemographicsReport  `json:"demographics"`
	Medicines     *MedicinesReport     `json:"medicines"`
	Reviews       *ReviewsReport       `json:"reviews"`
	Activity      *ActivityReport      `json:"activity"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Generate builds the sub-report selected by reportType over [from, to].
	Generate(ctx context.Context, clinicID uuid.UUID, reportType string, from, to time.Time) (any, error)
}

type reportService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &reportService{db: db}
}

func (s *reportService) Generate(ctx context.Context, clinicID uuid.UUID, reportType string, from, to time.Time) (any, error) {
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	switch reportType {
	case TypeNotifications:
		return s.notifications(ctx, clinicID, from, to)
	case TypeDemographics:
		return s.demographics(ctx, clinicID)
	case TypeMedicines:
		return s.medicines(ctx, clinicID, from, to)
	case TypeReviews:
		return s.reviews(ctx, clinicID, from, to)
	case TypeActivity:
		return s.activity(ctx, clinicID, from, to)
	case TypeOverview, "":
		return s.overview(ctx, clinicID, from, to)
	default:
		return nil, ErrUnknownReportType
	}
}

func (s *reportService) overview(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (*OverviewReport, error) {
	notifications, err := s.notifications(ctx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	demographics, err := s.demographics(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	medicines, err := s.medicines(ctx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews(ctx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	activity, err := s.activity(ctx, clinicID, from, to)
	if err != nil {
		return nil, err
	}
	return &OverviewReport{
		Notifications: notifications,
		Demographics:  demographics,
		Medicines:     medicines,
		Reviews:       reviews,
		Activity:      activity,
	}, nil
}

func (s *reportService) notifications(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (*NotificationsReport, error) {
	var rows []model.Notification
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND created_at BETWEEN ? AND ?", clinicID, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return reduceNotifications(rows), nil
}

func reduceNotifications(rows []model.Notification) *NotificationsReport {
	r := &NotificationsReport{
		Total:      int64(len(rows)),
		ByStatus:   make(map[string]int64),
		ByCategory: make(map[string]int64),
	}
	for _, n := range rows {
		r.ByStatus[n.Status]++
		if n.Category != "" {
			r.ByCategory[n.Category]++
		}
	}
	if r.Total > 0 {
		delivered := r.ByStatus[model.NotificationStatusDelivered] + r.ByStatus[model.NotificationStatusRead]
		r.DeliveryRate = float64(delivered) / float64(r.Total)
		r.ReadRate = float64(r.ByStatus[model.NotificationStatusRead]) / float64(r.Total)
		r.FailureRate = float64(r.ByStatus[model.NotificationStatusFailed]) / float64(r.Total)
	}
	return r
}

func (s *reportService) demographics(ctx context.Context, clinicID uuid.UUID) (*DemographicsReport, error) {
	var patients []model.Patient
	err := s.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	return reduceDemographics(patients, time.Now()), nil
}

func reduceDemographics(patients []model.Patient, now time.Time) *DemographicsReport {
	r := &DemographicsReport{
		TotalPatients: int64(len(patients)),
		AgeBuckets:    make(map[string]int64, len(ageBuckets)),
		ByGender:      make(map[string]int64),
	}
	for _, b := range ageBuckets {
		r.AgeBuckets[b] = 0
	}

	for _, p := range patients {
		if age, ok := patientAge(&p, now); ok {
			r.AgeBuckets[ageBucket(age)]++
		}
		if g := strings.ToLower(strings.TrimSpace(p.Gender)); g != "" {
			r.ByGender[g]++
		}
		if p.OptedOut {
			r.OptedOut++
		}
	}
	return r
}

func patientAge(p *model.Patient, now time.Time) (int, bool) {
	if p.Age != nil {
		return *p.Age, true
	}
	if p.BirthDate == nil {
		return 0, false
	}
	age := now.Year() - p.BirthDate.Year()
	if now.YearDay() < p.BirthDate.YearDay() {
		age--
	}
	return age, true
}

// ageBucket maps an age to its band: <18, 18-25, 26-35, 36-45, 46-60, 61+.
func ageBucket(age int) string {
	switch {
	case age < 18:
		return "Under 18"
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 45:
		return "36-45"
	case age <= 60:
		return "46-60"
	default:
		return "61+"
	}
}

func (s *reportService) medicines(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (*MedicinesReport, error) {
	var prescriptions []model.Prescription
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND created_at BETWEEN ? AND ?", clinicID, from, to).
		Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("load prescriptions: %w", err)
	}
	return reduceMedicines(prescriptions, TopMedicinesLimit), nil
}

func reduceMedicines(prescriptions []model.Prescription, limit int) *MedicinesReport {
	counts := make(map[string]int64)
	for _, p := range prescriptions {
		for _, m := range model.MedicinesFromColumn(p.Medicines) {
			name := strings.ToLower(strings.TrimSpace(m.Name))
			if name != "" {
				counts[name]++
			}
		}
	}

	top := make([]MedicineCount, 0, len(counts))
	for name, count := range counts {
		top = append(top, MedicineCount{Name: name, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > limit {
		top = top[:limit]
	}

	return &MedicinesReport{
		TotalPrescriptions: int64(len(prescriptions)),
		TopMedicines:       top,
	}
}

func (s *reportService) reviews(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (*ReviewsReport, error) {
	var rows []model.Review
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND request_date BETWEEN ? AND ?", clinicID, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	return reduceReviews(rows), nil
}

func reduceReviews(rows []model.Review) *ReviewsReport {
	r := &ReviewsReport{
		Total:    int64(len(rows)),
		ByStatus: make(map[string]int64),
	}
	var sum, count int64
	for _, rev := range rows {
		r.ByStatus[rev.Status]++
		if rev.Rating == nil {
			continue
		}
		sum += int64(*rev.Rating)
		count++
		switch {
		case *rev.Rating >= 4:
			r.Positive++
		case *rev.Rating == 3:
			r.Neutral++
		default:
			r.Negative++
		}
	}
	if count > 0 {
		r.AverageRating = float64(sum) / float64(count)
	}
	return r
}

func (s *reportService) activity(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (*ActivityReport, error) {
	var rows []model.Notification
	err := s.db.WithContext(ctx).
		Where("clinic_id = ? AND created_at BETWEEN ? AND ?", clinicID, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	times := make([]time.Time, 0, len(rows))
	for _, n := range rows {
		times = append(times, n.CreatedAt)
	}
	return reduceActivity(times), nil
}

func reduceActivity(times []time.Time) *ActivityReport {
	r := &ActivityReport{
		ByDay:  make(map[string]int64),
		ByHour: make(map[int]int64),
	}
	for _, t := range times {
		r.ByDay[t.Format("2006-01-02")]++
		r.ByHour[t.Hour()]++
	}
	return r
}
