package report

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

func intp(v int) *int { return &v }

func TestAgeBucket(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{0, "Under 18"},
		{17, "Under 18"},
		{18, "18-25"},
		{25, "18-25"},
		{26, "26-35"},
		{35, "26-35"},
		{36, "36-45"},
		{45, "36-45"},
		{46, "46-60"},
		{60, "46-60"},
		{61, "61+"},
		{95, "61+"},
	}

	for _, tt := range tests {
		if got := ageBucket(tt.age); got != tt.want {
			t.Errorf("ageBucket(%d) = %q, want %q", tt.age, got, tt.want)
		}
	}
}

func TestPatientAge_FromBirthDate(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	beforeBirthday := time.Date(1990, 9, 1, 0, 0, 0, 0, time.UTC)
	age, ok := patientAge(&model.Patient{BirthDate: &beforeBirthday}, now)
	if !ok || age != 35 {
		t.Errorf("age before birthday = %d (%v), want 35", age, ok)
	}

	afterBirthday := time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC)
	age, ok = patientAge(&model.Patient{BirthDate: &afterBirthday}, now)
	if !ok || age != 36 {
		t.Errorf("age after birthday = %d (%v), want 36", age, ok)
	}

	age, ok = patientAge(&model.Patient{Age: intp(42)}, now)
	if !ok || age != 42 {
		t.Errorf("explicit age = %d (%v), want 42", age, ok)
	}

	if _, ok = patientAge(&model.Patient{}, now); ok {
		t.Error("patient without age or birth date should not bucket")
	}
}

func TestReduceDemographics(t *testing.T) {
	patients := []model.Patient{
		{Age: intp(17), Gender: "Female"},
		{Age: intp(18), Gender: "male"},
		{Age: intp(60), Gender: "male", OptedOut: true},
		{Age: intp(61)},
		{Gender: "female"},
	}

	r := reduceDemographics(patients, time.Now())

	if r.TotalPatients != 5 {
		t.Errorf("TotalPatients = %d, want 5", r.TotalPatients)
	}
	if r.AgeBuckets["Under 18"] != 1 || r.AgeBuckets["18-25"] != 1 ||
		r.AgeBuckets["46-60"] != 1 || r.AgeBuckets["61+"] != 1 {
		t.Errorf("unexpected age buckets: %v", r.AgeBuckets)
	}
	if r.AgeBuckets["26-35"] != 0 {
		t.Errorf("empty bucket should be present with zero, got %v", r.AgeBuckets)
	}
	if r.ByGender["female"] != 2 || r.ByGender["male"] != 2 {
		t.Errorf("unexpected gender split: %v", r.ByGender)
	}
	if r.OptedOut != 1 {
		t.Errorf("OptedOut = %d, want 1", r.OptedOut)
	}
}

func TestReduceNotifications_Rates(t *testing.T) {
	rows := []model.Notification{
		{Status: model.NotificationStatusSent},
		{Status: model.NotificationStatusDelivered},
		{Status: model.NotificationStatusRead, Category: "follow_up"},
		{Status: model.NotificationStatusFailed, Category: "follow_up"},
	}

	r := reduceNotifications(rows)

	if r.Total != 4 {
		t.Errorf("Total = %d, want 4", r.Total)
	}
	if r.DeliveryRate != 0.5 {
		t.Errorf("DeliveryRate = %v, want 0.5", r.DeliveryRate)
	}
	if r.ReadRate != 0.25 {
		t.Errorf("ReadRate = %v, want 0.25", r.ReadRate)
	}
	if r.FailureRate != 0.25 {
		t.Errorf("FailureRate = %v, want 0.25", r.FailureRate)
	}
	if r.ByCategory["follow_up"] != 2 {
		t.Errorf("ByCategory = %v, want follow_up=2", r.ByCategory)
	}
}

func TestReduceMedicines_TopN(t *testing.T) {
	mk := func(names ...string) model.Prescription {
		meds := make([]model.Medicine, 0, len(names))
		for _, n := range names {
			meds = append(meds, model.Medicine{Name: n})
		}
		col, err := model.MedicinesJSON(meds)
		if err != nil {
			t.Fatalf("MedicinesJSON failed: %v", err)
		}
		return model.Prescription{Medicines: datatypes.JSON(col)}
	}

	prescriptions := []model.Prescription{
		mk("Amoxicillin", "Ibuprofen"),
		mk("amoxicillin"),
		mk("Ibuprofen"),
		mk("Paracetamol"),
	}

	r := reduceMedicines(prescriptions, 2)

	if r.TotalPrescriptions != 4 {
		t.Errorf("TotalPrescriptions = %d, want 4", r.TotalPrescriptions)
	}
	if len(r.TopMedicines) != 2 {
		t.Fatalf("TopMedicines = %v, want 2 entries", r.TopMedicines)
	}
	if r.TopMedicines[0].Name != "amoxicillin" || r.TopMedicines[0].Count != 2 {
		t.Errorf("top medicine = %+v, want amoxicillin x2", r.TopMedicines[0])
	}
	if r.TopMedicines[1].Name != "ibuprofen" || r.TopMedicines[1].Count != 2 {
		t.Errorf("second medicine = %+v, want ibuprofen x2", r.TopMedicines[1])
	}
}

func TestReduceActivity(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC),
	}

	r := reduceActivity(times)

	if r.ByDay["2026-04-01"] != 2 || r.ByDay["2026-04-02"] != 1 {
		t.Errorf("ByDay = %v", r.ByDay)
	}
	if r.ByHour[9] != 2 || r.ByHour[14] != 1 {
		t.Errorf("ByHour = %v", r.ByHour)
	}
}

func TestReduceReviews_Sentiment(t *testing.T) {
	rows := []model.Review{
		{Status: model.ReviewStatusReceived, Rating: intp(4)},
		{Status: model.ReviewStatusReceived, Rating: intp(3)},
		{Status: model.ReviewStatusReceived, Rating: intp(2)},
		{Status: model.ReviewStatusPending},
	}

	r := reduceReviews(rows)

	if r.Positive != 1 || r.Neutral != 1 || r.Negative != 1 {
		t.Errorf("sentiment = +%d/=%d/-%d, want 1/1/1", r.Positive, r.Neutral, r.Negative)
	}
	if r.AverageRating != 3.0 {
		t.Errorf("AverageRating = %v, want 3.0", r.AverageRating)
	}
}
