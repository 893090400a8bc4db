package notification

import (
	"testing"
	"time"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

func TestInitialStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name       string
		scheduled  *time.Time
		wantStatus string
		wantSentAt bool
	}{
		{"future date schedules", &future, model.NotificationStatusScheduled, false},
		{"past date sends immediately", &past, model.NotificationStatusSent, true},
		{"no date sends immediately", nil, model.NotificationStatusSent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, sentAt := initialStatus(tt.scheduled, now)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if (sentAt != nil) != tt.wantSentAt {
				t.Errorf("sentAt = %v, want set=%v", sentAt, tt.wantSentAt)
			}
			if sentAt != nil && !sentAt.Equal(now) {
				t.Errorf("sentAt = %v, want %v", sentAt, now)
			}
		})
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{model.NotificationStatusScheduled, model.NotificationStatusSent, true},
		{model.NotificationStatusSent, model.NotificationStatusDelivered, true},
		{model.NotificationStatusDelivered, model.NotificationStatusRead, true},
		{model.NotificationStatusScheduled, model.NotificationStatusFailed, true},
		{model.NotificationStatusSent, model.NotificationStatusFailed, true},
		{model.NotificationStatusDelivered, model.NotificationStatusFailed, true},

		{model.NotificationStatusScheduled, model.NotificationStatusDelivered, false},
		{model.NotificationStatusScheduled, model.NotificationStatusRead, false},
		{model.NotificationStatusSent, model.NotificationStatusRead, false},
		{model.NotificationStatusSent, model.NotificationStatusScheduled, false},
		{model.NotificationStatusRead, model.NotificationStatusFailed, false},
		{model.NotificationStatusFailed, model.NotificationStatusFailed, false},
		{model.NotificationStatusRead, model.NotificationStatusSent, false},
		{model.NotificationStatusSent, "bogus", false},
	}

	for _, tt := range tests {
		if got := validTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("validTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
