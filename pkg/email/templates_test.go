package email

import (
	"strings"
	"testing"
)

func TestBuildReviewRequestEmail(t *testing.T) {
	msg := BuildReviewRequestEmail(ReviewRequestData{
		PatientName: "Asha",
		Email:       "asha@example.com",
		ClinicName:  "Sunrise Dental",
		ReviewURL:   "https://reviews.example.com/r/abc123",
	})

	if len(msg.To) != 1 || msg.To[0] != "asha@example.com" {
		t.Errorf("To = %v, want the patient address", msg.To)
	}
	if !strings.Contains(msg.Subject, "Sunrise Dental") {
		t.Errorf("Subject = %q, want clinic name", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "https://reviews.example.com/r/abc123") {
		t.Error("text body missing the review link")
	}
	if !strings.Contains(msg.HTMLBody, `href="https://reviews.example.com/r/abc123"`) {
		t.Error("html body missing the review link")
	}
}

func TestBuildLowBalanceEmailWithTopUpURL(t *testing.T) {
	msg := BuildLowBalanceEmail(LowBalanceData{
		Email:      "admin@sunrise.example.com",
		ClinicName: "Sunrise Dental",
		Balance:    4,
		TopUpURL:   "https://billing.example.com/top-up",
	})

	if !strings.Contains(msg.TextBody, "Top up here:\nhttps://billing.example.com/top-up") {
		t.Error("text body missing the top-up link")
	}
	if !strings.Contains(msg.HTMLBody, `href="https://billing.example.com/top-up"`) {
		t.Error("html body missing the top-up link")
	}
}

func TestBuildLowBalanceEmailOmitsEmptyTopUpLink(t *testing.T) {
	msg := BuildLowBalanceEmail(LowBalanceData{
		Email:      "admin@sunrise.example.com",
		ClinicName: "Sunrise Dental",
		Balance:    4,
	})

	if strings.Contains(msg.TextBody, "Top up here") {
		t.Error("text body renders a top-up block with no URL configured")
	}
	if strings.Contains(msg.HTMLBody, "href=") {
		t.Error("html body renders a link with no URL configured")
	}
	if !strings.Contains(msg.TextBody, "4 notification credits") {
		t.Errorf("text body = %q, want the remaining balance", msg.TextBody)
	}
}
