package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/notification"
	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
)

type stubNotificationService struct {
	notification.Service
	created []notification.CreateRequest
}

func (s *stubNotificationService) Create(_ context.Context, clinicID uuid.UUID, req notification.CreateRequest) (*model.Notification, error) {
	s.created = append(s.created, req)
	return &model.Notification{ClinicID: clinicID, PatientID: req.PatientID, Message: req.Message}, nil
}

// withClaims injects the authenticated staff claims the middleware would set.
func withClaims(clinicID uuid.UUID) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(pasetotoken.CtxKeyClaims, &pasetotoken.Claims{
			Scope:     pasetotoken.ScopeStaff,
			SubjectID: uuid.New(),
			ClinicID:  clinicID,
		})
		return c.Next()
	}
}

func TestCreateForPatientUsesPathID(t *testing.T) {
	svc := &stubNotificationService{}
	h := NewNotificationHandler(svc)

	clinicID := uuid.New()
	pathPatient := uuid.New()
	bodyPatient := uuid.New()

	app := fiber.New()
	app.Post("/patients/:id/notifications", withClaims(clinicID), h.CreateForPatient)

	// A patient_id in the body must not override the path.
	body := `{"patient_id":"` + bodyPatient.String() + `","message":"see you soon"}`
	req := httptest.NewRequest("POST", "/patients/"+pathPatient.String()+"/notifications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	if len(svc.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(svc.created))
	}
	if svc.created[0].PatientID != pathPatient {
		t.Errorf("PatientID = %v, want path patient %v", svc.created[0].PatientID, pathPatient)
	}
}

func TestMapNotificationErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient balance", notification.ErrInsufficientBalance, fiber.StatusBadRequest},
		{"delete of non-scheduled", notification.ErrNotDeletable, fiber.StatusBadRequest},
		{"no app installation", notification.ErrNoAppInstallation, fiber.StatusBadRequest},
		{"invalid transition", notification.ErrInvalidTransition, fiber.StatusBadRequest},
		{"not found", notification.ErrNotificationNotFound, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c fiber.Ctx) error {
				return mapNotificationError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
