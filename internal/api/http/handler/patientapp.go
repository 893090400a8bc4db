package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/notification"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patient"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/patientauth"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/prescription"
)

// PatientAppHandler serves the mobile-app surface: OTP login plus the
// authenticated patient's own profile, reminders and prescriptions.
type PatientAppHandler struct {
	auth          patientauth.Service
	patients      patient.Service
	notifications notification.Service
	prescriptions prescription.Service
}

func NewPatientAppHandler(
	auth patientauth.Service,
	patients patient.Service,
	notifications notification.Service,
	prescriptions prescription.Service,
) *PatientAppHandler {
	return &PatientAppHandler{
		auth:          auth,
		patients:      patients,
		notifications: notifications,
		prescriptions: prescriptions,
	}
}

func mapPatientAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patientauth.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patientauth.ErrInvalidMobile):
		return badRequest(c, err.Error())
	case errors.Is(err, patientauth.ErrOTPExpired):
		return unauthorized(c)
	case errors.Is(err, patientauth.ErrOTPInvalid):
		return unauthorized(c)
	case errors.Is(err, patientauth.ErrOTPMaxAttempts):
		return tooManyRequests(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /patient/auth/request-otp
func (h *PatientAppHandler) RequestOTP(c fiber.Ctx) error {
	var body struct {
		Mobile string `json:"mobile"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Mobile == "" {
		return badRequest(c, "mobile is required")
	}

	if err := h.auth.RequestOTP(c.Context(), body.Mobile); err != nil {
		return mapPatientAuthError(c, err)
	}
	return ok(c, fiber.Map{"message": "verification code sent"})
}

// POST /patient/auth/verify-otp
func (h *PatientAppHandler) VerifyOTP(c fiber.Ctx) error {
	var body struct {
		Mobile string `json:"mobile"`
		Code   string `json:"code"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Mobile == "" || body.Code == "" {
		return badRequest(c, "mobile and code are required")
	}

	tokens, err := h.auth.VerifyOTP(c.Context(), body.Mobile, body.Code)
	if err != nil {
		return mapPatientAuthError(c, err)
	}

	return ok(c, fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
		"patient_id":    tokens.PatientID,
		"clinic_id":     tokens.ClinicID,
	})
}

// GET /patient/profile  (requires PatientAuthRequired middleware)
func (h *PatientAppHandler) Profile(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, valid := subjectIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	p, err := h.patients.GetByID(c.Context(), clinicID, patientID)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// GET /patient/reminders  (requires PatientAuthRequired middleware)
func (h *PatientAppHandler) Reminders(c fiber.Ctx) error {
	patientID, valid := subjectIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	reminders, err := h.notifications.UpcomingForPatient(c.Context(), patientID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{"reminders": reminders})
}

// GET /patient/prescriptions  (requires PatientAuthRequired middleware)
func (h *PatientAppHandler) Prescriptions(c fiber.Ctx) error {
	patientID, valid := subjectIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	prescriptions, err := h.prescriptions.ListForPatient(c.Context(), patientID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{"prescriptions": prescriptions})
}
