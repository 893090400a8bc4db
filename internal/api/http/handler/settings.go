package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/clinic"
)

type SettingsHandler struct {
	svc clinic.Service
}

func NewSettingsHandler(svc clinic.Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func mapClinicError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, clinic.ErrClinicNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, clinic.ErrNoDefaultClinic):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /settings/clinic
func (h *SettingsHandler) GetClinic(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	cl, err := h.svc.Get(c.Context(), clinicID)
	if err != nil {
		return mapClinicError(c, err)
	}
	return ok(c, cl)
}

// PUT /settings/clinic and PATCH /settings/clinic share the same
// partial-update semantics; only fields present in the body change.
func (h *SettingsHandler) UpdateClinic(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Name           *string         `json:"name"`
		DoctorName     *string         `json:"doctor_name"`
		Email          *string         `json:"email"`
		Phone          *string         `json:"phone"`
		Address        *string         `json:"address"`
		LogoURL        *string         `json:"logo_url"`
		PrimaryColor   *string         `json:"primary_color"`
		SecondaryColor *string         `json:"secondary_color"`
		Settings       json.RawMessage `json:"settings"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cl, err := h.svc.Update(c.Context(), clinicID, clinic.UpdateRequest{
		Name:           body.Name,
		DoctorName:     body.DoctorName,
		Email:          body.Email,
		Phone:          body.Phone,
		Address:        body.Address,
		LogoURL:        body.LogoURL,
		PrimaryColor:   body.PrimaryColor,
		SecondaryColor: body.SecondaryColor,
		Settings:       body.Settings,
	})
	if err != nil {
		return mapClinicError(c, err)
	}
	return ok(c, cl)
}

// ALL /settings -> /settings/clinic, preserving the method.
func (h *SettingsHandler) RedirectToClinic(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusPermanentRedirect).To("/api/v1/settings/clinic")
}

// GET /clinic/default
// Public branding lookup for the mobile app launch screen.
func (h *SettingsHandler) DefaultBranding(c fiber.Ctx) error {
	branding, err := h.svc.DefaultBranding(c.Context())
	if err != nil {
		return mapClinicError(c, err)
	}
	return ok(c, branding)
}
