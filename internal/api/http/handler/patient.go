package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/patient"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrPatientAlreadyExists):
		return conflict(c, err.Error())
	case errors.Is(err, patient.ErrInvalidMobile):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// parseDate accepts both date-only and RFC3339 inputs.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ---------------------------------------------------------------------------
// Patient CRUD
// ---------------------------------------------------------------------------

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page     int    `query:"page"`
		PerPage  int    `query:"per_page"`
		Search   string `query:"search"`
		OptedOut *bool  `query:"opted_out"`
		Sort     string `query:"sort"`
		Order    string `query:"order"`
	}
	_ = c.Bind().Query(&q)

	result, err := h.svc.List(c.Context(), clinicID, patient.ListPatientsRequest{
		Page:     q.Page,
		PerPage:  q.PerPage,
		Search:   q.Search,
		OptedOut: q.OptedOut,
		Sort:     q.Sort,
		Order:    q.Order,
	})
	if err != nil {
		return mapPatientError(c, err)
	}

	return ok(c, fiber.Map{
		"patients":    result.Data,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// POST /patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Name          string  `json:"name"`
		Mobile        string  `json:"mobile"`
		Email         *string `json:"email"`
		Gender        *string `json:"gender"`
		Age           *int    `json:"age"`
		BirthDate     string  `json:"birth_date"`
		Address       *string `json:"address"`
		VisitDate     string  `json:"visit_date"`
		NextVisitDate string  `json:"next_visit_date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Name == "" || body.Mobile == "" {
		return badRequest(c, "name and mobile are required")
	}

	req := patient.CreatePatientRequest{
		Name:   body.Name,
		Mobile: body.Mobile,
		Email:  body.Email,
		Gender: body.Gender,
		Age:    body.Age,
	}
	var err error
	if req.BirthDate, err = parseDate(body.BirthDate); err != nil {
		return badRequest(c, "invalid birth_date")
	}
	if req.VisitDate, err = parseDate(body.VisitDate); err != nil {
		return badRequest(c, "invalid visit_date")
	}
	if req.NextVisitDate, err = parseDate(body.NextVisitDate); err != nil {
		return badRequest(c, "invalid next_visit_date")
	}
	req.Address = body.Address

	p, err := h.svc.Create(c.Context(), clinicID, req)
	if err != nil {
		if errors.Is(err, patient.ErrPatientAlreadyExists) {
			// Return the existing record so the client can link to it.
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
				"data":  p,
			})
		}
		return mapPatientError(c, err)
	}

	return created(c, p)
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	p, err := h.svc.GetByID(c.Context(), clinicID, patientID)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// PUT /patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var body struct {
		Name          *string `json:"name"`
		Email         *string `json:"email"`
		Gender        *string `json:"gender"`
		Age           *int    `json:"age"`
		BirthDate     *string `json:"birth_date"`
		Address       *string `json:"address"`
		VisitDate     *string `json:"visit_date"`
		NextVisitDate *string `json:"next_visit_date"`
		OptedOut      *bool   `json:"opted_out"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := patient.UpdatePatientRequest{
		Name:     body.Name,
		Email:    body.Email,
		Gender:   body.Gender,
		Age:      body.Age,
		Address:  body.Address,
		OptedOut: body.OptedOut,
	}
	if body.BirthDate != nil {
		if req.BirthDate, err = parseDate(*body.BirthDate); err != nil {
			return badRequest(c, "invalid birth_date")
		}
	}
	if body.VisitDate != nil {
		if req.VisitDate, err = parseDate(*body.VisitDate); err != nil {
			return badRequest(c, "invalid visit_date")
		}
	}
	if body.NextVisitDate != nil {
		if req.NextVisitDate, err = parseDate(*body.NextVisitDate); err != nil {
			return badRequest(c, "invalid next_visit_date")
		}
	}

	p, err := h.svc.Update(c.Context(), clinicID, patientID, req)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// GET /patients/search?phone=...
func (h *PatientHandler) SearchByPhone(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	rawPhone := c.Query("phone")
	if rawPhone == "" {
		return badRequest(c, "phone is required")
	}

	patients, err := h.svc.SearchByPhone(c.Context(), clinicID, rawPhone)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, fiber.Map{"patients": patients, "total": len(patients)})
}
