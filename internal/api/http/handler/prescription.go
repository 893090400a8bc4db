package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/prescription"
)

type PrescriptionHandler struct {
	svc prescription.Service
}

func NewPrescriptionHandler(svc prescription.Service) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc}
}

func mapPrescriptionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, prescription.ErrPrescriptionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, prescription.ErrPatientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, prescription.ErrUploadNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, prescription.ErrInvalidMedicines):
		return badRequest(c, err.Error())
	case errors.Is(err, prescription.ErrEmptyFile):
		return badRequest(c, err.Error())
	case errors.Is(err, prescription.ErrFileTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
	default:
		return internalError(c)
	}
}

// ---------------------------------------------------------------------------
// Structured prescriptions
// ---------------------------------------------------------------------------

// GET /prescriptions
func (h *PrescriptionHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page      int    `query:"page"`
		PerPage   int    `query:"per_page"`
		PatientID string `query:"patient_id"`
		From      string `query:"from"`
		To        string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	req := prescription.ListRequest{Page: q.Page, PerPage: q.PerPage}
	if q.PatientID != "" {
		id, err := uuid.Parse(q.PatientID)
		if err != nil {
			return badRequest(c, "invalid patient_id")
		}
		req.PatientID = &id
	}
	var err error
	if req.From, err = parseDate(q.From); err != nil {
		return badRequest(c, "invalid from date")
	}
	if req.To, err = parseDate(q.To); err != nil {
		return badRequest(c, "invalid to date")
	}

	result, err := h.svc.List(c.Context(), clinicID, req)
	if err != nil {
		return mapPrescriptionError(c, err)
	}

	return ok(c, fiber.Map{
		"prescriptions": result.Data,
		"total":         result.Total,
		"page":          result.Page,
		"per_page":      result.PerPage,
		"total_pages":   result.TotalPages,
	})
}

// POST /prescriptions
func (h *PrescriptionHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		PatientID     string          `json:"patient_id"`
		Diagnosis     string          `json:"diagnosis"`
		Medicines     json.RawMessage `json:"medicines"`
		VisitDate     string          `json:"visit_date"`
		NextVisitDate string          `json:"next_visit_date"`
		Notes         string          `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}

	req := prescription.CreateRequest{
		PatientID: patientID,
		Diagnosis: body.Diagnosis,
		Medicines: body.Medicines,
		Notes:     body.Notes,
	}
	if req.VisitDate, err = parseDate(body.VisitDate); err != nil {
		return badRequest(c, "invalid visit_date")
	}
	if req.NextVisitDate, err = parseDate(body.NextVisitDate); err != nil {
		return badRequest(c, "invalid next_visit_date")
	}

	p, err := h.svc.Create(c.Context(), clinicID, req)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return created(c, p)
}

// GET /prescriptions/:id
func (h *PrescriptionHandler) Get(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	prescriptionID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid prescription id")
	}

	p, err := h.svc.GetByID(c.Context(), clinicID, prescriptionID)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return ok(c, p)
}

// DELETE /prescriptions/:id
func (h *PrescriptionHandler) Delete(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	prescriptionID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid prescription id")
	}

	if err := h.svc.Delete(c.Context(), clinicID, prescriptionID); err != nil {
		return mapPrescriptionError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Uploaded prescription files
// ---------------------------------------------------------------------------

// POST /patients/:id/prescriptions/upload
// Multipart upload; the file field is "file".
func (h *PrescriptionHandler) Upload(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	staffID, valid := subjectIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file field is required")
	}
	if fh.Size > prescription.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file too large"})
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "cannot read uploaded file")
	}
	defer f.Close()

	u, err := h.svc.Upload(c.Context(), clinicID, prescription.UploadRequest{
		PatientID:   patientID,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
		UploadedBy:  staffID,
	})
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return created(c, u)
}

// GET /patients/:id/prescriptions/uploads
func (h *PrescriptionHandler) ListUploads(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	uploads, err := h.svc.ListUploads(c.Context(), clinicID, patientID)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return ok(c, fiber.Map{"uploads": uploads})
}

// GET /prescriptions/uploads/:id/download
// Returns a presigned URL instead of streaming the object.
func (h *PrescriptionHandler) DownloadURL(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	uploadID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid upload id")
	}

	url, err := h.svc.DownloadURL(c.Context(), clinicID, uploadID)
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return ok(c, fiber.Map{"url": url})
}

// DELETE /prescriptions/uploads/:id
func (h *PrescriptionHandler) DeleteUpload(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	uploadID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid upload id")
	}

	if err := h.svc.DeleteUpload(c.Context(), clinicID, uploadID); err != nil {
		return mapPrescriptionError(c, err)
	}
	return noContent(c)
}

// GET /patients/:id/prescriptions
func (h *PrescriptionHandler) ListForPatient(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	result, err := h.svc.List(c.Context(), clinicID, prescription.ListRequest{
		PatientID: &patientID,
		PerPage:   100,
	})
	if err != nil {
		return mapPrescriptionError(c, err)
	}
	return ok(c, fiber.Map{"prescriptions": result.Data, "total": result.Total})
}
