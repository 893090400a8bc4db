package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotificationNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrInsufficientBalance):
		return badRequest(c, err.Error())
	case errors.Is(err, notification.ErrNoAppInstallation):
		return badRequest(c, err.Error())
	case errors.Is(err, notification.ErrNotDeletable):
		return badRequest(c, err.Error())
	case errors.Is(err, notification.ErrInvalidTransition):
		return badRequest(c, err.Error())
	case errors.Is(err, notification.ErrEmptyBatch):
		return badRequest(c, err.Error())
	case errors.Is(err, notification.ErrMessageRequired):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

type notificationBody struct {
	PatientID     string `json:"patient_id"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	ScheduledDate string `json:"scheduled_date"`
}

func (b notificationBody) toCreateRequest() (notification.CreateRequest, error) {
	patientID, err := uuid.Parse(b.PatientID)
	if err != nil {
		return notification.CreateRequest{}, errors.New("invalid patient_id")
	}

	req := notification.CreateRequest{
		PatientID: patientID,
		Type:      b.Type,
		Category:  b.Category,
		Title:     b.Title,
		Message:   b.Message,
	}
	if b.ScheduledDate != "" {
		scheduled, err := parseDate(b.ScheduledDate)
		if err != nil {
			return notification.CreateRequest{}, errors.New("invalid scheduled_date")
		}
		req.ScheduledDate = scheduled
	}
	return req, nil
}

// ---------------------------------------------------------------------------
// Clinic dashboard
// ---------------------------------------------------------------------------

// GET /notifications
func (h *NotificationHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page      int    `query:"page"`
		PerPage   int    `query:"per_page"`
		PatientID string `query:"patient_id"`
		Status    string `query:"status"`
		From      string `query:"from"`
		To        string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	req := notification.ListRequest{Page: q.Page, PerPage: q.PerPage}
	if q.PatientID != "" {
		id, err := uuid.Parse(q.PatientID)
		if err != nil {
			return badRequest(c, "invalid patient_id")
		}
		req.PatientID = &id
	}
	if q.Status != "" {
		req.Status = &q.Status
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
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{
		"notifications": result.Data,
		"total":         result.Total,
		"page":          result.Page,
		"per_page":      result.PerPage,
		"total_pages":   result.TotalPages,
	})
}

// POST /notifications
func (h *NotificationHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body notificationBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req, err := body.toCreateRequest()
	if err != nil {
		return badRequest(c, err.Error())
	}

	n, err := h.svc.Create(c.Context(), clinicID, req)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return created(c, n)
}

// POST /notifications/batch
func (h *NotificationHandler) CreateBatch(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Notifications []notificationBody `json:"notifications"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	reqs := make([]notification.CreateRequest, 0, len(body.Notifications))
	for _, nb := range body.Notifications {
		req, err := nb.toCreateRequest()
		if err != nil {
			return badRequest(c, err.Error())
		}
		reqs = append(reqs, req)
	}

	rows, err := h.svc.CreateBatch(c.Context(), clinicID, reqs)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return created(c, fiber.Map{"notifications": rows, "count": len(rows)})
}

// GET /notifications/:id
func (h *NotificationHandler) Get(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	notifID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	n, err := h.svc.GetByID(c.Context(), clinicID, notifID)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, n)
}

// PUT /notifications/:id/status
func (h *NotificationHandler) UpdateStatus(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	notifID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	var body struct {
		Status     string `json:"status"`
		FailReason string `json:"fail_reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return badRequest(c, "status is required")
	}

	n, err := h.svc.UpdateStatus(c.Context(), clinicID, notifID, body.Status, body.FailReason)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, n)
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	notifID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	if err := h.svc.Delete(c.Context(), clinicID, notifID); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}

// PATCH /patients
// Legacy ad-hoc send: the dashboard patients surface posts a notification
// for a named patient through the same balance-guarded create path.
func (h *NotificationHandler) NotifyPatient(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body notificationBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req, err := body.toCreateRequest()
	if err != nil {
		return badRequest(c, err.Error())
	}

	n, err := h.svc.Create(c.Context(), clinicID, req)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return created(c, n)
}

// GET /notifications/templates
func (h *NotificationHandler) ListTemplates(c fiber.Ctx) error {
	templates, err := h.svc.ListTemplates(c.Context())
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{"templates": templates})
}

// POST /patients/:id/notifications
// Per-patient alias of Create: the patient comes from the path, not the body.
func (h *NotificationHandler) CreateForPatient(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var body notificationBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.PatientID = patientID.String()

	req, err := body.toCreateRequest()
	if err != nil {
		return badRequest(c, err.Error())
	}

	n, err := h.svc.Create(c.Context(), clinicID, req)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return created(c, n)
}

// POST /patients/:id/notifications/batch
func (h *NotificationHandler) CreateBatchForPatient(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var body struct {
		Notifications []notificationBody `json:"notifications"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	reqs := make([]notification.CreateRequest, 0, len(body.Notifications))
	for _, nb := range body.Notifications {
		nb.PatientID = patientID.String()
		req, err := nb.toCreateRequest()
		if err != nil {
			return badRequest(c, err.Error())
		}
		reqs = append(reqs, req)
	}

	rows, err := h.svc.CreateBatch(c.Context(), clinicID, reqs)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return created(c, fiber.Map{"notifications": rows, "count": len(rows)})
}

// GET /patients/:id/notifications
func (h *NotificationHandler) ListForPatient(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	patientID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	result, err := h.svc.List(c.Context(), clinicID, notification.ListRequest{
		Page:      q.Page,
		PerPage:   q.PerPage,
		PatientID: &patientID,
	})
	if err != nil {
		return mapNotificationError(c, err)
	}

	return ok(c, fiber.Map{
		"notifications": result.Data,
		"total":         result.Total,
		"page":          result.Page,
		"per_page":      result.PerPage,
		"total_pages":   result.TotalPages,
	})
}
