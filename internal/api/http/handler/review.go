package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/review"
)

type ReviewHandler struct {
	svc review.Service
}

func NewReviewHandler(svc review.Service) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

func mapReviewError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, review.ErrReviewNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, review.ErrAlreadyRequested):
		return conflict(c, err.Error())
	case errors.Is(err, review.ErrInvalidStatus):
		return badRequest(c, err.Error())
	case errors.Is(err, review.ErrInvalidRating):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /reviews
func (h *ReviewHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
		Status  string `query:"status"`
		From    string `query:"from"`
		To      string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	req := review.ListRequest{Page: q.Page, PerPage: q.PerPage}
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
		return mapReviewError(c, err)
	}

	return ok(c, fiber.Map{
		"reviews":     result.Data,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// POST /reviews
func (h *ReviewHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		PatientID string `json:"patient_id"`
		Platform  string `json:"platform"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}

	r, dup, err := h.svc.Create(c.Context(), clinicID, review.CreateRequest{
		PatientID: patientID,
		Platform:  body.Platform,
	})
	if err != nil {
		if errors.Is(err, review.ErrAlreadyRequested) && dup != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
				"data": fiber.Map{
					"review_id":    dup.ReviewID,
					"status":       dup.Status,
					"request_date": dup.RequestDate,
				},
			})
		}
		return mapReviewError(c, err)
	}
	return created(c, r)
}

// POST /reviews/bulk
func (h *ReviewHandler) CreateBulk(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		PatientIDs []string `json:"patient_ids"`
		Platform   string   `json:"platform"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.PatientIDs) == 0 {
		return badRequest(c, "patient_ids is required")
	}

	patientIDs := make([]uuid.UUID, 0, len(body.PatientIDs))
	for _, raw := range body.PatientIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid patient id: "+raw)
		}
		patientIDs = append(patientIDs, id)
	}

	result, err := h.svc.CreateBulk(c.Context(), clinicID, patientIDs, body.Platform)
	if err != nil {
		return mapReviewError(c, err)
	}

	skipped := make([]fiber.Map, 0, len(result.AlreadyRequested))
	for pid, dup := range result.AlreadyRequested {
		skipped = append(skipped, fiber.Map{
			"patient_id":   pid,
			"review_id":    dup.ReviewID,
			"status":       dup.Status,
			"request_date": dup.RequestDate,
		})
	}

	return created(c, fiber.Map{
		"created":           result.Eligible,
		"already_requested": skipped,
	})
}

// GET /reviews/stats
func (h *ReviewHandler) Stats(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		From string `query:"from"`
		To   string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	from, err := parseDate(q.From)
	if err != nil {
		return badRequest(c, "invalid from date")
	}
	to, err := parseDate(q.To)
	if err != nil {
		return badRequest(c, "invalid to date")
	}

	stats, err := h.svc.Stats(c.Context(), clinicID, from, to)
	if err != nil {
		return mapReviewError(c, err)
	}

	return ok(c, fiber.Map{
		"total":          stats.Total,
		"by_status":      stats.ByStatus,
		"positive":       stats.Positive,
		"neutral":        stats.Neutral,
		"negative":       stats.Negative,
		"average_rating": stats.AverageRating,
	})
}

// GET /reviews/:id
func (h *ReviewHandler) Get(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	r, err := h.svc.GetByID(c.Context(), clinicID, reviewID)
	if err != nil {
		return mapReviewError(c, err)
	}
	return ok(c, r)
}

// PUT /reviews/:id/sent
func (h *ReviewHandler) MarkSent(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	r, err := h.svc.MarkSent(c.Context(), clinicID, reviewID)
	if err != nil {
		return mapReviewError(c, err)
	}
	return ok(c, r)
}

// PUT /reviews/:id/complete
func (h *ReviewHandler) Complete(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}
	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid review id")
	}

	var body struct {
		Status  string `json:"status"`
		Rating  *int   `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return badRequest(c, "status is required")
	}

	r, err := h.svc.Complete(c.Context(), clinicID, reviewID, body.Status, body.Rating, body.Comment)
	if err != nil {
		return mapReviewError(c, err)
	}
	return ok(c, r)
}
