package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse_backend/internal/service/report"
)

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// GET /reports?type=overview&from=2026-01-01&to=2026-02-01
// Defaults to the overview report over the last 30 days.
func (h *ReportHandler) Generate(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromClaims(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Type string `query:"type"`
		From string `query:"from"`
		To   string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	reportType := q.Type
	if reportType == "" {
		reportType = report.TypeOverview
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if q.From != "" {
		t, err := parseDate(q.From)
		if err != nil {
			return badRequest(c, "invalid from date")
		}
		from = *t
	}
	if q.To != "" {
		t, err := parseDate(q.To)
		if err != nil {
			return badRequest(c, "invalid to date")
		}
		to = *t
	}

	result, err := h.svc.Generate(c.Context(), clinicID, reportType, from, to)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrInvalidDateRange):
			return badRequest(c, err.Error())
		case errors.Is(err, report.ErrUnknownReportType):
			return badRequest(c, err.Error())
		default:
			return internalError(c)
		}
	}

	return ok(c, fiber.Map{
		"type":   reportType,
		"from":   from,
		"to":     to,
		"report": result,
	})
}
