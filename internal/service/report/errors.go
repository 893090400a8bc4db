package report

import "errors"

var (
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrUnknownReportType = errors.New("unknown report type")
)
