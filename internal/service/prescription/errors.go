package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrUploadNotFound       = errors.New("uploaded prescription not found")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrInvalidMedicines     = errors.New("invalid medicines payload")
	ErrEmptyFile            = errors.New("uploaded file is empty")
	ErrFileTooLarge         = errors.New("uploaded file exceeds size limit")
)
