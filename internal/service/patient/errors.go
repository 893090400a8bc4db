package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this mobile already exists in this clinic")
	ErrInvalidMobile        = errors.New("invalid mobile number")
)
