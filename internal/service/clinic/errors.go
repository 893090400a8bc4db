package clinic

import "errors"

var (
	ErrClinicNotFound  = errors.New("clinic not found")
	ErrNoDefaultClinic = errors.New("no default clinic configured")
)
