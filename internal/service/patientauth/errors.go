package patientauth

import "errors"

var (
	ErrPatientNotFound = errors.New("no patient registered with this mobile")
	ErrOTPExpired      = errors.New("OTP has expired or does not exist")
	ErrOTPInvalid      = errors.New("OTP code is incorrect")
	ErrOTPMaxAttempts  = errors.New("too many incorrect OTP attempts")
	ErrInvalidMobile   = errors.New("invalid mobile number")
)
