package notification

import "errors"

var (
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrInsufficientBalance   = errors.New("insufficient push notification balance")
	ErrNoAppInstallation     = errors.New("patient has no active app installation")
	ErrNotDeletable          = errors.New("only scheduled notifications can be deleted")
	ErrInvalidTransition     = errors.New("invalid notification status transition")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrEmptyBatch            = errors.New("batch contains no notifications")
	ErrMessageRequired       = errors.New("notification message is required")
)
