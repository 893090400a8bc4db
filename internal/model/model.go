// Package model defines the persistence layer entities. All tables are
// clinic-scoped; every query in the service layer filters on clinic_id.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification status lifecycle. Transitions stamp the matching timestamp
// column; failed is terminal from any pre-read state.
const (
	NotificationStatusScheduled = "scheduled"
	NotificationStatusSent      = "sent"
	NotificationStatusDelivered = "delivered"
	NotificationStatusRead      = "read"
	NotificationStatusFailed    = "failed"
)

// Review request lifecycle.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusSent     = "sent"
	ReviewStatusReceived = "received"
	ReviewStatusSkipped  = "skipped"
	ReviewStatusFailed   = "failed"
)

const DeliveryMethodPush = "push"

type Clinic struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"size:255;not null"`
	DoctorName string    `gorm:"size:255"`
	Email      string    `gorm:"size:255"`
	Phone      string    `gorm:"size:64"`
	Address    string

	LogoURL        string `gorm:"size:512"`
	PrimaryColor   string `gorm:"size:32"`
	SecondaryColor string `gorm:"size:32"`

	SubscriptionPlan   string `gorm:"size:64"`
	SubscriptionStatus string `gorm:"size:32"`

	// PushNotificationBalance is the remaining push credit count. It is only
	// mutated inside the notification service's transactions.
	PushNotificationBalance int `gorm:"not null;default:0"`

	// IsDefault marks the clinic served by the public branding endpoint.
	IsDefault bool `gorm:"not null;default:false"`

	Settings datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Staff is a dashboard user. PasswordHash is an argon2id PHC string.
type Staff struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	Name         string    `gorm:"size:255"`
	Role         string    `gorm:"size:32;not null;default:staff"`
	LastLoginAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Clinic *Clinic `gorm:"foreignKey:ClinicID"`
}

type Patient struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_patients_clinic_mobile"`

	Name   string `gorm:"size:255;not null"`
	Mobile string `gorm:"size:32;not null;uniqueIndex:ux_patients_clinic_mobile"`
	// MobileSuffix is the last ten digits of Mobile, kept for suffix search.
	MobileSuffix string `gorm:"size:10;index"`

	Email     string `gorm:"size:255"`
	Gender    string `gorm:"size:16"`
	Age       *int
	BirthDate *time.Time
	Address   string

	VisitDate     *time.Time
	NextVisitDate *time.Time

	OptedOut bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Clinic *Clinic `gorm:"foreignKey:ClinicID"`
}

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`

	Diagnosis string
	// Medicines is always the structured []Medicine shape. Legacy shapes are
	// converted once at ingestion by ParseMedicines.
	Medicines datatypes.JSON

	VisitDate     *time.Time
	NextVisitDate *time.Time
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time

	Patient *Patient `gorm:"foreignKey:PatientID"`
}

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`

	Type     string `gorm:"size:64"`
	Category string `gorm:"size:64"`
	Title    string `gorm:"size:255"`
	Message  string `gorm:"not null"`

	ScheduledDate  *time.Time `gorm:"index"`
	Status         string     `gorm:"size:16;not null;index"`
	DeliveryMethod string     `gorm:"size:16;not null;default:push"`

	SentAt      *time.Time
	DeliveredAt *time.Time
	ReadAt      *time.Time
	FailedAt    *time.Time
	FailReason  string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Patient *Patient `gorm:"foreignKey:PatientID"`
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`

	Status      string `gorm:"size:16;not null;index"`
	Platform    string `gorm:"size:64"`
	Rating      *int
	Comment     string
	RequestDate time.Time `gorm:"not null;index"`
	SentAt      *time.Time
	ReceivedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Patient *Patient `gorm:"foreignKey:PatientID"`
}

// AppInstallation records an active mobile-app login binding for a patient.
// Push notifications require an active installation.
type AppInstallation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	DeviceToken string `gorm:"size:512"`
	Platform    string `gorm:"size:16"`
	Active      bool   `gorm:"not null;default:true"`
	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type UploadedPrescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`

	FileName    string `gorm:"size:255;not null"`
	ObjectKey   string `gorm:"size:512;not null"`
	ContentType string `gorm:"size:128"`
	SizeBytes   int64
	UploadedBy  uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotificationTemplate is a catalogue entry for the follow-up rules surface.
type NotificationTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Category string    `gorm:"size:64;not null"`
	Title    string    `gorm:"size:255;not null"`
	Body     string    `gorm:"not null"`
	// OffsetDays is how many days after the visit the follow-up fires.
	OffsetDays int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// All returns every entity for AutoMigrate.
func All() []any {
	return []any{
		&Clinic{},
		&Staff{},
		&Patient{},
		&Prescription{},
		&Notification{},
		&Review{},
		&AppInstallation{},
		&UploadedPrescription{},
		&NotificationTemplate{},
	}
}
