package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Scope identifies which surface a token belongs to.
type Scope string

const (
	ScopeStaff   Scope = "staff"   // clinic dashboard
	ScopePatient Scope = "patient" // mobile app
)

// Claims is the app-facing token payload.
type Claims struct {
	Type  TokenType
	Scope Scope

	// SubjectID is the staff member ID for dashboard tokens and the
	// patient ID for mobile-app tokens.
	SubjectID uuid.UUID
	ClinicID  uuid.UUID
	SessionID *uuid.UUID

	Issuer   string
	Audience string

	IssuedAt    time.Time
	NotBefore   time.Time
	ExpiresAt   time.Time
	TokenID     string // jti
	Subject     string
	RawFooter   []byte
	RawClaimsJS []byte
}

func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
