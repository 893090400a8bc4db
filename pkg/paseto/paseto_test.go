package pasetotoken

import (
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	key := paseto.NewV4SymmetricKey()
	m, err := New(Config{
		Mode:      ModeLocal,
		Issuer:    "clinicpulse-test",
		Audience:  "clinicpulse-api",
		AccessTTL: 15 * time.Minute,
	}, Keys{Mode: ModeLocal, Symmetric: &key})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)

	sessionID := uuid.New()
	sub := Subject{
		ID:        uuid.New(),
		ClinicID:  uuid.New(),
		Scope:     ScopeStaff,
		SessionID: &sessionID,
	}

	tokenStr, err := m.IssueAccess(sub)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	claims, err := m.Verify(tokenStr)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.Type != TokenTypeAccess {
		t.Errorf("Type = %q, want %q", claims.Type, TokenTypeAccess)
	}
	if claims.Scope != ScopeStaff {
		t.Errorf("Scope = %q, want %q", claims.Scope, ScopeStaff)
	}
	if claims.SubjectID != sub.ID {
		t.Errorf("SubjectID = %v, want %v", claims.SubjectID, sub.ID)
	}
	if claims.ClinicID != sub.ClinicID {
		t.Errorf("ClinicID = %v, want %v", claims.ClinicID, sub.ClinicID)
	}
	if claims.SessionID == nil || *claims.SessionID != sessionID {
		t.Errorf("SessionID = %v, want %v", claims.SessionID, sessionID)
	}
	if claims.IsExpired() {
		t.Error("fresh token reported expired")
	}
}

func TestPatientTokenHasNoSession(t *testing.T) {
	m := newTestManager(t)

	tokenStr, err := m.IssueRefresh(Subject{
		ID:       uuid.New(),
		ClinicID: uuid.New(),
		Scope:    ScopePatient,
	})
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	claims, err := m.Verify(tokenStr)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Type != TokenTypeRefresh {
		t.Errorf("Type = %q, want %q", claims.Type, TokenTypeRefresh)
	}
	if claims.Scope != ScopePatient {
		t.Errorf("Scope = %q, want %q", claims.Scope, ScopePatient)
	}
	if claims.SessionID != nil {
		t.Errorf("SessionID = %v, want nil", claims.SessionID)
	}
}

func TestVerifyAcceptsTokenIssuedAfterConstruction(t *testing.T) {
	m := newTestManager(t)

	// Tokens are minted throughout the process lifetime, long after the
	// Manager exists. Verification must not pin "now" to construction time.
	time.Sleep(1500 * time.Millisecond)

	tokenStr, err := m.IssueAccess(Subject{ID: uuid.New(), ClinicID: uuid.New(), Scope: ScopeStaff})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := m.Verify(tokenStr); err != nil {
		t.Fatalf("Verify rejected a token issued after Manager construction: %v", err)
	}
}

func TestVerifyRejectsFutureNotBefore(t *testing.T) {
	key := paseto.NewV4SymmetricKey()
	m, err := New(Config{
		Mode:     ModeLocal,
		Issuer:   "clinicpulse-test",
		Audience: "clinicpulse-api",
	}, Keys{Mode: ModeLocal, Symmetric: &key})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	now := time.Now()
	tok := paseto.NewToken()
	tok.SetIssuer("clinicpulse-test")
	tok.SetAudience("clinicpulse-api")
	tok.SetJti("test-jti")
	tok.SetSubject(uuid.New().String())
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now.Add(time.Hour))
	tok.SetExpiration(now.Add(2 * time.Hour))
	tok.SetString("typ", string(TokenTypeAccess))
	tok.SetString("scope", string(ScopeStaff))
	tok.SetString("sub_id", uuid.New().String())
	tok.SetString("cid", uuid.New().String())

	if _, err := m.Verify(tok.V4Encrypt(key, nil)); err == nil {
		t.Error("expected verification failure for a token with nbf in the future")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	m := newTestManager(t)
	other := newTestManager(t)

	tokenStr, err := m.IssueAccess(Subject{ID: uuid.New(), ClinicID: uuid.New(), Scope: ScopeStaff})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := other.Verify(tokenStr); err == nil {
		t.Error("expected verification failure with a different key")
	}
}
