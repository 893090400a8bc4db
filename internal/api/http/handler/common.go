package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
)

// clinicIDFromClaims resolves the clinic a request operates on. Both staff
// and patient tokens carry a clinic ID.
func clinicIDFromClaims(c fiber.Ctx) (uuid.UUID, bool) {
	claims, found := pasetotoken.ClaimsFromFiber(c)
	if !found || claims.ClinicID == uuid.Nil {
		return uuid.UUID{}, false
	}
	return claims.ClinicID, true
}

func subjectIDFromClaims(c fiber.Ctx) (uuid.UUID, bool) {
	claims, found := pasetotoken.ClaimsFromFiber(c)
	if !found || claims.SubjectID == uuid.Nil {
		return uuid.UUID{}, false
	}
	return claims.SubjectID, true
}

func pathUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
