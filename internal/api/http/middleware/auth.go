package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	pasetotoken "github.com/clinicpulse/clinicpulse_backend/pkg/paseto"
)

// AuthRequired validates a Bearer PASETO access token with staff scope and
// checks the session in Redis. On success, stores *pasetotoken.Claims in
// c.Locals(pasetotoken.CtxKeyClaims).
func AuthRequired(mgr *pasetotoken.Manager, rdb *redis.Client) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, err := bearerClaims(c, mgr)
		if err != nil {
			return err
		}

		if claims.Scope != pasetotoken.ScopeStaff {
			return fiber.ErrForbidden
		}

		// Validate session in Redis
		if claims.SessionID != nil {
			key := "session:staff:" + claims.SessionID.String()
			if err := rdb.Get(c.Context(), key).Err(); err != nil {
				return fiber.ErrUnauthorized
			}
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		return c.Next()
	}
}

// PatientAuthRequired validates a Bearer PASETO access token with patient
// scope. Patient tokens are sessionless; expiry alone bounds them.
func PatientAuthRequired(mgr *pasetotoken.Manager) fiber.Handler {
	return pasetotoken.FiberAuth(mgr, pasetotoken.ScopePatient)
}

func bearerClaims(c fiber.Ctx, mgr *pasetotoken.Manager) (*pasetotoken.Claims, error) {
	h := c.Get("Authorization")
	if h == "" {
		return nil, fiber.ErrUnauthorized
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fiber.ErrUnauthorized
	}

	claims, err := mgr.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fiber.ErrUnauthorized
	}

	// Only access tokens are accepted on protected routes
	if claims.Type != pasetotoken.TokenTypeAccess {
		return nil, fiber.ErrUnauthorized
	}

	return claims, nil
}
