package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"studioapi/internal/auth"
	applog "studioapi/internal/log"
)

// LocalClaims is the fiber.Ctx locals key holding the verified claim set.
const LocalClaims = "claims"

// RequireBearer verifies the Authorization bearer token and stores the claims
// and numeric user id in locals. Nothing behind it runs without a verified
// token.
func RequireBearer(v *auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			applog.Security(c, "auth.token.missing", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		claims, err := v.Verify(token)
		if err != nil {
			applog.Security(c, "auth.token.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": tokenErrorMessage(err)})
		}
		uid, err := auth.UserID(claims)
		if err != nil {
			applog.Security(c, "auth.token.fail", map[string]any{"reason": "missing_user_id"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": tokenErrorMessage(err)})
		}

		c.Locals(LocalClaims, claims)
		c.Locals(applog.LocalUserID, uid)
		return c.Next()
	}
}

// bearerToken takes the text between the first and second single space, so
// "Bearer  abc" yields no token.
func bearerToken(header string) (string, bool) {
	rest, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token, _, _ := strings.Cut(rest, " ")
	return token, token != ""
}

func tokenErrorMessage(err error) string {
	if errors.Is(err, auth.ErrTokenExpired) {
		return "Token expired"
	}
	return "Invalid token"
}
