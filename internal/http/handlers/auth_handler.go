package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"studioapi/internal/log"
	"studioapi/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == nil || req.Password == nil {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "missing_fields"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing email or password"})
	}
	email := *req.Email

	u, err := h.Auth.Login(c.UserContext(), email, *req.Password)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "unknown_user"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	case errors.Is(err, services.ErrBadCreds):
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	case err != nil:
		// the raw error text goes back to the caller, as the frontend expects
		log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Locals(log.LocalUserID, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"message": "Login successful", "user": u})
}
