package handlers

import "github.com/gofiber/fiber/v2"

type writeFailureCounter interface {
	WriteFailures() uint64
}

type HealthHandler struct {
	DB writeFailureCounter
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok", "message": "Backend is running"}
	if h.DB != nil {
		resp["write_failures"] = h.DB.WriteFailures()
	}
	return c.JSON(resp)
}
