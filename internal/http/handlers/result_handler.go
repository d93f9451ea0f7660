package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"studioapi/internal/log"
	"studioapi/internal/services"
)

type ResultHandler struct {
	Results *services.ResultService
}

type resultRequest struct {
	Result json.RawMessage `json:"result"`
}

// Process must sit behind RequireBearer. The response is 202 whether or not
// the insert succeeds.
func (h *ResultHandler) Process(c *fiber.Ctx) error {
	uid, ok := c.Locals(log.LocalUserID).(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req resultRequest
	if len(c.Body()) > 0 {
		var err error = fiber.ErrUnsupportedMediaType
		if c.Is("json") {
			err = c.BodyParser(&req)
		}
		if err != nil {
			log.Security(c, "result.bad_body", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
		}
	}

	h.Results.Record(c.UserContext(), uid, req.Result)
	log.Audit(c, "result.accepted", nil)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "buffered",
		"message": "Result received",
	})
}
