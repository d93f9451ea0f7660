package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"studioapi/internal/http/handlers"
	applog "studioapi/internal/log"
)

const bodyLimit = 1 << 20 // 1 MiB

// New builds the fiber app with middleware and the /api routes.
func New(deps *handlers.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "studioapi",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type, Authorization, X-Requested-With",
		MaxAge:       86400,
	}))

	api := app.Group("/api")
	api.Get("/health", deps.HealthHandler.Health)

	loginChain := []fiber.Handler{}
	if n := deps.Config.LoginRateLimit; n > 0 {
		loginChain = append(loginChain, limiter.New(limiter.Config{
			Max:        n,
			Expiration: 10 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.login.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
			},
		}))
	}
	loginChain = append(loginChain, deps.AuthHandler.Login)
	api.Post("/login", loginChain...)

	api.Post("/process-result", handlers.RequireBearer(deps.Verifier), deps.ResultHandler.Process)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})
	return app
}

// errorHandler renders framework errors as JSON. Messages of fiber errors
// (bad body, too large) are kept; anything else is logged and hidden.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
