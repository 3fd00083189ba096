package start

import (
	"msifactory/pkg/core/fiber_handle"

	"github.com/gofiber/fiber/v2"
	recover2 "github.com/gofiber/fiber/v2/middleware/recover"
)

func GetApp() *fiber.App {
	app := fiber.New(
		fiber.Config{
			BodyLimit:    10 * 1024 * 1024,
			ErrorHandler: fiber_handle.ErrHandler,
		})
	app.Use(fiber_handle.Cors())
	app.Use(recover2.New(recover2.Config{
		EnableStackTrace: true,
	}))
	app.Use(fiber_handle.HealthCheck(fiber_handle.HealthCheckConfig{Path: "/health"}))
	app.Use(fiber_handle.NewApiTrace())
	return app
}
