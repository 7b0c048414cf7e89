package routes

import (
	"time"

	"github.com/anjiri1684/enrollment_service/handlers"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app with the shared middleware stack. Routes are
// registered separately.
func NewApp(log *logger.Logger, corsOrigins string, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Enrollment Service",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(log),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	if accessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	app.Get("/health", handlers.HealthCheck)
	return app
}
