package routes

import (
	"github.com/anjiri1684/enrollment_service/handlers"
	"github.com/anjiri1684/enrollment_service/middleware"
	"github.com/gofiber/fiber/v2"
)

// EnrollmentRoutes mounts the enrollment API. Auth is attached per route
// because the count and status endpoints share the prefix and stay public.
// The event stream authenticates with its first websocket message.
func EnrollmentRoutes(app *fiber.App, h *handlers.EnrollmentHandler, ev *handlers.EventsHandler, jwtSecret string) {
	protected := middleware.Protected(jwtSecret)
	admin := middleware.AdminRequired()

	enrollments := app.Group("/enrollments")

	enrollments.Get("/service", h.ServiceStatus)
	enrollments.Get("/counts", h.GetAllCounts)
	enrollments.Get("/course/:courseId/count", h.GetCourseCount)

	enrollments.Post("", protected, h.Enroll)
	enrollments.Post("/drop", protected, h.Drop)
	enrollments.Get("/student/:studentId", protected, h.GetStudentEnrollments)
	enrollments.Get("/events", ev.Upgrade, ev.Stream())

	enrollments.Get("", protected, admin, h.ListEnrollments)
	enrollments.Get("/stats", protected, admin, h.GetStats)
	enrollments.Post("/complete", protected, admin, h.MarkComplete)
	enrollments.Put("/:enrollmentId/progress", protected, admin, h.UpdateProgress)
	enrollments.Get("/course/:courseId", protected, admin, h.GetCourseEnrollments)
}
