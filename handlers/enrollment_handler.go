package handlers

import (
	"github.com/anjiri1684/enrollment_service/middleware"
	"github.com/anjiri1684/enrollment_service/services"
	"github.com/anjiri1684/enrollment_service/utils"
	"github.com/gofiber/fiber/v2"
)

type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

type DropRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	DropReason string `json:"drop_reason" validate:"required,min=10,max=500"`
}

type ProgressRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

type CompleteRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	reports     *services.ReportService
}

func NewEnrollmentHandler(enrollments *services.EnrollmentService, reports *services.ReportService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, reports: reports}
}

func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	var body EnrollRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(body); err != nil {
		return validationError(c, err)
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), req, body.StudentID, body.CourseID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

func (h *EnrollmentHandler) Drop(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	var body DropRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(body); err != nil {
		return validationError(c, err)
	}

	enrollment, err := h.enrollments.Drop(c.UserContext(), req, body.StudentID, body.CourseID, body.DropReason)
	if err != nil {
		return err
	}
	return c.JSON(enrollment)
}

func (h *EnrollmentHandler) UpdateProgress(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	var body ProgressRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(body); err != nil {
		return validationError(c, err)
	}

	enrollment, err := h.enrollments.UpdateProgress(c.UserContext(), req, c.Params("enrollmentId"), *body.Progress)
	if err != nil {
		return err
	}
	return c.JSON(enrollment)
}

func (h *EnrollmentHandler) MarkComplete(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	var body CompleteRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(body); err != nil {
		return validationError(c, err)
	}

	ack, err := h.enrollments.MarkComplete(c.UserContext(), req, body.StudentID, body.CourseID)
	if err != nil {
		return err
	}
	return c.JSON(ack)
}

func (h *EnrollmentHandler) GetStudentEnrollments(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	progress, err := h.reports.StudentProgress(c.UserContext(), req, c.Params("studentId"))
	if err != nil {
		return err
	}
	return c.JSON(progress)
}

func (h *EnrollmentHandler) GetCourseEnrollments(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	roster, err := h.reports.CourseEnrollments(c.UserContext(), req, c.Params("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(roster)
}

func (h *EnrollmentHandler) GetCourseCount(c *fiber.Ctx) error {
	n, err := h.reports.CountForCourse(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *EnrollmentHandler) GetAllCounts(c *fiber.Ctx) error {
	counts, err := h.reports.CountsForAllCourses(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(counts)
}

func (h *EnrollmentHandler) GetStats(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	stats, err := h.reports.Stats(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *EnrollmentHandler) ListEnrollments(c *fiber.Ctx) error {
	req, err := middleware.CurrentRequester(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	skip, limit, err := utils.ParseSkipLimit(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	page, err := h.reports.List(c.UserContext(), req, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *EnrollmentHandler) ServiceStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"service": "Enrollment Service", "status": "running"})
}
