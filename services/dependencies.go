package services

import (
	"context"

	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/models"
	"github.com/google/uuid"
)

// Directory is the read-only view of the student and course services.
type Directory interface {
	GetStudent(ctx context.Context, id string) (*directory.Student, error)
	GetCourse(ctx context.Context, id string) (*directory.Course, error)
}

type EnrollmentStore interface {
	CreateEnrollment(ctx context.Context, e *models.Enrollment) error
	FindByPair(ctx context.Context, studentID, courseID string, statuses ...models.EnrollmentStatus) (*models.Enrollment, error)
	UpdateActive(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Enrollment, error)
	CountByCourse(ctx context.Context, courseID string, statuses ...models.EnrollmentStatus) (int64, error)
}

type EnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	CountByCourse(ctx context.Context, courseID string, statuses ...models.EnrollmentStatus) (int64, error)
	CountsByCourse(ctx context.Context, statuses ...models.EnrollmentStatus) (map[string]int64, error)
	CountsByStatus(ctx context.Context) (map[models.EnrollmentStatus]int64, error)
	ListEnrollments(ctx context.Context, skip, limit int) ([]models.Enrollment, int64, error)
}

// Notifier delivers best-effort messages to students. Implementations must
// not block on failure.
type Notifier interface {
	EnrollmentConfirmed(ctx context.Context, student directory.Student, course directory.Course)
	CourseCompleted(ctx context.Context, student directory.Student, course directory.Course)
}

// EventPublisher receives committed enrollment changes. Publish must not block.
type EventPublisher interface {
	Publish(eventType string, e models.Enrollment)
}
