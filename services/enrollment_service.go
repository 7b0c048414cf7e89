package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/anjiri1684/enrollment_service/database"
	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/events"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/models"
	"github.com/google/uuid"
)

const (
	minDropReason = 10
	maxDropReason = 500
)

// EnrollmentService runs the enrollment lifecycle: enrolled is the only
// initial state, and dropped and completed are terminal.
//
// Enroll checks capacity and then inserts in two separate store calls, so
// concurrent enrollments near the limit can both succeed and leave a course
// transiently over capacity. Only the active-pair unique index is enforced
// atomically.
type EnrollmentService struct {
	store  EnrollmentStore
	dir    Directory
	notify Notifier
	events EventPublisher
	log    *logger.Logger
	now    func() time.Time

	pending sync.WaitGroup
}

// NewEnrollmentService wires the engine. notify may be nil.
func NewEnrollmentService(store EnrollmentStore, dir Directory, notify Notifier, log *logger.Logger) *EnrollmentService {
	return &EnrollmentService{
		store:  store,
		dir:    dir,
		notify: notify,
		log:    log.With("component", "enrollments"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithEvents publishes every committed transition to p.
func (s *EnrollmentService) WithEvents(p EventPublisher) *EnrollmentService {
	s.events = p
	return s
}

func (s *EnrollmentService) publish(eventType string, e *models.Enrollment) {
	if s.events != nil {
		s.events.Publish(eventType, *e)
	}
}

func (s *EnrollmentService) Enroll(ctx context.Context, req models.Requester, studentID, courseID string) (*models.Enrollment, error) {
	studentID, courseID, err := normalizePair(studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !req.CanActFor(studentID) {
		return nil, forbidden("Can only enroll yourself")
	}

	student, err := s.dir.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, notFound(CodeStudentNotFound, "Student not found")
		}
		return nil, unavailable(CodeStudentServiceUnavailable, "Student service unavailable", err)
	}
	course, err := s.dir.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, notFound(CodeCourseNotFound, "Course not found")
		}
		return nil, unavailable(CodeCourseServiceUnavailable, "Course service unavailable", err)
	}

	existing, err := s.store.FindByPair(ctx, studentID, courseID, models.StatusEnrolled, models.StatusCompleted)
	switch {
	case err == nil && existing.Status == models.StatusCompleted:
		return nil, conflict(CodeAlreadyCompleted, "Already completed this course")
	case err == nil:
		return nil, conflict(CodeAlreadyEnrolled, "Already enrolled in this course")
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	if course.HasCapacityLimit() {
		current, err := s.store.CountByCourse(ctx, courseID, models.StatusEnrolled)
		if err != nil {
			return nil, err
		}
		if current >= int64(*course.MaxStudents) {
			return nil, conflict(CodeCourseFull, "Course is full")
		}
	}

	e := &models.Enrollment{
		StudentID:      studentID,
		CourseID:       courseID,
		Status:         models.StatusEnrolled,
		Progress:       0,
		EnrollmentDate: s.now(),
	}
	if err := s.store.CreateEnrollment(ctx, e); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflict(CodeAlreadyEnrolled, "Already enrolled in this course")
		}
		return nil, err
	}

	s.log.Info("student enrolled", "enrollment_id", e.ID, "student_id", studentID, "course_id", courseID)
	s.publish(events.TypeEnrolled, e)
	if s.notify != nil {
		s.async(ctx, func(ctx context.Context) {
			s.notify.EnrollmentConfirmed(ctx, *student, *course)
		})
	}
	return e, nil
}

func (s *EnrollmentService) Drop(ctx context.Context, req models.Requester, studentID, courseID, reason string) (*models.Enrollment, error) {
	studentID, courseID, err := normalizePair(studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !req.CanActFor(studentID) {
		return nil, forbidden("Can only drop your own courses")
	}
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < minDropReason || n > maxDropReason {
		return nil, invalidInput(fmt.Sprintf("drop_reason must be between %d and %d characters", minDropReason, maxDropReason))
	}

	active, err := s.store.FindByPair(ctx, studentID, courseID, models.StatusEnrolled)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, activeEnrollmentNotFound()
		}
		return nil, err
	}

	updated, err := s.store.UpdateActive(ctx, active.ID, map[string]interface{}{
		"status":      models.StatusDropped,
		"drop_date":   s.now(),
		"drop_reason": reason,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, activeEnrollmentNotFound()
		}
		return nil, err
	}
	s.log.Info("enrollment dropped", "enrollment_id", updated.ID, "student_id", studentID, "course_id", courseID)
	s.publish(events.TypeDropped, updated)
	return updated, nil
}

// UpdateProgress sets progress on an active enrollment. Reaching 100
// completes it.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, req models.Requester, enrollmentID string, progress int) (*models.Enrollment, error) {
	if !req.IsAdmin() {
		return nil, forbidden("Admin access required")
	}
	if progress < 0 || progress > models.MaxProgress {
		return nil, invalidInput(fmt.Sprintf("progress must be between 0 and %d", models.MaxProgress))
	}
	id, err := uuid.Parse(enrollmentID)
	if err != nil {
		return nil, invalidInput("Invalid enrollment ID format")
	}

	updates := map[string]interface{}{"progress": progress}
	completed := progress >= models.MaxProgress
	if completed {
		updates["progress"] = models.MaxProgress
		updates["status"] = models.StatusCompleted
		updates["completion_date"] = s.now()
	}

	updated, err := s.store.UpdateActive(ctx, id, updates)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, activeEnrollmentNotFound()
		}
		return nil, err
	}
	if completed {
		s.log.Info("enrollment completed by progress", "enrollment_id", updated.ID)
		s.publish(events.TypeCompleted, updated)
		s.notifyCompletion(ctx, updated.StudentID, updated.CourseID)
	} else {
		s.publish(events.TypeProgress, updated)
	}
	return updated, nil
}

func (s *EnrollmentService) MarkComplete(ctx context.Context, req models.Requester, studentID, courseID string) (*models.CompletionAck, error) {
	if !req.IsAdmin() {
		return nil, forbidden("Admin access required")
	}
	studentID, courseID, err := normalizePair(studentID, courseID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.FindByPair(ctx, studentID, courseID, models.StatusEnrolled)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, activeEnrollmentNotFound()
		}
		return nil, err
	}

	updated, err := s.store.UpdateActive(ctx, active.ID, map[string]interface{}{
		"status":          models.StatusCompleted,
		"progress":        models.MaxProgress,
		"completion_date": s.now(),
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, activeEnrollmentNotFound()
		}
		return nil, err
	}

	s.log.Info("enrollment marked complete", "enrollment_id", active.ID, "student_id", studentID, "course_id", courseID)
	s.publish(events.TypeCompleted, updated)
	s.notifyCompletion(ctx, studentID, courseID)
	return &models.CompletionAck{
		Message:   "Course marked as completed",
		StudentID: studentID,
		CourseID:  courseID,
	}, nil
}

// normalizePair trims both ids so authorization and storage see the same values.
func normalizePair(studentID, courseID string) (string, string, error) {
	studentID, courseID = strings.TrimSpace(studentID), strings.TrimSpace(courseID)
	if studentID == "" || courseID == "" {
		return "", "", invalidInput("student_id and course_id are required")
	}
	return studentID, courseID, nil
}

// Wait blocks until in-flight notifications have finished.
func (s *EnrollmentService) Wait() {
	s.pending.Wait()
}

func (s *EnrollmentService) notifyCompletion(ctx context.Context, studentID, courseID string) {
	if s.notify == nil {
		return
	}
	s.async(ctx, func(ctx context.Context) {
		student, err := s.dir.GetStudent(ctx, studentID)
		if err != nil {
			s.log.Warn("skipping completion email, student lookup failed", "student_id", studentID, "error", err)
			return
		}
		course, err := s.dir.GetCourse(ctx, courseID)
		if err != nil {
			s.log.Warn("skipping completion email, course lookup failed", "course_id", courseID, "error", err)
			return
		}
		s.notify.CourseCompleted(ctx, *student, *course)
	})
}

// async runs fn after the request returns, detached from its cancellation.
func (s *EnrollmentService) async(ctx context.Context, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		fn(detached)
	}()
}
