package services

import (
	"context"
	"errors"
	"sync"

	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/models"
	"golang.org/x/sync/errgroup"
)

const (
	unknownStudent = "Unknown"
	unknownCourse  = "Unknown Course"
)

// ReportService builds read-only views over enrollments joined with directory
// facts. Directory failures for individual students or courses degrade the
// view instead of failing it; only the course lookup in CourseEnrollments is
// required.
type ReportService struct {
	store  EnrollmentReader
	dir    Directory
	log    *logger.Logger
	fanout int
}

func NewReportService(store EnrollmentReader, dir Directory, log *logger.Logger, fanout int) *ReportService {
	if fanout < 1 {
		fanout = 1
	}
	return &ReportService{
		store:  store,
		dir:    dir,
		log:    log.With("component", "reports"),
		fanout: fanout,
	}
}

func (s *ReportService) StudentProgress(ctx context.Context, req models.Requester, studentID string) (*models.StudentProgress, error) {
	if !req.CanActFor(studentID) {
		return nil, forbidden("Not authorized to access this resource")
	}
	records, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := &models.StudentProgress{Enrollments: []models.EnrollmentDetail{}}
	if len(records) == 0 {
		return out, nil
	}

	name, email := unknownStudent, unknownStudent
	if student, err := s.dir.GetStudent(ctx, studentID); err == nil {
		name, email = student.Name, student.Email
	} else {
		s.log.Warn("student lookup failed, using placeholder", "student_id", studentID, "error", err)
	}

	courseIDs := make([]string, 0, len(records))
	for _, e := range records {
		courseIDs = append(courseIDs, e.CourseID)
	}
	courses := s.resolveCourses(ctx, courseIDs)

	for _, e := range records {
		title, credits := unknownCourse, 0
		if c, ok := courses[e.CourseID]; ok {
			title, credits = c.Title, c.Credits
		}

		switch e.Status {
		case models.StatusEnrolled:
			out.TotalEnrolled++
			out.TotalCreditsEnrolled += credits
		case models.StatusCompleted:
			out.TotalCompleted++
			out.TotalCreditsEnrolled += credits
			out.TotalCreditsCompleted += credits
		case models.StatusDropped:
			out.TotalDropped++
		}

		out.Enrollments = append(out.Enrollments, models.EnrollmentDetail{
			ID:             e.ID.String(),
			StudentID:      e.StudentID,
			CourseID:       e.CourseID,
			StudentName:    name,
			StudentEmail:   email,
			CourseTitle:    title,
			CourseCredits:  credits,
			Status:         e.Status,
			Progress:       e.Progress,
			EnrollmentDate: e.EnrollmentDate,
			CompletionDate: e.CompletionDate,
			DropDate:       e.DropDate,
			DropReason:     e.DropReason,
		})
	}
	return out, nil
}

// CourseEnrollments returns the course roster. Students whose profile cannot
// be fetched are left out of the roster but still counted.
func (s *ReportService) CourseEnrollments(ctx context.Context, req models.Requester, courseID string) (*models.CourseEnrollments, error) {
	if !req.IsAdmin() {
		return nil, forbidden("Admin access required")
	}
	course, err := s.dir.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, notFound(CodeCourseNotFound, "Course not found")
		}
		return nil, unavailable(CodeCourseServiceUnavailable, "Course service unavailable", err)
	}

	records, err := s.store.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]string, 0, len(records))
	for _, e := range records {
		studentIDs = append(studentIDs, e.StudentID)
	}
	students := s.resolveStudents(ctx, studentIDs)

	out := &models.CourseEnrollments{
		CourseID:         courseID,
		CourseTitle:      course.Title,
		TotalEnrollments: len(records),
		Students:         []models.RosterEntry{},
	}
	for _, e := range records {
		switch e.Status {
		case models.StatusEnrolled:
			out.ActiveEnrollments++
		case models.StatusCompleted:
			out.CompletedEnrollments++
		case models.StatusDropped:
			out.DroppedEnrollments++
		}

		st, ok := students[e.StudentID]
		if !ok {
			continue
		}
		out.Students = append(out.Students, models.RosterEntry{
			ID:             st.ID,
			Name:           st.Name,
			Email:          st.Email,
			Status:         e.Status,
			Progress:       e.Progress,
			EnrollmentDate: e.EnrollmentDate,
		})
	}
	return out, nil
}

// CountForCourse counts enrolled and completed records for one course.
func (s *ReportService) CountForCourse(ctx context.Context, courseID string) (int64, error) {
	return s.store.CountByCourse(ctx, courseID, models.CountedStatuses...)
}

func (s *ReportService) CountsForAllCourses(ctx context.Context) (map[string]int64, error) {
	return s.store.CountsByCourse(ctx, models.CountedStatuses...)
}

func (s *ReportService) Stats(ctx context.Context, req models.Requester) (*models.EnrollmentStats, error) {
	if !req.IsAdmin() {
		return nil, forbidden("Admin access required")
	}
	counts, err := s.store.CountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &models.EnrollmentStats{
		Enrolled:  counts[models.StatusEnrolled],
		Completed: counts[models.StatusCompleted],
		Dropped:   counts[models.StatusDropped],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *ReportService) List(ctx context.Context, req models.Requester, skip, limit int) (*models.EnrollmentPage, error) {
	if !req.IsAdmin() {
		return nil, forbidden("Admin access required")
	}
	if skip < 0 || limit < 1 {
		return nil, invalidInput("skip must be >= 0 and limit must be >= 1")
	}
	records, total, err := s.store.ListEnrollments(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Enrollment{}
	}
	return &models.EnrollmentPage{Enrollments: records, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *ReportService) resolveCourses(ctx context.Context, ids []string) map[string]*directory.Course {
	return resolve(ctx, s.fanout, ids, s.dir.GetCourse, func(id string, err error) {
		s.log.Warn("course lookup failed, using placeholder", "course_id", id, "error", err)
	})
}

func (s *ReportService) resolveStudents(ctx context.Context, ids []string) map[string]*directory.Student {
	return resolve(ctx, s.fanout, ids, s.dir.GetStudent, func(id string, err error) {
		s.log.Warn("student lookup failed, omitting from roster", "student_id", id, "error", err)
	})
}

// resolve fetches each distinct id at most once with at most limit calls in
// flight. Failed ids are reported to onErr and absent from the result.
func resolve[T any](ctx context.Context, limit int, ids []string, fetch func(context.Context, string) (*T, error), onErr func(string, error)) map[string]*T {
	var (
		mu  sync.Mutex
		out = make(map[string]*T, len(ids))
		g   errgroup.Group
	)
	g.SetLimit(limit)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		id := id
		g.Go(func() error {
			v, err := fetch(ctx, id)
			if err != nil {
				onErr(id, err)
				return nil
			}
			mu.Lock()
			out[id] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
