package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/enrollment_service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByPair returns the most recent enrollment for the student and course
// whose status is one of statuses.
func (s *Store) FindByPair(ctx context.Context, studentID, courseID string, statuses ...models.EnrollmentStatus) (*models.Enrollment, error) {
	var e models.Enrollment
	q := s.DB.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("enrollment_date DESC").First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &e, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := s.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment %s: %w", id, err)
	}
	return &e, nil
}

// UpdateActive applies updates to the enrollment only while it is still
// enrolled, in a single conditional UPDATE. It returns ErrNotFound when no
// active record matched.
func (s *Store) UpdateActive(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Enrollment, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", id, models.StatusEnrolled).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update enrollment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *Store) CountByCourse(ctx context.Context, courseID string, statuses ...models.EnrollmentStatus) (int64, error) {
	var n int64
	q := s.DB.WithContext(ctx).Model(&models.Enrollment{}).Where("course_id = ?", courseID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count enrollments for course %s: %w", courseID, err)
	}
	return n, nil
}

func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := s.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("enrollment_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list enrollments for student %s: %w", studentID, err)
	}
	return out, nil
}

func (s *Store) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := s.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("enrollment_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list enrollments for course %s: %w", courseID, err)
	}
	return out, nil
}

// CountsByCourse groups records with the given statuses by course in one pass.
// Courses without a matching record are absent from the result.
func (s *Store) CountsByCourse(ctx context.Context, statuses ...models.EnrollmentStatus) (map[string]int64, error) {
	var rows []struct {
		CourseID string
		Count    int64
	}
	q := s.DB.WithContext(ctx).Model(&models.Enrollment{}).Select("course_id, COUNT(*) AS count")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Group("course_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count enrollments by course: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.CourseID] = r.Count
	}
	return out, nil
}

func (s *Store) CountsByStatus(ctx context.Context) (map[models.EnrollmentStatus]int64, error) {
	var rows []struct {
		Status models.EnrollmentStatus
		Count  int64
	}
	err := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count enrollments by status: %w", err)
	}
	out := make(map[models.EnrollmentStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *Store) ListEnrollments(ctx context.Context, skip, limit int) ([]models.Enrollment, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Enrollment{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	var out []models.Enrollment
	err := s.DB.WithContext(ctx).
		Order("enrollment_date DESC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	return out, total, nil
}
