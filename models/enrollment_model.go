package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	StatusEnrolled  EnrollmentStatus = "enrolled"
	StatusCompleted EnrollmentStatus = "completed"
	StatusDropped   EnrollmentStatus = "dropped"
)

// CountedStatuses are the statuses that occupy a seat in a course's public
// enrollment count.
var CountedStatuses = []EnrollmentStatus{StatusEnrolled, StatusCompleted}

const MaxProgress = 100

// Enrollment is a student's registration in a course. Only records in the
// enrolled status accept further transitions.
type Enrollment struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      string           `gorm:"size:64;not null;index" json:"student_id"`
	CourseID       string           `gorm:"size:64;not null;index" json:"course_id"`
	Status         EnrollmentStatus `gorm:"size:20;not null;default:'enrolled';index" json:"status"`
	Progress       int              `gorm:"not null;default:0" json:"progress"`
	EnrollmentDate time.Time        `gorm:"not null;index" json:"enrollment_date"`
	CompletionDate *time.Time       `json:"completion_date"`
	DropDate       *time.Time       `json:"drop_date"`
	DropReason     *string          `gorm:"size:500" json:"drop_reason"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
