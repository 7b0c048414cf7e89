package models

import "time"

// EnrollmentDetail is an enrollment joined with the student and course facts
// fetched from the directory services.
type EnrollmentDetail struct {
	ID             string           `json:"id"`
	StudentID      string           `json:"student_id"`
	CourseID       string           `json:"course_id"`
	StudentName    string           `json:"student_name"`
	StudentEmail   string           `json:"student_email"`
	CourseTitle    string           `json:"course_title"`
	CourseCredits  int              `json:"course_credits"`
	Status         EnrollmentStatus `json:"status"`
	Progress       int              `json:"progress"`
	EnrollmentDate time.Time        `json:"enrollment_date"`
	CompletionDate *time.Time       `json:"completion_date"`
	DropDate       *time.Time       `json:"drop_date"`
	DropReason     *string          `json:"drop_reason"`
}

type StudentProgress struct {
	TotalEnrolled         int                `json:"total_enrolled"`
	TotalCompleted        int                `json:"total_completed"`
	TotalDropped          int                `json:"total_dropped"`
	TotalCreditsEnrolled  int                `json:"total_credits_enrolled"`
	TotalCreditsCompleted int                `json:"total_credits_completed"`
	Enrollments           []EnrollmentDetail `json:"enrollments"`
}

type RosterEntry struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Status         EnrollmentStatus `json:"status"`
	Progress       int              `json:"progress"`
	EnrollmentDate time.Time        `json:"enrollment_date"`
}

type CourseEnrollments struct {
	CourseID             string        `json:"course_id"`
	CourseTitle          string        `json:"course_title"`
	TotalEnrollments     int           `json:"total_enrollments"`
	ActiveEnrollments    int           `json:"active_enrollments"`
	CompletedEnrollments int           `json:"completed_enrollments"`
	DroppedEnrollments   int           `json:"dropped_enrollments"`
	Students             []RosterEntry `json:"students"`
}

type EnrollmentStats struct {
	Total     int64 `json:"total"`
	Enrolled  int64 `json:"enrolled"`
	Completed int64 `json:"completed"`
	Dropped   int64 `json:"dropped"`
}

type EnrollmentPage struct {
	Enrollments []Enrollment `json:"enrollments"`
	Total       int64        `json:"total"`
	Skip        int          `json:"skip"`
	Limit       int          `json:"limit"`
}

type CompletionAck struct {
	Message   string `json:"message"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}
