package services

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

const (
	CodeForbidden                 = "forbidden"
	CodeStudentNotFound           = "student_not_found"
	CodeCourseNotFound            = "course_not_found"
	CodeEnrollmentNotFound        = "enrollment_not_found"
	CodeAlreadyEnrolled           = "already_enrolled"
	CodeAlreadyCompleted          = "already_completed"
	CodeCourseFull                = "course_full"
	CodeInvalidInput              = "invalid_input"
	CodeStudentServiceUnavailable = "student_service_unavailable"
	CodeCourseServiceUnavailable  = "course_service_unavailable"
)

// Error is a domain failure with a stable code and a caller-facing message.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func forbidden(msg string) *Error {
	return &Error{Kind: ErrForbidden, Code: CodeForbidden, Message: msg}
}

func notFound(code, msg string) *Error {
	return &Error{Kind: ErrNotFound, Code: code, Message: msg}
}

func conflict(code, msg string) *Error {
	return &Error{Kind: ErrConflict, Code: code, Message: msg}
}

func invalidInput(msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Code: CodeInvalidInput, Message: msg}
}

func unavailable(code, msg string, err error) *Error {
	return &Error{Kind: ErrDependencyUnavailable, Code: code, Message: msg, Err: err}
}

func activeEnrollmentNotFound() *Error {
	return notFound(CodeEnrollmentNotFound, "Active enrollment not found")
}
