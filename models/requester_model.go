package models

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Requester is the authenticated caller as read from the bearer token.
type Requester struct {
	ID    string
	Role  string
	Email string
	Name  string
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// CanActFor reports whether the caller is an admin or the student itself.
func (r Requester) CanActFor(studentID string) bool {
	return r.IsAdmin() || (r.ID != "" && r.ID == studentID)
}
