package model

import "strings"

// Role is the coarse authorization label stored on a user record.  A user
// without a stored role is RoleUnset and is treated as a student.
type Role string

const (
	RoleUnset      Role = ""
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
	RoleAdmin      Role = "Admin"
)

// ParseRole maps an admin-submitted role name onto a known Role.  Matching is
// case-insensitive; the second result is false for anything unrecognised.
// Stored values go through RoleFromStore instead.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "instructor":
		return RoleInstructor, true
	case "student":
		return RoleStudent, true
	case "":
		return RoleUnset, true
	}
	return RoleUnset, false
}

// RoleFromStore interprets a stored role string.  Matching is exact: only
// "Admin" and "Instructor" carry privilege, and any other value, including
// "admin", collapses to RoleUnset.
func RoleFromStore(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleInstructor:
		return RoleInstructor
	case RoleStudent:
		return RoleStudent
	}
	return RoleUnset
}

// IsPrivileged reports whether the role is Admin or Instructor.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleInstructor:
		return true
	case RoleStudent, RoleUnset:
		return false
	}
	return false
}

// Display is the role as reported to clients; an unset role reads as Student.
func (r Role) Display() string {
	if r == RoleUnset {
		return string(RoleStudent)
	}
	return string(r)
}
