package models

import "github.com/lib/pq"

// AdminPosition is the organizational post an administrator holds. The
// position decides which complaints the administrator may see.
type AdminPosition string

const (
	PositionLecturer    AdminPosition = "lecturer"
	PositionHOD         AdminPosition = "hod"
	PositionDean        AdminPosition = "dean"
	PositionAdmin       AdminPosition = "admin"
	PositionSystemAdmin AdminPosition = "system-administrator"
	PositionUnset       AdminPosition = ""
)

// AdminProfile holds the organizational attributes of an administrator.
// Read-only input to access scoping; owned by the profile store.
type AdminProfile struct {
	SubjectID  string         `db:"subject_id" json:"subject_id"`
	FullName   string         `db:"full_name" json:"full_name"`
	Email      string         `db:"email" json:"email"`
	Position   AdminPosition  `db:"position" json:"position"`
	Department string         `db:"department" json:"department,omitempty"`
	Faculty    string         `db:"faculty" json:"faculty,omitempty"`
	Courses    pq.StringArray `db:"courses" json:"courses,omitempty"`
}

// Teaches reports whether the profile's course list contains the course.
func (p *AdminProfile) Teaches(course string) bool {
	if course == "" {
		return false
	}
	for _, c := range p.Courses {
		if c == course {
			return true
		}
	}
	return false
}
