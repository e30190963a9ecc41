package scope

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/examdesk/complaints-api/internal/models"
)

// Scope is the visibility predicate for one caller. Every complaint read and
// mutation evaluates it; a complaint outside scope is indistinguishable from
// one that does not exist.
type Scope struct {
	unrestricted bool
	studentID    string
	faculty      string
	department   string
	courses      []string
	empty        bool
}

// Unrestricted is the all-complaints scope.
func Unrestricted() Scope { return Scope{unrestricted: true} }

// None is the empty scope: nothing is visible.
func None() Scope { return Scope{empty: true} }

// ForStudent scopes a student to exactly their own complaints.
func ForStudent(subjectID string) Scope {
	if subjectID == "" {
		return None()
	}
	return Scope{studentID: subjectID}
}

// For computes the scope for an identity. Admin scoping follows the position
// in fixed priority order, highest privilege first, so a dean who also
// teaches a course is scoped as a dean. Unknown or unset positions, and
// positions whose required attribute is missing, fail closed.
func For(identity *models.Identity, profile *models.AdminProfile) Scope {
	if identity == nil {
		return None()
	}
	if identity.Role == models.RoleStudent {
		return ForStudent(identity.SubjectID)
	}
	if profile == nil {
		return None()
	}

	switch profile.Position {
	case models.PositionAdmin, models.PositionSystemAdmin:
		return Unrestricted()
	case models.PositionDean:
		if profile.Faculty == "" {
			return None()
		}
		return Scope{faculty: profile.Faculty}
	case models.PositionHOD:
		if profile.Department == "" {
			return None()
		}
		return Scope{department: profile.Department}
	case models.PositionLecturer:
		if len(profile.Courses) == 0 {
			return None()
		}
		courses := make([]string, len(profile.Courses))
		copy(courses, profile.Courses)
		return Scope{courses: courses}
	default:
		return None()
	}
}

// IsUnrestricted reports whether the scope admits every complaint.
func (s Scope) IsUnrestricted() bool { return s.unrestricted }

// IsEmpty reports whether the scope admits no complaint at all.
func (s Scope) IsEmpty() bool {
	return s.empty
}

// Allows evaluates the predicate against a single complaint.
func (s Scope) Allows(c *models.Complaint) bool {
	if c == nil || s.empty {
		return false
	}
	switch {
	case s.unrestricted:
		return true
	case s.studentID != "":
		return c.StudentID == s.studentID
	case s.faculty != "":
		return c.Faculty == s.faculty
	case s.department != "":
		return c.Department == s.department
	case len(s.courses) > 0:
		for _, course := range s.courses {
			if c.Course != "" && c.Course == course {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// WhereClause renders the scope as a SQL predicate over the complaints table,
// numbering placeholders from argOffset. The caller appends the returned args
// to its argument list.
func (s Scope) WhereClause(argOffset int) (string, []interface{}) {
	switch {
	case s.empty:
		return "1=0", nil
	case s.unrestricted:
		return "1=1", nil
	case s.studentID != "":
		return fmt.Sprintf("student_id = $%d", argOffset), []interface{}{s.studentID}
	case s.faculty != "":
		return fmt.Sprintf("faculty = $%d", argOffset), []interface{}{s.faculty}
	case s.department != "":
		return fmt.Sprintf("department = $%d", argOffset), []interface{}{s.department}
	case len(s.courses) > 0:
		return fmt.Sprintf("course = ANY($%d)", argOffset), []interface{}{pq.Array(s.courses)}
	default:
		return "1=0", nil
	}
}
