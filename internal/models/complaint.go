package models

import "time"

// ComplaintStatus enumerates the lifecycle states of a complaint.
type ComplaintStatus string

const (
	StatusPending     ComplaintStatus = "pending"
	StatusUnderReview ComplaintStatus = "under-review"
	StatusResolved    ComplaintStatus = "resolved"
	StatusRejected    ComplaintStatus = "rejected"
)

// ValidStatus reports whether s is one of the four enumerated statuses.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusResolved, StatusRejected:
		return true
	default:
		return false
	}
}

// Complaint represents a student-submitted exam grievance. The reference
// number is assigned at submission and never changes; the status is mutated
// only through lifecycle transitions.
type Complaint struct {
	ID              string          `db:"id" json:"id"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number"`
	StudentID       string          `db:"student_id" json:"student_id"`
	StudentName     string          `db:"student_name" json:"student_name"`
	ExamName        string          `db:"exam_name" json:"exam_name"`
	Course          string          `db:"course" json:"course,omitempty"`
	Department      string          `db:"department" json:"department,omitempty"`
	Faculty         string          `db:"faculty" json:"faculty,omitempty"`
	Level           string          `db:"level" json:"level,omitempty"`
	Status          ComplaintStatus `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// StatusHistoryEntry is one immutable audit record of a status transition.
// Replaying all entries for a complaint in ascending created_at order from the
// implicit initial pending state reproduces the complaint's current status.
type StatusHistoryEntry struct {
	ID            string          `db:"id" json:"id"`
	ComplaintID   string          `db:"complaint_id" json:"complaint_id"`
	OldStatus     ComplaintStatus `db:"old_status" json:"old_status"`
	NewStatus     ComplaintStatus `db:"new_status" json:"new_status"`
	ChangedBy     string          `db:"changed_by" json:"changed_by"`
	ChangedByName string          `db:"changed_by_name" json:"changed_by_name"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Response is an administrator reply attached to a complaint. Responses do
// not affect the complaint status.
type Response struct {
	ID          string    `db:"id" json:"id"`
	ComplaintID string    `db:"complaint_id" json:"complaint_id"`
	Text        string    `db:"text" json:"text"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	AuthorName  string    `db:"author_name" json:"author_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ComplaintFilter captures list criteria for complaints.
type ComplaintFilter struct {
	Status   *ComplaintStatus
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
