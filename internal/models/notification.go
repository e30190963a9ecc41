package models

import "time"

// NotificationType drives presentation of in-app notifications.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is an in-app message owned by its recipient. Only the
// recipient may mark it read or delete it.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	RelatedID *string          `db:"related_id" json:"related_id,omitempty"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	ReadAt    *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationTypeForStatus maps a new complaint status to the notification
// type shown to the student.
func NotificationTypeForStatus(status ComplaintStatus) NotificationType {
	switch status {
	case StatusResolved:
		return NotificationSuccess
	case StatusRejected:
		return NotificationError
	default:
		return NotificationInfo
	}
}
