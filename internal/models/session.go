package models

import "github.com/golang-jwt/jwt/v5"

// Role is the coarse identity role carried in session tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Identity is the authenticated subject for one request. Never persisted.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Role      Role   `json:"role"`
	Name      string `json:"name"`
}

// SessionClaims are the JWT claims held by a credential carrier. Subject is
// carried both in the registered sub claim and an explicit uid claim because
// older tokens predate the registered-claims migration.
type SessionClaims struct {
	UserID   string `json:"uid,omitempty"`
	Role     Role   `json:"role,omitempty"`
	FullName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the subject from whichever claim is populated.
func (c *SessionClaims) SubjectID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
