package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/examdesk/complaints-api/internal/models"
)

// ProfileRepository reads administrator profiles from the identity store.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a new repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetAdminProfile returns the organizational profile for an administrator.
// sql.ErrNoRows propagates for unknown subjects.
func (r *ProfileRepository) GetAdminProfile(ctx context.Context, subjectID string) (*models.AdminProfile, error) {
	const query = `SELECT subject_id, full_name, email, position, department, faculty, courses
FROM admin_profiles WHERE subject_id = $1 LIMIT 1`
	var profile models.AdminProfile
	if err := r.db.GetContext(ctx, &profile, query, subjectID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetStudentEmail returns the notification address for a student.
func (r *ProfileRepository) GetStudentEmail(ctx context.Context, subjectID string) (name string, email string, err error) {
	const query = `SELECT full_name, email FROM students WHERE id = $1 LIMIT 1`
	row := r.db.QueryRowxContext(ctx, query, subjectID)
	if err := row.Scan(&name, &email); err != nil {
		return "", "", err
	}
	return name, email, nil
}
