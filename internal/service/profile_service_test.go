package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

type profileRepoStub struct {
	profiles map[string]*models.AdminProfile
	contacts map[string][2]string
	calls    int
}

func (s *profileRepoStub) GetAdminProfile(ctx context.Context, subjectID string) (*models.AdminProfile, error) {
	s.calls++
	if p, ok := s.profiles[subjectID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (s *profileRepoStub) GetStudentEmail(ctx context.Context, subjectID string) (string, string, error) {
	if c, ok := s.contacts[subjectID]; ok {
		return c[0], c[1], nil
	}
	return "", "", sql.ErrNoRows
}

func TestProfileServiceGetAdminProfile(t *testing.T) {
	repo := &profileRepoStub{profiles: map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionHOD, Department: "Physics"},
	}}
	svc := NewProfileService(repo, nil, 0, nil, nil)

	profile, err := svc.GetAdminProfile(context.Background(), "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.PositionHOD, profile.Position)
}

func TestProfileServiceUnknownSubjectIsNotFound(t *testing.T) {
	svc := NewProfileService(&profileRepoStub{}, nil, 0, nil, nil)

	_, err := svc.GetAdminProfile(context.Background(), "ghost")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceNilCacheReadsStore(t *testing.T) {
	repo := &profileRepoStub{profiles: map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}}
	svc := NewProfileService(repo, nil, 0, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.GetAdminProfile(context.Background(), "admin-1")
		require.NoError(t, err)
	}
	require.Equal(t, 3, repo.calls)
}

func TestProfileServiceStudentContact(t *testing.T) {
	repo := &profileRepoStub{contacts: map[string][2]string{
		"student-1": {"Ada Obi", "ada@students.example.edu"},
	}}
	svc := NewProfileService(repo, nil, 0, nil, nil)

	name, email, err := svc.GetStudentContact(context.Background(), "student-1")
	require.NoError(t, err)
	require.Equal(t, "Ada Obi", name)
	require.Equal(t, "ada@students.example.edu", email)

	_, _, err = svc.GetStudentContact(context.Background(), "ghost")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
