package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

func newTestExportService(repo *complaintRepoStub, profiles map[string]*models.AdminProfile) *ExportService {
	return NewExportService(newTestComplaintService(repo, profiles, nil), nil)
}

func TestExportCSV(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestExportService(repo, map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	})

	result, err := svc.Export(context.Background(), adminIdentity("admin-1"), "csv", "")
	require.NoError(t, err)
	require.Equal(t, "text/csv", result.ContentType)
	require.Contains(t, result.Filename, ".csv")

	content := string(result.Content)
	require.True(t, strings.HasPrefix(content, "Reference,"))
	require.Contains(t, content, "REF-2026-001")
	require.Contains(t, content, "pending")
}

func TestExportDefaultsToCSV(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestExportService(repo, map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	})

	result, err := svc.Export(context.Background(), adminIdentity("admin-1"), "", "")
	require.NoError(t, err)
	require.Equal(t, "text/csv", result.ContentType)
}

func TestExportPDF(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestExportService(repo, map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	})

	result, err := svc.Export(context.Background(), adminIdentity("admin-1"), "pdf", "")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)
	require.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportUnknownFormat(t *testing.T) {
	repo := newComplaintRepoStub()
	svc := newTestExportService(repo, nil)

	_, err := svc.Export(context.Background(), studentIdentity("student-1"), "xlsx", "")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportHonoursScope(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	repo.add(models.Complaint{ID: "cmp-2", ReferenceNumber: "REF-2026-002", StudentID: "student-2", Faculty: "Arts", Status: models.StatusPending})

	svc := newTestExportService(repo, map[string]*models.AdminProfile{
		"dean-1": {SubjectID: "dean-1", Position: models.PositionDean, Faculty: "Science"},
	})

	result, err := svc.Export(context.Background(), adminIdentity("dean-1"), "csv", "")
	require.NoError(t, err)
	require.Contains(t, string(result.Content), "REF-2026-001")
	require.NotContains(t, string(result.Content), "REF-2026-002")
}

func TestExportInvalidStatusFilter(t *testing.T) {
	repo := newComplaintRepoStub()
	svc := newTestExportService(repo, nil)

	_, err := svc.Export(context.Background(), studentIdentity("student-1"), "csv", "escalated")
	require.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}
