package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/complaints-api/internal/models"
	"github.com/examdesk/complaints-api/internal/scope"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

type complaintRepoStub struct {
	complaints      map[string]*models.Complaint
	history         map[string][]models.StatusHistoryEntry
	responses       map[string][]models.Response
	transitionCalls int
	listErr         error
	transitionErr   error
}

func newComplaintRepoStub() *complaintRepoStub {
	return &complaintRepoStub{
		complaints: make(map[string]*models.Complaint),
		history:    make(map[string][]models.StatusHistoryEntry),
		responses:  make(map[string][]models.Response),
	}
}

func (s *complaintRepoStub) add(c models.Complaint) {
	s.complaints[c.ID] = &c
}

func (s *complaintRepoStub) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	if c, ok := s.complaints[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *complaintRepoStub) List(ctx context.Context, filter models.ComplaintFilter, sc scope.Scope) ([]models.Complaint, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var result []models.Complaint
	for _, c := range s.complaints {
		if !sc.Allows(c) {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		result = append(result, *c)
	}
	return result, len(result), nil
}

func (s *complaintRepoStub) Transition(ctx context.Context, complaintID string, newStatus models.ComplaintStatus, changedBy, changedByName, notes string, sc scope.Scope) (*models.Complaint, *models.StatusHistoryEntry, error) {
	s.transitionCalls++
	if s.transitionErr != nil {
		return nil, nil, s.transitionErr
	}
	c, ok := s.complaints[complaintID]
	if !ok || !sc.Allows(c) {
		return nil, nil, sql.ErrNoRows
	}
	entry := models.StatusHistoryEntry{
		ID:            uuid.NewString(),
		ComplaintID:   complaintID,
		OldStatus:     c.Status,
		NewStatus:     newStatus,
		ChangedBy:     changedBy,
		ChangedByName: changedByName,
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}
	c.Status = newStatus
	c.UpdatedAt = entry.CreatedAt
	s.history[complaintID] = append(s.history[complaintID], entry)
	copied := *c
	return &copied, &entry, nil
}

func (s *complaintRepoStub) ListHistory(ctx context.Context, complaintID string) ([]models.StatusHistoryEntry, error) {
	entries := s.history[complaintID]
	// Newest first, matching the store ordering.
	reversed := make([]models.StatusHistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		reversed = append(reversed, entries[i])
	}
	return reversed, nil
}

func (s *complaintRepoStub) InsertResponse(ctx context.Context, resp *models.Response) error {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	s.responses[resp.ComplaintID] = append(s.responses[resp.ComplaintID], *resp)
	return nil
}

func (s *complaintRepoStub) ListResponses(ctx context.Context, complaintID string) ([]models.Response, error) {
	return s.responses[complaintID], nil
}

type profileLookupStub struct {
	profiles map[string]*models.AdminProfile
}

func (s *profileLookupStub) GetAdminProfile(ctx context.Context, subjectID string) (*models.AdminProfile, error) {
	if p, ok := s.profiles[subjectID]; ok {
		return p, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "admin profile not found")
}

type dispatcherStub struct {
	statusEvents   []StatusChangedEvent
	responseEvents []ResponseAddedEvent
}

func (d *dispatcherStub) DispatchStatusChanged(ev StatusChangedEvent) {
	d.statusEvents = append(d.statusEvents, ev)
}

func (d *dispatcherStub) DispatchResponseAdded(ev ResponseAddedEvent) {
	d.responseEvents = append(d.responseEvents, ev)
}

func seedComplaint(repo *complaintRepoStub) models.Complaint {
	c := models.Complaint{
		ID:              "cmp-1",
		ReferenceNumber: "REF-2026-001",
		StudentID:       "student-1",
		StudentName:     "Ada Obi",
		ExamName:        "CSC301 Final",
		Course:          "CSC301",
		Department:      "Computer Science",
		Faculty:         "Science",
		Status:          models.StatusPending,
	}
	repo.add(c)
	return c
}

func newTestComplaintService(repo *complaintRepoStub, profiles map[string]*models.AdminProfile, dispatcher Dispatcher) *ComplaintService {
	return NewComplaintService(repo, &profileLookupStub{profiles: profiles}, dispatcher, nil, nil)
}

func studentIdentity(id string) *models.Identity {
	return &models.Identity{SubjectID: id, Role: models.RoleStudent, Name: "Student"}
}

func adminIdentity(id string) *models.Identity {
	return &models.Identity{SubjectID: id, Role: models.RoleAdmin, Name: "Dr. Bello"}
}

func TestComplaintServiceGetOwnComplaint(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	complaint, err := svc.Get(context.Background(), studentIdentity("student-1"), "cmp-1")
	require.NoError(t, err)
	require.Equal(t, "cmp-1", complaint.ID)
}

func TestComplaintServiceGetForeignComplaintLooksAbsent(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	_, err := svc.Get(context.Background(), studentIdentity("student-2"), "cmp-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// Absent and out-of-scope are indistinguishable.
	_, err2 := svc.Get(context.Background(), studentIdentity("student-2"), "no-such-id")
	require.Equal(t, appErrors.FromError(err).Code, appErrors.FromError(err2).Code)
	require.Equal(t, appErrors.FromError(err).Message, appErrors.FromError(err2).Message)
}

func TestComplaintServiceGetRequiresIdentity(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	_, err := svc.Get(context.Background(), nil, "cmp-1")
	require.ErrorIs(t, err, appErrors.ErrNotAuthenticated)
}

func TestComplaintServiceListInvalidStatusFilter(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	_, _, err := svc.List(context.Background(), studentIdentity("student-1"), ListComplaintsRequest{Status: "escalated"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestComplaintServiceListScopedByDean(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	repo.add(models.Complaint{ID: "cmp-2", StudentID: "student-2", Faculty: "Arts", Status: models.StatusPending})

	profiles := map[string]*models.AdminProfile{
		"dean-1": {SubjectID: "dean-1", Position: models.PositionDean, Faculty: "Science"},
	}
	svc := newTestComplaintService(repo, profiles, nil)

	complaints, pagination, err := svc.List(context.Background(), adminIdentity("dean-1"), ListComplaintsRequest{})
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	require.Equal(t, "cmp-1", complaints[0].ID)
	require.Equal(t, 1, pagination.TotalCount)
}

func TestComplaintServiceListAdminWithoutProfileSeesNothing(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	complaints, _, err := svc.List(context.Background(), adminIdentity("ghost-admin"), ListComplaintsRequest{})
	require.NoError(t, err)
	require.Empty(t, complaints)
}

func TestComplaintServiceTransitionRequiresAdmin(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	_, err := svc.Transition(context.Background(), nil, "cmp-1", TransitionRequest{Status: "resolved"})
	require.ErrorIs(t, err, appErrors.ErrNotAuthenticated)

	_, err = svc.Transition(context.Background(), studentIdentity("student-1"), "cmp-1", TransitionRequest{Status: "resolved"})
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	require.Zero(t, repo.transitionCalls)
}

func TestComplaintServiceTransitionRejectsUnknownStatusBeforeIO(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	svc := newTestComplaintService(repo, profiles, nil)

	_, err := svc.Transition(context.Background(), adminIdentity("admin-1"), "cmp-1", TransitionRequest{Status: "escalated"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
	require.Zero(t, repo.transitionCalls)
}

func TestComplaintServiceTransitionRecordsHistoryAndNotifies(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	dispatcher := &dispatcherStub{}
	svc := newTestComplaintService(repo, profiles, dispatcher)

	detail, err := svc.Transition(context.Background(), adminIdentity("admin-1"), "cmp-1", TransitionRequest{Status: "under-review", Notes: "taking a look"})
	require.NoError(t, err)
	require.Equal(t, models.StatusUnderReview, detail.Complaint.Status)
	require.Len(t, detail.History, 1)
	require.Equal(t, models.StatusPending, detail.History[0].OldStatus)
	require.Equal(t, "taking a look", detail.History[0].Notes)

	require.Len(t, dispatcher.statusEvents, 1)
	require.Equal(t, "student-1", dispatcher.statusEvents[0].StudentID)
	require.Equal(t, models.StatusUnderReview, dispatcher.statusEvents[0].NewStatus)
}

func TestComplaintServiceTransitionSameStatusStillRecorded(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	svc := newTestComplaintService(repo, profiles, nil)

	detail, err := svc.Transition(context.Background(), adminIdentity("admin-1"), "cmp-1", TransitionRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, detail.History, 1)
	require.Equal(t, models.StatusPending, detail.History[0].OldStatus)
	require.Equal(t, models.StatusPending, detail.History[0].NewStatus)
}

func TestComplaintServiceTransitionAnyOrderAllowed(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	svc := newTestComplaintService(repo, profiles, nil)
	admin := adminIdentity("admin-1")

	// Resolved complaints can be reopened; there is no terminal state.
	for _, status := range []string{"resolved", "pending", "rejected", "under-review"} {
		_, err := svc.Transition(context.Background(), admin, "cmp-1", TransitionRequest{Status: status})
		require.NoError(t, err)
	}

	// Replaying the trail oldest-first from the initial pending state must
	// land on the complaint's current status.
	history, err := svc.History(context.Background(), admin, "cmp-1")
	require.NoError(t, err)
	require.Len(t, history, 4)

	current := models.StatusPending
	for i := len(history) - 1; i >= 0; i-- {
		require.Equal(t, current, history[i].OldStatus)
		current = history[i].NewStatus
	}
	require.Equal(t, models.StatusUnderReview, current)
	require.Equal(t, current, repo.complaints["cmp-1"].Status)
}

func TestComplaintServiceTransitionOutOfScopeWritesNothing(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"dean-arts": {SubjectID: "dean-arts", Position: models.PositionDean, Faculty: "Arts"},
	}
	dispatcher := &dispatcherStub{}
	svc := newTestComplaintService(repo, profiles, dispatcher)

	_, err := svc.Transition(context.Background(), adminIdentity("dean-arts"), "cmp-1", TransitionRequest{Status: "resolved"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.Empty(t, repo.history["cmp-1"])
	require.Empty(t, dispatcher.statusEvents)
	require.Equal(t, models.StatusPending, repo.complaints["cmp-1"].Status)
}

func TestComplaintServiceTransitionStoreFailure(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	repo.transitionErr = sql.ErrConnDone
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	dispatcher := &dispatcherStub{}
	svc := newTestComplaintService(repo, profiles, dispatcher)

	_, err := svc.Transition(context.Background(), adminIdentity("admin-1"), "cmp-1", TransitionRequest{Status: "resolved"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
	require.Empty(t, dispatcher.statusEvents)
}

func TestComplaintServiceHistoryScoped(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	repo.history["cmp-1"] = []models.StatusHistoryEntry{{ID: "h-1", ComplaintID: "cmp-1", OldStatus: models.StatusPending, NewStatus: models.StatusResolved}}
	svc := newTestComplaintService(repo, nil, nil)

	history, err := svc.History(context.Background(), studentIdentity("student-1"), "cmp-1")
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = svc.History(context.Background(), studentIdentity("student-2"), "cmp-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestComplaintServiceAddResponse(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	dispatcher := &dispatcherStub{}
	svc := newTestComplaintService(repo, profiles, dispatcher)

	resp, err := svc.AddResponse(context.Background(), adminIdentity("admin-1"), "cmp-1", AddResponseRequest{Text: "We re-marked the script."})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "admin-1", resp.AuthorID)

	require.Len(t, dispatcher.responseEvents, 1)
	require.Equal(t, "student-1", dispatcher.responseEvents[0].StudentID)

	responses, err := svc.Responses(context.Background(), studentIdentity("student-1"), "cmp-1")
	require.NoError(t, err)
	require.Len(t, responses, 1)
}

func TestComplaintServiceAddResponseStudentForbidden(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	svc := newTestComplaintService(repo, nil, nil)

	_, err := svc.AddResponse(context.Background(), studentIdentity("student-1"), "cmp-1", AddResponseRequest{Text: "hello"})
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	require.Empty(t, repo.responses["cmp-1"])
}

func TestComplaintServiceAddResponseValidation(t *testing.T) {
	repo := newComplaintRepoStub()
	seedComplaint(repo)
	profiles := map[string]*models.AdminProfile{
		"admin-1": {SubjectID: "admin-1", Position: models.PositionAdmin},
	}
	svc := newTestComplaintService(repo, profiles, nil)

	_, err := svc.AddResponse(context.Background(), adminIdentity("admin-1"), "cmp-1", AddResponseRequest{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
