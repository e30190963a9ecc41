package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/examdesk/complaints-api/internal/models"
	"github.com/examdesk/complaints-api/internal/scope"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

type complaintRepository interface {
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter, sc scope.Scope) ([]models.Complaint, int, error)
	Transition(ctx context.Context, complaintID string, newStatus models.ComplaintStatus, changedBy, changedByName, notes string, sc scope.Scope) (*models.Complaint, *models.StatusHistoryEntry, error)
	ListHistory(ctx context.Context, complaintID string) ([]models.StatusHistoryEntry, error)
	InsertResponse(ctx context.Context, resp *models.Response) error
	ListResponses(ctx context.Context, complaintID string) ([]models.Response, error)
}

type adminProfileLookup interface {
	GetAdminProfile(ctx context.Context, subjectID string) (*models.AdminProfile, error)
}

// ComplaintService drives the complaint lifecycle: scoped reads, status
// transitions with their audit trail, and administrator responses.
// Authentication and scoping always resolve before any store mutation.
type ComplaintService struct {
	repo       complaintRepository
	profiles   adminProfileLookup
	dispatcher Dispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewComplaintService constructs the service.
func NewComplaintService(repo complaintRepository, profiles adminProfileLookup, dispatcher Dispatcher, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{repo: repo, profiles: profiles, dispatcher: dispatcher, validator: validate, logger: logger}
}

// TransitionRequest is the status-change payload.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// AddResponseRequest is the response payload.
type AddResponseRequest struct {
	Text string `json:"text" validate:"required"`
}

// ListComplaintsRequest describes list filters.
type ListComplaintsRequest struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ComplaintDetail bundles a complaint with its audit trail.
type ComplaintDetail struct {
	Complaint *models.Complaint           `json:"complaint"`
	History   []models.StatusHistoryEntry `json:"history"`
}

// scopeFor resolves the caller's visibility scope. Students see their own
// complaints; admins are scoped by their profile. A missing profile fails
// closed to the empty scope rather than erroring.
func (s *ComplaintService) scopeFor(ctx context.Context, identity *models.Identity) (scope.Scope, error) {
	if identity == nil {
		return scope.None(), appErrors.ErrNotAuthenticated
	}
	if identity.Role == models.RoleStudent {
		return scope.ForStudent(identity.SubjectID), nil
	}

	profile, err := s.profiles.GetAdminProfile(ctx, identity.SubjectID)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrNotFound.Code {
			return scope.None(), nil
		}
		return scope.None(), err
	}
	return scope.For(identity, profile), nil
}

// Get returns a single complaint visible to the caller. Out-of-scope
// complaints map to NotFound so their existence never leaks.
func (s *ComplaintService) Get(ctx context.Context, identity *models.Identity, id string) (*models.Complaint, error) {
	sc, err := s.scopeFor(ctx, identity)
	if err != nil {
		return nil, err
	}

	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	if !sc.Allows(complaint) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	return complaint, nil
}

// List returns the caller's visible complaints.
func (s *ComplaintService) List(ctx context.Context, identity *models.Identity, req ListComplaintsRequest) ([]models.Complaint, *models.Pagination, error) {
	sc, err := s.scopeFor(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	filter := models.ComplaintFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if req.Status != "" {
		status := models.ComplaintStatus(req.Status)
		if !models.ValidStatus(status) {
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidStatus, "unknown status filter")
		}
		filter.Status = &status
	}

	complaints, total, err := s.repo.List(ctx, filter, sc)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return complaints, pagination, nil
}

// Transition moves a complaint to a new status and records the audit entry,
// then fires the student notification without coupling it to the outcome.
// A transition to the current status still records an entry: the audit trail
// captures every administrative action, not just effective ones.
func (s *ComplaintService) Transition(ctx context.Context, identity *models.Identity, complaintID string, req TransitionRequest) (*ComplaintDetail, error) {
	if identity == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	if identity.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}

	newStatus := models.ComplaintStatus(req.Status)
	if !models.ValidStatus(newStatus) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "status must be one of pending, under-review, resolved, rejected")
	}

	sc, err := s.scopeFor(ctx, identity)
	if err != nil {
		return nil, err
	}

	complaint, entry, err := s.repo.Transition(ctx, complaintID, newStatus, identity.SubjectID, identity.Name, req.Notes, sc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "transition aborted")
	}

	if s.dispatcher != nil {
		s.dispatcher.DispatchStatusChanged(StatusChangedEvent{
			ComplaintID:     complaint.ID,
			StudentID:       complaint.StudentID,
			ReferenceNumber: complaint.ReferenceNumber,
			ExamName:        complaint.ExamName,
			NewStatus:       newStatus,
		})
	}

	history, err := s.repo.ListHistory(ctx, complaint.ID)
	if err != nil {
		// The transition is committed; degrade to the entry we just wrote.
		s.logger.Warn("history fetch after transition failed", zap.String("complaint_id", complaint.ID), zap.Error(err))
		history = []models.StatusHistoryEntry{*entry}
	}

	return &ComplaintDetail{Complaint: complaint, History: history}, nil
}

// History returns the audit trail for a visible complaint, newest first.
func (s *ComplaintService) History(ctx context.Context, identity *models.Identity, complaintID string) ([]models.StatusHistoryEntry, error) {
	if _, err := s.Get(ctx, identity, complaintID); err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, complaintID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list history")
	}
	return history, nil
}

// Responses returns the response thread for a visible complaint.
func (s *ComplaintService) Responses(ctx context.Context, identity *models.Identity, complaintID string) ([]models.Response, error) {
	if _, err := s.Get(ctx, identity, complaintID); err != nil {
		return nil, err
	}
	responses, err := s.repo.ListResponses(ctx, complaintID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list responses")
	}
	return responses, nil
}

// AddResponse appends an administrator response to a visible complaint and
// notifies the student.
func (s *ComplaintService) AddResponse(ctx context.Context, identity *models.Identity, complaintID string, req AddResponseRequest) (*models.Response, error) {
	if identity == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	if identity.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}

	complaint, err := s.Get(ctx, identity, complaintID)
	if err != nil {
		return nil, err
	}

	resp := &models.Response{
		ComplaintID: complaint.ID,
		Text:        req.Text,
		AuthorID:    identity.SubjectID,
		AuthorName:  identity.Name,
	}
	if err := s.repo.InsertResponse(ctx, resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add response")
	}

	if s.dispatcher != nil {
		s.dispatcher.DispatchResponseAdded(ResponseAddedEvent{
			ComplaintID:     complaint.ID,
			StudentID:       complaint.StudentID,
			ReferenceNumber: complaint.ReferenceNumber,
			ExamName:        complaint.ExamName,
			AdminName:       identity.Name,
			Text:            req.Text,
		})
	}

	return resp, nil
}
