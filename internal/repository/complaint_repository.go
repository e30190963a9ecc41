package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examdesk/complaints-api/internal/models"
	"github.com/examdesk/complaints-api/internal/scope"
)

const complaintColumns = `id, reference_number, student_id, student_name, exam_name, course, department, faculty, level, status, created_at, updated_at`

// ComplaintRepository manages persistence for complaints, their status
// history and responses. History rows are insert-only; no update or delete
// statement for status_history exists anywhere in this package.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs a new repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// GetByID returns a single complaint. Callers are expected to evaluate scope
// on the result; sql.ErrNoRows propagates for absent rows.
func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := fmt.Sprintf("SELECT %s FROM complaints WHERE id = $1 LIMIT 1", complaintColumns)
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		return nil, err
	}
	return &complaint, nil
}

// List returns complaints visible under the supplied scope.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter, sc scope.Scope) ([]models.Complaint, int, error) {
	where := []string{}
	args := []interface{}{}

	scopeClause, scopeArgs := sc.WhereClause(len(args) + 1)
	where = append(where, scopeClause)
	args = append(args, scopeArgs...)

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(reference_number ILIKE $%d OR exam_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		complaintColumns, whereClause, size, offset)
	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM complaints WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return complaints, total, nil
}

// Transition atomically moves a complaint to newStatus and appends the
// matching history entry. The row is locked for the duration so concurrent
// transitions on the same complaint serialize; a reader can never observe a
// status without its history entry. A complaint that is absent or outside the
// scope surfaces as sql.ErrNoRows either way.
func (r *ComplaintRepository) Transition(ctx context.Context, complaintID string, newStatus models.ComplaintStatus, changedBy, changedByName, notes string, sc scope.Scope) (*models.Complaint, *models.StatusHistoryEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transition: %w", err)
	}

	lockQuery := fmt.Sprintf("SELECT %s FROM complaints WHERE id = $1 FOR UPDATE", complaintColumns)
	var complaint models.Complaint
	if err := tx.GetContext(ctx, &complaint, lockQuery, complaintID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, err
	}

	if !sc.Allows(&complaint) {
		tx.Rollback() //nolint:errcheck
		return nil, nil, sql.ErrNoRows
	}

	now := time.Now().UTC()
	entry := &models.StatusHistoryEntry{
		ID:            uuid.NewString(),
		ComplaintID:   complaint.ID,
		OldStatus:     complaint.Status,
		NewStatus:     newStatus,
		ChangedBy:     changedBy,
		ChangedByName: changedByName,
		Notes:         notes,
		CreatedAt:     now,
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE complaints SET status = $1, updated_at = $2 WHERE id = $3",
		string(newStatus), now, complaint.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, fmt.Errorf("update complaint status: %w", err)
	}

	const historyInsert = `INSERT INTO status_history (id, complaint_id, old_status, new_status, changed_by, changed_by_name, notes, created_at)
VALUES (:id, :complaint_id, :old_status, :new_status, :changed_by, :changed_by_name, :notes, :created_at)`
	if _, err := tx.NamedExecContext(ctx, historyInsert, entry); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, nil, fmt.Errorf("append status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transition: %w", err)
	}

	complaint.Status = newStatus
	complaint.UpdatedAt = now
	return &complaint, entry, nil
}

// ListHistory returns the audit trail for a complaint, most recent first.
func (r *ComplaintRepository) ListHistory(ctx context.Context, complaintID string) ([]models.StatusHistoryEntry, error) {
	const query = `SELECT id, complaint_id, old_status, new_status, changed_by, changed_by_name, notes, created_at
FROM status_history WHERE complaint_id = $1 ORDER BY created_at DESC`
	var entries []models.StatusHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, complaintID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return entries, nil
}

// InsertResponse appends an administrator response to a complaint.
func (r *ComplaintRepository) InsertResponse(ctx context.Context, resp *models.Response) error {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO responses (id, complaint_id, text, author_id, author_name, created_at)
VALUES (:id, :complaint_id, :text, :author_id, :author_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resp); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// ListResponses returns responses for a complaint in posting order.
func (r *ComplaintRepository) ListResponses(ctx context.Context, complaintID string) ([]models.Response, error) {
	const query = `SELECT id, complaint_id, text, author_id, author_name, created_at
FROM responses WHERE complaint_id = $1 ORDER BY created_at ASC`
	var responses []models.Response
	if err := r.db.SelectContext(ctx, &responses, query, complaintID); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}
