package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/examdesk/complaints-api/internal/models"
	"github.com/examdesk/complaints-api/pkg/jobs"
	"github.com/examdesk/complaints-api/pkg/mailer"
)

const (
	jobStatusChanged = "status-changed"
	jobResponseAdded = "response-added"
)

// StatusChangedEvent notifies a student that their complaint moved status.
type StatusChangedEvent struct {
	ComplaintID     string
	StudentID       string
	ReferenceNumber string
	ExamName        string
	NewStatus       models.ComplaintStatus
}

// ResponseAddedEvent notifies a student of a new administrator response.
type ResponseAddedEvent struct {
	ComplaintID     string
	StudentID       string
	ReferenceNumber string
	ExamName        string
	AdminName       string
	Text            string
}

// Dispatcher is the fire-and-forget side-effect boundary invoked after a
// lifecycle transition or response commits.
type Dispatcher interface {
	DispatchStatusChanged(ev StatusChangedEvent)
	DispatchResponseAdded(ev ResponseAddedEvent)
}

type notificationInserter interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type studentContactLookup interface {
	GetStudentContact(ctx context.Context, subjectID string) (string, string, error)
}

// DispatchService creates the in-app notification and attempts the email for
// each event. Both side effects are best-effort with at-most-one attempt:
// failures are logged and swallowed, never surfaced to the request that
// produced the event, and never retried. The in-app record is the durable
// channel; email is opportunistic.
type DispatchService struct {
	notifications notificationInserter
	contacts      studentContactLookup
	mail          mailer.Mailer
	queue         *jobs.Queue
	logger        *zap.Logger
	metrics       *MetricsService
}

var _ Dispatcher = (*DispatchService)(nil)

// DispatchConfig sizes the dispatch queue.
type DispatchConfig struct {
	Workers    int
	BufferSize int
}

// NewDispatchService constructs the dispatcher and its backing queue.
func NewDispatchService(notifications notificationInserter, contacts studentContactLookup, mail mailer.Mailer, cfg DispatchConfig, logger *zap.Logger, metrics *MetricsService) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DispatchService{
		notifications: notifications,
		contacts:      contacts,
		mail:          mail,
		logger:        logger,
		metrics:       metrics,
	}
	s.queue = jobs.NewQueue("dispatch", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start begins queue consumption.
func (s *DispatchService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the workers.
func (s *DispatchService) Stop() { s.queue.Stop() }

// DispatchStatusChanged enqueues a status-change event. Enqueue failures are
// logged only; the committed transition is already final.
func (s *DispatchService) DispatchStatusChanged(ev StatusChangedEvent) {
	s.enqueue(jobStatusChanged, ev)
}

// DispatchResponseAdded enqueues a response event.
func (s *DispatchService) DispatchResponseAdded(ev ResponseAddedEvent) {
	s.enqueue(jobResponseAdded, ev)
}

func (s *DispatchService) enqueue(jobType string, payload interface{}) {
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: payload}); err != nil {
		s.logger.Warn("dispatch enqueue failed", zap.String("type", jobType), zap.Error(err))
	}
}

// handle always returns nil: dispatch is at-most-once and the queue must
// never retry on our behalf.
func (s *DispatchService) handle(ctx context.Context, job jobs.Job) error {
	switch ev := job.Payload.(type) {
	case StatusChangedEvent:
		s.handleStatusChanged(ctx, ev)
	case ResponseAddedEvent:
		s.handleResponseAdded(ctx, ev)
	default:
		s.logger.Warn("unknown dispatch payload", zap.String("type", job.Type))
	}
	return nil
}

func (s *DispatchService) handleStatusChanged(ctx context.Context, ev StatusChangedEvent) {
	title := "Complaint status updated"
	message := fmt.Sprintf("Your complaint %s (%s) is now %s.", ev.ReferenceNumber, ev.ExamName, ev.NewStatus)

	s.createNotification(ctx, ev.StudentID, ev.ComplaintID, title, message, models.NotificationTypeForStatus(ev.NewStatus))
	s.sendEmail(ctx, ev.StudentID, mailer.Message{
		Template: mailer.TemplateStatusChanged,
		Subject:  fmt.Sprintf("Complaint %s: %s", ev.ReferenceNumber, ev.NewStatus),
		TextBody: message,
	})
}

func (s *DispatchService) handleResponseAdded(ctx context.Context, ev ResponseAddedEvent) {
	title := "New response to your complaint"
	message := fmt.Sprintf("%s responded to your complaint %s (%s): %s", ev.AdminName, ev.ReferenceNumber, ev.ExamName, ev.Text)

	s.createNotification(ctx, ev.StudentID, ev.ComplaintID, title, message, models.NotificationInfo)
	s.sendEmail(ctx, ev.StudentID, mailer.Message{
		Template: mailer.TemplateResponseAdded,
		Subject:  fmt.Sprintf("New response on complaint %s", ev.ReferenceNumber),
		TextBody: message,
	})
}

func (s *DispatchService) createNotification(ctx context.Context, userID, complaintID, title, message string, kind models.NotificationType) {
	related := complaintID
	err := s.notifications.Insert(ctx, &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		RelatedID: &related,
	})
	s.metrics.RecordDispatch("notification", err == nil)
	if err != nil {
		s.logger.Error("notification insert failed",
			zap.String("user_id", userID),
			zap.String("complaint_id", complaintID),
			zap.Error(err),
		)
	}
}

func (s *DispatchService) sendEmail(ctx context.Context, studentID string, msg mailer.Message) {
	if s.mail == nil {
		return
	}
	name, address, err := s.contacts.GetStudentContact(ctx, studentID)
	if err != nil {
		s.metrics.RecordDispatch("email", false)
		s.logger.Error("student contact lookup failed", zap.String("student_id", studentID), zap.Error(err))
		return
	}
	msg.ToName = name
	msg.ToAddress = address

	err = s.mail.Send(ctx, msg)
	s.metrics.RecordDispatch("email", err == nil)
	if err != nil {
		s.logger.Error("email send failed",
			zap.String("student_id", studentID),
			zap.String("template", string(msg.Template)),
			zap.Error(err),
		)
	}
}
