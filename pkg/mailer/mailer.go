package mailer

import "context"

// Template identifies the outbound email kind.
type Template string

const (
	TemplateStatusChanged Template = "status-changed"
	TemplateResponseAdded Template = "response-added"
)

// Message is a rendered email ready for delivery.
type Message struct {
	Template  Template
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// Mailer delivers a single message. Implementations must treat delivery as
// best-effort: a returned error is for the caller to log, never to act on.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
