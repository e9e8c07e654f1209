package service

import (
	"context"
	"log"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

// Sender delivers one notice to one recipient. Email rendering and transport
// live outside this subsystem; the default implementation just logs.
type Sender interface {
	Send(ctx context.Context, recipientEmail string, kind model.NotificationKind, roundID string) error
}

// LogSender writes notices to the application log. Stands in for the real
// mail dispatcher in development and tests.
type LogSender struct{}

// Send logs the notice.
func (LogSender) Send(_ context.Context, recipientEmail string, kind model.NotificationKind, roundID string) error {
	log.Printf("notification %s to %s for round %s", kind, recipientEmail, roundID)
	return nil
}

// notice is a pending outbound notification, collected during a transaction
// and delivered only after commit so an aborted round fires nothing.
type notice struct {
	recipientID    string
	recipientEmail string
	roundID        string
	kind           model.NotificationKind
}
