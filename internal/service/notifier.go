package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	EventMemberJoined     EventType = "member_joined"
	EventMemberPending    EventType = "member_pending"
	EventMemberApproved   EventType = "member_approved"
	EventMemberLeft       EventType = "member_left"
	EventMemberRemoved    EventType = "member_removed"
	EventSessionCancelled EventType = "session_cancelled"
)

// Event describes a membership change worth telling someone about.
type Event struct {
	Type         EventType
	SessionID    uuid.UUID
	SessionTitle string
	// Recipient is an email address when one is known; dispatchers without a
	// delivery channel for the event ignore it.
	Recipient string
}

// Notifier delivers events to participants. Delivery is best-effort: callers
// dispatch asynchronously and swallow failures.
type Notifier interface {
	Dispatch(ctx context.Context, event Event) error
}

// logNotifier is the default backend: it records the event and delivers
// nothing. Useful for local development and as the fallback when no delivery
// channel is configured.
type logNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Dispatch(_ context.Context, event Event) error {
	n.logger.Info("notification",
		zap.String("type", string(event.Type)),
		zap.String("session_id", event.SessionID.String()),
		zap.String("session_title", event.SessionTitle),
	)
	return nil
}

// dispatchAsync fires the event on a detached context so a slow or failing
// dispatcher can never block or fail the membership operation that produced
// it.
func dispatchAsync(notifier Notifier, logger *zap.Logger, event Event) {
	if notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := notifier.Dispatch(ctx, event); err != nil {
			logger.Warn("notification dispatch failed",
				zap.String("type", string(event.Type)),
				zap.String("session_id", event.SessionID.String()),
				zap.Error(err),
			)
		}
	}()
}
