package pipeline

import (
	"context"

	"contactsync/internal/logging"
	"contactsync/internal/notifications"
)

// notify publishes best-effort; delivery failures never fail the operation.
func (s *Service) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "notification failed",
			"notification_failed",
			logging.String("event", string(event)),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.Error(err),
		)
	}
}

func (s *Service) notifyFailure(ctx context.Context, organization, operation string, err error) {
	s.notify(ctx, notifications.EventError, notifications.Payload{
		"organization": organization,
		"operation":    operation,
		"error":        err,
	})
}
