package consumers

import (
	"context"
	"log/slog"
)

// Notification is a message for one recipient produced from a booking event.
type Notification struct {
	Kind      string
	Recipient string
	Reference string
	Subject   string
	Fields    map[string]any
}

// Notifier delivers notifications. Delivery itself lives outside this service.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier records the hand-off in the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}

	args := []any{
		"kind", n.Kind,
		"recipient", n.Recipient,
		"reference", n.Reference,
		"subject", n.Subject,
	}
	for k, v := range n.Fields {
		args = append(args, k, v)
	}
	log.Info("Notification dispatched", args...)
	return nil
}
