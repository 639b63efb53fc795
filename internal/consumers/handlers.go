package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"beautybook/internal/models"

	"github.com/nats-io/stan.go"
)

// ErrNoRecipient means the event has nobody to notify.
var ErrNoRecipient = errors.New("event has no recipient")

// UserLookup resolves account owners to their email.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type Handlers struct {
	users    UserLookup
	notifier Notifier
}

func NewHandlers(users UserLookup, notifier Notifier) *Handlers {
	return &Handlers{users: users, notifier: notifier}
}

// Handle turns one event into a notification. Malformed payloads and events
// without a recipient are reported as permanent failures.
func (h *Handlers) Handle(ctx context.Context, subject string, data []byte) error {
	switch subject {
	case models.EventBookingCreated:
		var event models.BookingCreatedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal booking created event: %w", err))
		}
		recipient, err := h.recipient(ctx, event.UserID, event.GuestEmail)
		if err != nil {
			return err
		}
		return h.notifier.Notify(ctx, Notification{
			Kind:      subject,
			Recipient: recipient,
			Reference: event.Reference,
			Subject:   "Booking request received " + event.Reference,
			Fields: map[string]any{
				"booking_date": event.Date,
				"time_slot":    event.TimeSlot,
				"total":        event.Total,
				"deposit":      event.Deposit,
			},
		})

	case models.EventBookingCancelled:
		var event models.BookingCancelledEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal booking cancelled event: %w", err))
		}
		return h.notifier.Notify(ctx, Notification{
			Kind:      subject,
			Recipient: "operators",
			Reference: event.Reference,
			Subject:   "Booking cancelled " + event.Reference,
			Fields: map[string]any{
				"by_operator": event.ByOperator,
				"reason":      event.Reason,
			},
		})

	case models.EventBookingDepositPaid:
		var event models.DepositUpdatedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal deposit event: %w", err))
		}
		if !event.Paid {
			return nil
		}
		return h.notifier.Notify(ctx, Notification{
			Kind:      subject,
			Recipient: "operators",
			Reference: event.Reference,
			Subject:   "Deposit received " + event.Reference,
			Fields:    map[string]any{"status": event.Status},
		})

	case models.EventBookingUpdated:
		var event models.BookingUpdatedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal booking updated event: %w", err))
		}
		return h.notifier.Notify(ctx, Notification{
			Kind:      subject,
			Recipient: "operators",
			Reference: event.Reference,
			Subject:   "Booking updated " + event.Reference,
			Fields: map[string]any{
				"status":       event.Status,
				"booking_date": event.Date,
				"time_slot":    event.TimeSlot,
				"total":        event.Total,
			},
		})

	case models.EventGuestRecordsLinked:
		var event models.GuestRecordsLinkedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return permanent(fmt.Errorf("failed to unmarshal guest records event: %w", err))
		}
		slog.Info("Guest records linked",
			"user_id", event.UserID,
			"orders_linked", event.OrdersLinked,
			"bookings_linked", event.BookingsLinked)
		return nil
	}

	return permanent(fmt.Errorf("unknown subject %q", subject))
}

func (h *Handlers) recipient(ctx context.Context, userID *int64, guestEmail *string) (string, error) {
	if userID != nil {
		user, err := h.users.GetByID(ctx, *userID)
		if err != nil {
			return "", fmt.Errorf("failed to get user: %w", err)
		}
		if user != nil {
			return user.Email, nil
		}
	}
	if guestEmail != nil && *guestEmail != "" {
		return *guestEmail, nil
	}
	return "", permanent(ErrNoRecipient)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

// IsPermanent reports whether redelivering the message cannot help.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// MsgHandler adapts Handle to a manual-ack subscription. Transient failures
// leave the message unacked so the server redelivers it.
func (h *Handlers) MsgHandler(subject string) stan.MsgHandler {
	return func(m *stan.Msg) {
		err := h.Handle(context.Background(), subject, m.Data)
		switch {
		case err == nil:
		case IsPermanent(err):
			slog.Error("Dropping event", "subject", subject, "sequence", m.Sequence, "error", err)
		default:
			slog.Error("Failed to handle event, awaiting redelivery",
				"subject", subject, "sequence", m.Sequence, "error", err)
			return
		}

		if err := m.Ack(); err != nil {
			slog.Error("Failed to ack event", "subject", subject, "sequence", m.Sequence, "error", err)
		}
	}
}
