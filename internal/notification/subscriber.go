package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/user"
)

type UserAPI interface {
	GetUser(id int64) (*user.User, error)
}

// Subscriber turns workflow events into notifications. Handlers run on the
// event bus goroutines; an error here is logged by the bus and never
// surfaces to the workflow that published the event.
type Subscriber struct {
	notifier Notifier
	users    UserAPI
	logger   *slog.Logger
}

func NewSubscriber(notifier Notifier, users UserAPI, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		notifier: notifier,
		users:    users,
		logger:   logger,
	}
}

func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLeaveSubmitted, s.onLeaveEvent)
	bus.Subscribe(events.EventTypeLeaveApproved, s.onLeaveEvent)
	bus.Subscribe(events.EventTypeLeaveRejected, s.onLeaveEvent)
	bus.Subscribe(events.EventTypeLeaveCancelled, s.onLeaveEvent)
	bus.Subscribe(events.EventTypeToilCreditFailed, s.onToilCreditFailed)
}

func (s *Subscriber) onLeaveEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveRequestEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	u, err := s.users.GetUser(e.UserID)
	if err != nil {
		return fmt.Errorf("lookup user %d: %w", e.UserID, err)
	}

	var subject, body string
	dates := fmt.Sprintf("%s to %s", e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))

	switch event.EventType() {
	case events.EventTypeLeaveSubmitted:
		subject = "Leave request submitted"
		body = fmt.Sprintf("Your %s leave request for %s was submitted and is awaiting approval.", e.LeaveType, dates)
	case events.EventTypeLeaveApproved:
		subject = "Leave request approved"
		body = fmt.Sprintf("Your %s leave request for %s has been approved.", e.LeaveType, dates)
	case events.EventTypeLeaveRejected:
		subject = "Leave request rejected"
		body = fmt.Sprintf("Your %s leave request for %s was rejected. Reason: %s", e.LeaveType, dates, e.Reason)
	case events.EventTypeLeaveCancelled:
		subject = "Leave request cancelled"
		body = fmt.Sprintf("Your %s leave request for %s was cancelled.", e.LeaveType, dates)
	default:
		return nil
	}

	return s.notifier.Send(u.Email, subject, body)
}

// onToilCreditFailed alerts the affected user that a manual correction is
// coming. The operational signal for reconciliation is the ERROR log the
// workflow already wrote.
func (s *Subscriber) onToilCreditFailed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ToilCreditFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	u, err := s.users.GetUser(e.UserID)
	if err != nil {
		return fmt.Errorf("lookup user %d: %w", e.UserID, err)
	}

	body := fmt.Sprintf(
		"Your leave request #%d was approved, but the TOIL adjustment of %.1f hours could not be recorded. An administrator will correct your balance.",
		e.RequestID, e.Hours)

	return s.notifier.Send(u.Email, "TOIL adjustment pending", body)
}
