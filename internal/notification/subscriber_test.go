package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/user"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type capturedMessage struct {
	To      string
	Subject string
	Body    string
}

type captureNotifier struct {
	sent []capturedMessage
	err  error
}

func (c *captureNotifier) Send(to, subject, body string) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, capturedMessage{To: to, Subject: subject, Body: body})
	return nil
}

type mockUserAPI struct {
	users map[int64]*user.User
}

func (m *mockUserAPI) GetUser(id int64) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

var _ = Describe("Subscriber", func() {
	var (
		bus      *events.EventBus
		notifier *captureNotifier
		users    *mockUserAPI
		logger   *slog.Logger
	)

	start := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		notifier = &captureNotifier{}
		users = &mockUserAPI{users: map[int64]*user.User{
			1: {ID: 1, Email: "user@mail.com", Name: "User"},
		}}
		notification.NewSubscriber(notifier, users, logger).Register(bus)
	})

	It("mails the requester when a request is approved", func() {
		err := bus.PublishSync(context.Background(),
			events.NewLeaveApprovedEvent(10, 1, "annual", start, end))

		Expect(err).ToNot(HaveOccurred())
		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].To).To(Equal("user@mail.com"))
		Expect(notifier.sent[0].Subject).To(ContainSubstring("approved"))
		Expect(notifier.sent[0].Body).To(ContainSubstring("2025-06-16"))
	})

	It("includes the reason in a rejection notice", func() {
		err := bus.PublishSync(context.Background(),
			events.NewLeaveRejectedEvent(10, 1, "annual", start, end, "coverage gap"))

		Expect(err).ToNot(HaveOccurred())
		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].Body).To(ContainSubstring("coverage gap"))
	})

	It("alerts the user when a TOIL credit could not be recorded", func() {
		err := bus.PublishSync(context.Background(),
			events.NewToilCreditFailedEvent(10, 1, -8, errors.New("ledger unavailable")))

		Expect(err).ToNot(HaveOccurred())
		Expect(notifier.sent).To(HaveLen(1))
		Expect(notifier.sent[0].Subject).To(ContainSubstring("TOIL"))
	})

	It("propagates a lookup failure to the bus", func() {
		err := bus.PublishSync(context.Background(),
			events.NewLeaveApprovedEvent(10, 99, "annual", start, end))

		Expect(err).To(HaveOccurred())
		Expect(notifier.sent).To(BeEmpty())
	})
})
