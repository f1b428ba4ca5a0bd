package notification

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	"gopkg.in/gomail.v2"
)

// Notifier delivers a message to one recipient. Delivery is best effort:
// callers fire it from event handlers and never block a workflow on it.
type Notifier interface {
	Send(to, subject, body string) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewMailer(cfg internal.SMTPConfig, logger *slog.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Info("notification sent", "to", to, "subject", subject)
	return nil
}

// LogNotifier stands in when SMTP is disabled: notifications land in the
// log instead of a mailbox.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(to, subject, body string) error {
	n.logger.Info("notification (smtp disabled)", "to", to, "subject", subject, "body", body)
	return nil
}
