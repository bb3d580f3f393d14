// Package email delivers verification messages. Dispatch is fire-and-forget:
// registration requests enqueue and return, workers deliver in the
// background, and delivery failures are logged, never propagated.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"authgate/internal/platform/config"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message synchronously. Implementations: SMTPSender
// for production, LogSender for dev, stubs in tests.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans messages out to a worker pool over a bounded buffer.
// Enqueue never blocks the caller: when the buffer is full the message is
// dropped and counted, matching the product rule that a lost verification
// mail only costs the user a re-request.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
	inbox  chan Message
	group  *errgroup.Group
}

// NewDispatcher starts workers consuming the dispatch buffer.
func NewDispatcher(sender Sender, logger *slog.Logger, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		inbox:  make(chan Message, buffer),
		group:  &errgroup.Group{},
	}
	for i := 0; i < workers; i++ {
		d.group.Go(d.run)
	}
	return d
}

func (d *Dispatcher) run() error {
	for msg := range d.inbox {
		if err := d.sender.Send(context.Background(), msg); err != nil {
			d.logger.Error("email delivery failed", "to", msg.To, "error", err)
			droppedTotal.Inc()
			continue
		}
		sentTotal.Inc()
	}
	return nil
}

// Enqueue queues msg for delivery and returns immediately.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.inbox <- msg:
	default:
		d.logger.Warn("email dispatch buffer full, dropping message", "to", msg.To)
		droppedTotal.Inc()
	}
}

// Close stops accepting messages and waits for in-flight deliveries.
func (d *Dispatcher) Close() error {
	close(d.inbox)
	return d.group.Wait()
}

// VerificationMessage builds the registration confirmation mail for a code.
func VerificationMessage(to string, code int) Message {
	return Message{
		To:      to,
		Subject: "Registration confirmation",
		Body:    fmt.Sprintf("Hi %s,\n\nYour verification code is: %d\n\nThe code expires in 5 minutes.", DisplayName(to), code),
	}
}

// LogSender writes messages to the log instead of delivering them. Used when
// no SMTP endpoint is configured (dev environments).
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("email (log sender)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewSender picks an implementation from config: SMTP when a host is set,
// otherwise the log sender.
func NewSender(cfg config.SMTPConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return &LogSender{Logger: logger}
	}
	return NewSMTPSender(cfg)
}
