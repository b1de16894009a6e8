// Package notify emails the operator when a booking lands. Delivery is
// fire-and-forget: a failure here never touches the row status the
// engine already recorded.
package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/example/dtbook/internal/booking"
)

type Config struct {
	Host     string
	Port     string
	Username string // empty disables auth (local relay / Mailpit)
	Password string
	From     string
	To       string
}

type EmailNotifier struct {
	addr string
	auth smtp.Auth
	from string
	to   string
}

func New(cfg Config) *EmailNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = "no-reply@dtbook.local"
	}
	return &EmailNotifier{
		addr: net.JoinHostPort(strings.TrimSpace(cfg.Host), strings.TrimSpace(cfg.Port)),
		auth: auth,
		from: from,
		to:   strings.TrimSpace(cfg.To),
	}
}

func (n *EmailNotifier) BookingSucceeded(ctx context.Context, cfg booking.ValidatedConfig, slotLabel string) error {
	subject := "Booking confirmed: " + cfg.Identity
	msg := buildMessage(n.from, n.to, subject, successBody(cfg, slotLabel))
	return smtp.SendMail(n.addr, n.auth, n.from, []string{n.to}, []byte(msg))
}

func successBody(cfg booking.ValidatedConfig, slotLabel string) string {
	d := cfg.Details
	var b strings.Builder
	b.WriteString("A test appointment has been booked.\n\n")
	fmt.Fprintf(&b, "Licence number: %s\n", cfg.Identity)
	fmt.Fprintf(&b, "Contact: %s (%s)\n", d.ContactName, d.ContactPhone)
	fmt.Fprintf(&b, "Test type: %s\n", d.TestType)
	fmt.Fprintf(&b, "Location: %s - %s\n", d.Region, d.Centre)
	fmt.Fprintf(&b, "Appointment: %s\n", slotLabel)
	b.WriteString("\nPlease attend on time.\n")
	return b.String()
}

// buildMessage assembles a minimal RFC 5322 message, enough for any
// plain SMTP relay.
func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from, to, subject, body,
	)
}
