// Package mail sends transactional email through Resend or SMTP.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v2"
	gomail "github.com/wneessen/go-mail"

	"github.com/kidandcat/fridge/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// FromConfig picks SMTP when enabled, Resend when an API key is set, and
// falls back to logging the message.
func FromConfig(ecfg config.EmailConfig, log *slog.Logger) Mailer {
	switch {
	case ecfg.SMTPEnabled:
		return &SMTP{cfg: ecfg}
	case ecfg.ResendAPIKey != "":
		return NewResend(ecfg)
	default:
		return &Log{log: log}
	}
}

type Resend struct {
	from   string
	client *resend.Client
}

func NewResend(ecfg config.EmailConfig) *Resend {
	return &Resend{from: ecfg.FromEmail, client: resend.NewClient(ecfg.ResendAPIKey)}
}

func (r *Resend) Send(ctx context.Context, m Message) error {
	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{m.To},
		Subject: m.Subject,
		Html:    m.HTML,
		ReplyTo: m.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

type SMTP struct {
	cfg config.EmailConfig
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	msg, err := s.message(m)
	if err != nil {
		return err
	}

	port, err := strconv.Atoi(s.cfg.SMTPPort)
	if err != nil {
		return fmt.Errorf("smtp port %q: %w", s.cfg.SMTPPort, err)
	}
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.SMTPUser),
			gomail.WithPassword(s.cfg.SMTPPass),
		)
	}
	client, err := gomail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTP) message(m Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Log only records messages. Used when no delivery is configured.
type Log struct {
	log *slog.Logger
}

func (l *Log) Send(_ context.Context, m Message) error {
	l.log.Info("email not sent, no delivery configured", "to", m.To, "subject", m.Subject)
	return nil
}

// ConfirmSignup is the account confirmation email.
func ConfirmSignup(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Confirm your fridge account",
		HTML: fmt.Sprintf(
			`<p>Click the link below to confirm your email:</p>`+
				`<p><a href="%s">Confirm my account</a></p>`+
				`<p>This link expires in 24 hours.</p>`,
			html.EscapeString(link),
		),
	}
}

// FriendNote is the email carrying a note someone stuck on a friend's
// fridge.
func FriendNote(to, from, title, content, boardURL string) Message {
	body := strings.ReplaceAll(html.EscapeString(content), "\n", "<br>")
	return Message{
		To:      to,
		ReplyTo: from,
		Subject: fmt.Sprintf("%s left you a note: %s", from, title),
		HTML: fmt.Sprintf(
			`<div style="background:#ffcc80;padding:16px;border-radius:6px;max-width:320px">`+
				`<h3 style="margin-top:0">%s</h3><p>%s</p></div>`+
				`<p><a href="%s">Open your fridge</a></p>`,
			html.EscapeString(title), body, html.EscapeString(boardURL),
		),
	}
}
