// Package mailer delivers contact-form messages over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
)

// SendFunc matches smtp.SendMail; swapped for a capture func in tests.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service implements interfaces.Mailer.
type Service struct {
	cfg    common.MailConfig
	send   SendFunc
	logger *common.Logger
}

// NewService creates a mailer from the mail configuration.
func NewService(cfg common.MailConfig, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{cfg: cfg, send: smtp.SendMail, logger: logger}
}

// WithSendFunc replaces the transport. Test hook.
func (s *Service) WithSendFunc(fn SendFunc) *Service {
	s.send = fn
	return s
}

// IsConfigured reports whether SMTP delivery is possible.
func (s *Service) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.From != "" && s.cfg.To != ""
}

// Send delivers one contact message to the configured recipient. The visitor
// address goes into Reply-To, never the envelope sender.
func (s *Service) Send(ctx context.Context, msg *models.ContactMessage) error {
	if !s.IsConfigured() {
		return errors.New("mail delivery not configured")
	}

	subject := msg.Subject
	if subject == "" {
		subject = "Contact form message"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", s.cfg.To)
	fmt.Fprintf(&b, "Reply-To: %s <%s>\r\n", sanitizeHeader(msg.Name), sanitizeHeader(msg.Email))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{s.cfg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info().Str("id", msg.ID).Msg("Contact message delivered")
	return nil
}

// sanitizeHeader strips CR/LF so form input cannot inject extra headers.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.ReplaceAll(v, "\n", " ")
}

// Ensure Service implements Mailer
var _ interfaces.Mailer = (*Service)(nil)
