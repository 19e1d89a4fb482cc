package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"hallbook/internal/shared/config"
	"hallbook/pkg/logger"
)

// EmailSender delivers a rendered notification to its recipient.
type EmailSender interface {
	Send(ctx context.Context, notification *Notification) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	BCCEmail  string
	UseTLS    bool
}

// SMTPConfigFrom maps the application email settings onto SMTP settings.
func SMTPConfigFrom(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		BCCEmail:  cfg.BCCEmail,
		UseTLS:    true,
	}
}

// SMTPSender sends over plain SMTP with STARTTLS. Every message is BCC'd to
// the bookings mailbox so the committee has a copy of all correspondence.
type SMTPSender struct {
	config *SMTPConfig
	log    *logger.Logger
}

func NewSMTPSender(config *SMTPConfig) (*SMTPSender, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("smtp port must be between 1 and 65535")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &SMTPSender{config: config, log: logger.GetDefault()}, nil
}

func (s *SMTPSender) Send(ctx context.Context, notification *Notification) error {
	message, err := s.buildMessage(notification)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	recipients := []string{notification.RecipientEmail}
	if s.config.BCCEmail != "" && s.config.BCCEmail != notification.RecipientEmail {
		recipients = append(recipients, s.config.BCCEmail)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, recipients, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, recipients, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", notification.RecipientEmail, err)
	}

	s.log.DebugWithContext(ctx, "email delivered", map[string]interface{}{
		"notification_id": notification.ID,
		"recipient":       notification.RecipientEmail,
	})
	return nil
}

func (s *SMTPSender) sendWithSTARTTLS(addr string, auth smtp.Auth, recipients []string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Quit()

	tlsConfig := &tls.Config{ServerName: s.config.Host}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start tls: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range recipients {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// buildMessage assembles the MIME message. Plain messages are
// multipart/alternative; messages with attachments wrap that in
// multipart/mixed so calendar files survive alongside the bodies.
func (s *SMTPSender) buildMessage(notification *Notification) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&buf, "To: %s\r\n", notification.RecipientEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", notification.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	mixed := multipart.NewWriter(&buf)

	if len(notification.Attachments) > 0 {
		fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixed.Boundary())

		alternativeHeader := textproto.MIMEHeader{}
		var alternative bytes.Buffer
		alternativeWriter := multipart.NewWriter(&alternative)
		alternativeHeader.Set("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%s", alternativeWriter.Boundary()))

		part, err := mixed.CreatePart(alternativeHeader)
		if err != nil {
			return nil, err
		}
		if err := writeBodyParts(alternativeWriter, notification); err != nil {
			return nil, err
		}
		if err := alternativeWriter.Close(); err != nil {
			return nil, err
		}
		if _, err := part.Write(alternative.Bytes()); err != nil {
			return nil, err
		}

		for _, attachment := range notification.Attachments {
			header := textproto.MIMEHeader{}
			header.Set("Content-Type", attachment.ContentType)
			header.Set("Content-Transfer-Encoding", "base64")
			header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))

			part, err := mixed.CreatePart(header)
			if err != nil {
				return nil, err
			}
			encoded := base64.StdEncoding.EncodeToString(attachment.Content)
			if _, err := part.Write([]byte(encoded)); err != nil {
				return nil, err
			}
		}

		if err := mixed.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mixed.Boundary())
	if err := writeBodyParts(mixed, notification); err != nil {
		return nil, err
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBodyParts(w *multipart.Writer, notification *Notification) error {
	if notification.TextBody != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "text/plain; charset=UTF-8")
		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write([]byte(notification.TextBody)); err != nil {
			return err
		}
	}

	if notification.HTMLBody != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "text/html; charset=UTF-8")
		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write([]byte(notification.HTMLBody)); err != nil {
			return err
		}
	}

	return nil
}

// LogSender writes notifications to the log instead of sending them. It
// stands in for SMTP when no mail host is configured, which keeps local
// development and tests quiet.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender() *LogSender {
	return &LogSender{log: logger.GetDefault()}
}

func (s *LogSender) Send(ctx context.Context, notification *Notification) error {
	s.log.InfoWithContext(ctx, "email suppressed, no smtp host configured", map[string]interface{}{
		"notification_id":   notification.ID,
		"notification_type": string(notification.Type),
		"recipient":         notification.RecipientEmail,
		"subject":           notification.Subject,
	})
	return nil
}
