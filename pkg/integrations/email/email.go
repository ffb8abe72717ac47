// Package email delivers notifications over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/protocol"
)

var ErrNotConfigured = errors.New("smtp server is not configured")

// SMTPConfig is the outgoing mail server shared by every email connection.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SendFunc has the signature of smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Integration sends one email per delivery to the recipients of the connection.
type Integration struct {
	config SMTPConfig
	send   SendFunc
	logger *slog.Logger
	now    func() time.Time
}

func (e *Integration) Process(ctx context.Context, delivery protocol.Delivery) error {
	if e.config.Host == "" {
		return ErrNotConfigured
	}

	settings := integrations.Resolve(delivery)

	to, err := settings.Required("to")
	if err != nil {
		return err
	}

	recipients := splitRecipients(to)
	if len(recipients) == 0 {
		return fmt.Errorf("%w: to", integrations.ErrMissingSetting)
	}

	subject, err := settings.Required("subject")
	if err != nil {
		return err
	}

	contentType := settings.String("content_type")
	if contentType == "" {
		contentType = "text/plain"
	}

	message := e.buildMessage(recipients, subject, settings.String("body"), contentType)

	var auth smtp.Auth
	if e.config.Username != "" {
		auth = smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	}

	err = e.send(e.config.addr(), auth, e.config.From, recipients, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	integrations.Logger(delivery, e.logger).DebugContext(ctx, "Email sent", "recipients", len(recipients))

	return nil
}

func (e *Integration) buildMessage(to []string, subject, body, contentType string) []byte {
	var b strings.Builder

	b.WriteString("From: " + e.config.From + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + e.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return []byte(b.String())
}

func splitRecipients(to string) []string {
	var recipients []string

	for _, r := range strings.Split(to, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			recipients = append(recipients, r)
		}
	}

	return recipients
}
