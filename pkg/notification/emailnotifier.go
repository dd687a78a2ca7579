package notification

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

// EmailNotifier sends email through SMTP.
type EmailNotifier struct {
	config SMTPConfig
	client *mail.Client
}

// NewEmailNotifier creates an email notifier from the SMTP config.
func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		slog.Info("Using NoTLS policy for SMTP")
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailNotifier{
		config: config,
		client: client,
	}, nil
}

// Send delivers the message over SMTP.
func (n *EmailNotifier) Send(data NotificationData) (SendResult, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.config.From); err != nil {
		return SendResult{}, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(data.To); err != nil {
		return SendResult{}, fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(data.Subject)
	msg.SetBodyString(mail.TypeTextPlain, data.Body)
	if data.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, data.HTML)
	}

	messageID := uuid.New().String()
	msg.SetMessageIDWithValue(messageID)

	if err := n.client.DialAndSend(msg); err != nil {
		return SendResult{}, fmt.Errorf("failed to send email: %w", err)
	}

	return SendResult{MessageID: messageID, Delivered: true}, nil
}
