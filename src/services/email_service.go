package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/partsviewer/backend/src/config"
	"github.com/username/partsviewer/backend/src/logger"
	"github.com/username/partsviewer/backend/src/models"
)

const digestSubject = "Parts Viewer: price changes from the latest import"

// NewEmailService picks the digest transport from configuration. Without a
// recipient, or with incomplete provider settings, digests are only logged.
func NewEmailService() Notifier {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	recipient := config.Cfg.NotifyEmail
	logger.L.Info("Initializing email service", "provider", provider, "recipientConfigured", recipient != "")

	if recipient == "" {
		return &MockEmailService{}
	}

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{Recipient: recipient}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
			recipient:   recipient,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{Recipient: recipient}
		}
		return &SMTPEmailService{
			SMTPServer:   config.Cfg.SMTPServer,
			SMTPPort:     config.Cfg.SMTPPort,
			SMTPUser:     config.Cfg.SMTPUser,
			SMTPPassword: config.Cfg.SMTPPassword,
			SenderEmail:  config.Cfg.SenderEmail,
			Recipient:    recipient,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{Recipient: recipient}
	}
}

func digestText(changes []models.PriceChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d part price(s) changed in the latest import:\n\n", len(changes))
	for _, c := range changes {
		fmt.Fprintf(&b, "- %s: %g -> %g\n", c.PartName, c.Before, c.After)
	}
	return b.String()
}

func digestHTML(changes []models.PriceChange) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6;">`)
	fmt.Fprintf(&b, "<p>%d part price(s) changed in the latest import:</p>", len(changes))
	b.WriteString(`<table style="border-collapse: collapse;"><tr><th align="left">Part</th><th>Before</th><th>After</th></tr>`)
	for _, c := range changes {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%g</td><td>%g</td></tr>", html.EscapeString(c.PartName), c.Before, c.After)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

type SMTPEmailService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
	Recipient    string
}

func (s *SMTPEmailService) SendPriceChangeDigest(ctx context.Context, changes []models.PriceChange) error {
	header := make(map[string]string)
	header["From"] = s.SenderEmail
	header["To"] = s.Recipient
	header["Subject"] = digestSubject
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + digestText(changes)

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.SenderEmail, []string{s.Recipient}, []byte(message)); err != nil {
		logger.L.Error("Failed to send price change digest via SMTP", "error", err, "to", s.Recipient)
		return fmt.Errorf("failed to send price change digest via SMTP: %w", err)
	}
	logger.L.Info("Price change digest sent via SMTP", "to", s.Recipient, "changes", len(changes))
	return nil
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	recipient   string
}

func (s *MailgunEmailService) SendPriceChangeDigest(ctx context.Context, changes []models.PriceChange) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	message := s.mg.NewMessage(from, digestSubject, digestText(changes), s.recipient)
	message.SetHtml(digestHTML(changes))
	message.AddTag("price-change")

	ctx, cancel := context.WithTimeout(ctx, time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send price change digest via Mailgun", "error", err, "to", s.recipient, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Price change digest sent via Mailgun", "to", s.recipient, "id", id, "changes", len(changes))
	return nil
}

// MockEmailService logs the digest instead of sending it.
type MockEmailService struct {
	Recipient string

	mu   sync.Mutex
	sent [][]models.PriceChange
}

func (m *MockEmailService) SendPriceChangeDigest(ctx context.Context, changes []models.PriceChange) error {
	m.mu.Lock()
	m.sent = append(m.sent, changes)
	m.mu.Unlock()
	logger.L.Info("MockEmailService: Would send price change digest.", "to", m.Recipient, "changes", len(changes))
	return nil
}

// Sent returns the digests recorded so far.
func (m *MockEmailService) Sent() [][]models.PriceChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]models.PriceChange(nil), m.sent...)
}
