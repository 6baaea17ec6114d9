package services

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/models"
	"aria-analytics-pipeline/internal/pkg/logger"
)

// MailSender delivers report emails. Send reports success as a boolean
// rather than an error; delivery failure must never abort a multi-step
// run, so the caller only records the outcome.
type MailSender interface {
	Send(payload models.EmailPayload) bool
	Mode() config.MailMode
}

// MailService sends over SMTP when credentials are configured and logs
// the would-be delivery otherwise.
type MailService struct {
	cfg    config.MailConfig
	log    *logger.Logger
	dialer *gomail.Dialer
}

func NewMailService(cfg config.MailConfig, log *logger.Logger) *MailService {
	s := &MailService{cfg: cfg, log: log}

	if cfg.Mode == config.MailModeSandbox {
		log.Info("mail service starting in sandbox mode", "reason", cfg.ModeReason)
		return s
	}

	s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.User, cfg.AppPassword)
	s.dialer.SSL = cfg.SMTPSecure

	log.Info("mail service starting in live mode",
		"smtp_host", cfg.SMTPHost, "smtp_port", cfg.SMTPPort, "from", cfg.FromEmail)
	return s
}

func (s *MailService) Mode() config.MailMode {
	return s.cfg.Mode
}

// Send delivers payload and returns whether delivery succeeded. Sandbox
// mode logs the message and always reports success.
func (s *MailService) Send(payload models.EmailPayload) bool {
	start := time.Now()

	if s.cfg.Mode == config.MailModeSandbox {
		s.log.Info("sandbox email (not sent)",
			"to", payload.Recipient,
			"subject", payload.Subject,
			"body_length", len(payload.Body),
		)
		return true
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(s.cfg.FromEmail, s.cfg.FromName))
	msg.SetHeader("To", payload.Recipient)
	msg.SetHeader("Subject", payload.Subject)

	if looksLikeHTML(payload.Body) {
		msg.SetBody("text/html", payload.Body)
	} else {
		msg.SetBody("text/plain", payload.Body)
		msg.AddAlternative("text/html", plainToHTML(payload.Body))
	}

	err := s.dialer.DialAndSend(msg)
	s.log.LogService("mail", "send", time.Since(start), map[string]any{
		"to":      payload.Recipient,
		"subject": payload.Subject,
	}, err)
	return err == nil
}

func looksLikeHTML(body string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(body))
	return strings.HasPrefix(trimmed, "<!doctype html") || strings.HasPrefix(trimmed, "<html")
}

func plainToHTML(body string) string {
	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(body)
	return fmt.Sprintf("<div style=\"font-family:Arial,sans-serif;line-height:1.6;\">%s</div>",
		strings.ReplaceAll(escaped, "\n", "<br>\n"))
}
