package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"reviewdb/internal/config"
)

// EmailNotifier sends confirmation codes over SMTP.
type EmailNotifier struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewEmailNotifier(cfg *config.Config, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger,
	}
}

// SendConfirmationCode emails the 6-digit code. When SMTP is not configured
// the message is skipped with a warning so local setups can read the code
// from Redis instead of running a mail server.
func (n *EmailNotifier) SendConfirmationCode(ctx context.Context, toEmail, username, code string) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPUser == "" || n.cfg.FromEmail == "" {
		n.logger.Warn("email config missing, skip confirmation code delivery",
			slog.String("username", username))
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("[reviewdb] Signup confirmation for %s", username))

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>reviewdb signup</h2>
    <p>Your confirmation code:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>Exchange it at /api/v1/auth/token/ to receive your access token.</p>
  </div>
</body>
</html>`, code)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("confirmation code sent", slog.String("username", username))
	return nil
}
