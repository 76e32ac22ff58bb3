package mail

import (
	"github.com/client-portal-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends emails. The verification core only constructs message intent;
// actual delivery semantics (retries, bounces) belong to the SMTP provider.
type Mailer interface {
	Send(to, subject, body string) error
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
