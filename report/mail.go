package report

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// MailConfig carries SMTP delivery settings. Values come from the
// environment (REPORT_TO, REPORT_FROM/MAIL_FROM, SMTP_HOST, SMTP_PORT,
// SMTP_USER, SMTP_PASS) or the config file.
type MailConfig struct {
	Host string   `yaml:"host"`
	Port int      `yaml:"port"` // 587 = STARTTLS, 465 = implicit TLS. Default: 587.
	User string   `yaml:"user"`
	Pass string   `yaml:"pass"`
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

// Complete reports whether the config has enough to attempt delivery.
func (c *MailConfig) Complete() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

// Mailer delivers reports over SMTP.
type Mailer struct {
	cfg MailConfig
}

// NewMailer creates a Mailer. Call Complete on the config first; NewMailer
// does not validate.
func NewMailer(cfg MailConfig) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}
}

// Send delivers the report as a multipart message: plain text body with an
// HTML alternative.
func (m *Mailer) Send(ctx context.Context, r *Report, html []byte) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("report: from address: %w", err)
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return fmt.Errorf("report: to addresses: %w", err)
	}
	msg.Subject(r.Subject())
	msg.SetBodyString(mail.TypeTextPlain, PlainText(r, html))
	msg.AddAlternativeString(mail.TypeTextHTML, string(html))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Pass),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("report: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("report: send: %w", err)
	}
	return nil
}
