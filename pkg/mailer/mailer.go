package mailer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/gilanghuda/crewhub-backend/pkg/logger"
)

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

const defaultBackoff = 500 * time.Millisecond

// SMTPMailer delivers mail through gomail, retrying a failed delivery once.
type SMTPMailer struct {
	from    string
	dialer  dialer
	backoff time.Duration
}

func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return nil, errors.New("SMTP config not set")
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		from:    from,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		backoff: defaultBackoff,
	}, nil
}

func (s *SMTPMailer) Send(ctx context.Context, e Email) error {
	if e.To == "" {
		return errors.New("mailer: empty recipient")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		m.AddAlternative("text/html", e.HTML)
	}

	backoff := s.backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	b := retry.WithMaxRetries(1, retry.NewConstant(backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.dialer.DialAndSend(m); err != nil {
			logger.Warn("smtp send failed", "to", e.To, "subject", e.Subject, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to send mail")
	}
	return nil
}

// LogMailer only logs. It stands in when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, e Email) error {
	logger.Info("mail (not sent, smtp disabled)", "to", e.To, "subject", e.Subject)
	return nil
}
