package email

import (
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// Sender entrega un email text/plain a un único destinatario.
type Sender interface {
	Send(to, subject, textBody string) error
}

// SMTPConfig contiene la configuración para conectarse a un servidor SMTP.
type SMTPConfig struct {
	Host               string
	Port               int    // default 587
	Username           string
	Password           string // plain, ya descifrada
	From               string // remitente por defecto
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool   // sólo dev
	Timeout            time.Duration
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}
	if s.cfg.Timeout > 0 {
		d.Timeout = s.cfg.Timeout
	}

	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	default:
		// "auto": go-mail negocia STARTTLS si el server lo ofrece
	}
	return d
}

func (s *SMTPSender) Send(to, subject, textBody string) error {
	log := logger.L().With(
		logger.Component("smtp_sender"),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
		logger.Email(to),
	)
	log.Debug("sending email", logger.String("subject", subject), logger.String("tls_mode", s.cfg.TLSMode))

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)

	if err := s.dialer().DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("email sent")
	return nil
}

// Check abre y cierra una sesión SMTP (dial, TLS y auth) sin enviar nada.
func (s *SMTPSender) Check() error {
	c, err := s.dialer().Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return c.Close()
}

// LogSender no entrega nada: registra el mensaje. Para dev sin SMTP.
type LogSender struct{}

func (LogSender) Send(to, subject, textBody string) error {
	logger.L().Info("email (log sender)",
		logger.Component("log_sender"),
		logger.Email(to),
		logger.String("subject", subject),
		logger.String("body", textBody),
	)
	return nil
}
