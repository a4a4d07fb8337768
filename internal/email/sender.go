// Package email envía los correos transaccionales del módulo de autenticación:
// el código de recuperación de contraseña y el aviso de cambio de contraseña.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

// ErrUnavailable envuelve cualquier fallo de entrega (SMTP caído, timeout,
// credenciales). Los servicios lo traducen a DependencyUnavailable.
var ErrUnavailable = errors.New("email: proveedor no disponible")

// Message es un correo listo para enviar.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender entrega un Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig parámetros del servidor SMTP.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLSMode  string // "auto" | "starttls" | "ssl" | "none"
	Timeout  time.Duration
}

// SMTPSender implementa Sender con go-mail.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	log := logger.From(ctx).With(
		logger.Component("email.smtp"),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
	)

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	// multipart/alternative (txt + html)
	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		if msg.TextBody == "" {
			m.SetBody("text/html", msg.HTMLBody)
		} else {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	}

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.Timeout = s.cfg.Timeout
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	}

	// DialAndSend no acepta contexto: se corre aparte y se respeta el deadline.
	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			log.Error("smtp send failed", logger.String("diag", diagnose(err)), logger.Err(err))
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		log.Debug("email enviado")
		return nil
	case <-ctx.Done():
		log.Warn("smtp send abortado", logger.Err(ctx.Err()))
		return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

// diagnose clasifica el error SMTP para los logs.
func diagnose(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout"):
		return "timeout"
	case strings.Contains(s, "connection refused") || strings.Contains(s, "no such host") || strings.Contains(s, "dial tcp"):
		return "dial"
	case strings.Contains(s, "x509:") || strings.Contains(s, "handshake"):
		return "tls"
	case strings.Contains(s, "535") || strings.Contains(s, "5.7.8") || strings.Contains(s, "authentication failed"):
		return "auth"
	case strings.Contains(s, "5.1.1") || strings.Contains(s, "user unknown"):
		return "invalid_recipient"
	case strings.Contains(s, "421") || strings.Contains(s, "451") || strings.Contains(s, "try again later"):
		return "rate_limited"
	}
	return "unknown"
}

// LogSender no envía nada: registra el correo en el log y lo guarda en memoria.
// Se usa en desarrollo (sin SMTP_HOST) y en tests.
type LogSender struct {
	mu   sync.Mutex
	sent []Message
	// Err, si no es nil, se devuelve en cada Send (simula un proveedor caído).
	Err error
}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, s.Err)
	}
	s.sent = append(s.sent, msg)
	logger.From(ctx).Info("email (log sender)",
		logger.Component("email.log"),
		logger.Email(msg.To),
		logger.String("subject", msg.Subject),
	)
	return nil
}

// Sent devuelve una copia de los correos registrados.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// Last devuelve el último correo o false si no hubo ninguno.
func (s *LogSender) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}
