package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htemplate "html/template"
	ttemplate "text/template"
	"time"
)

//go:embed templates/*
var templatesFS embed.FS

// Mailer arma los correos del dominio sobre un Sender.
type Mailer struct {
	sender   Sender
	brand    string
	html     *htemplate.Template
	text     *ttemplate.Template
	location *time.Location
}

type recoveryVars struct {
	Brand  string
	Nombre string
	Code   string
	TTL    string
}

type changedVars struct {
	Brand  string
	Nombre string
	When   string
	IP     string
}

// NewMailer parsea las plantillas embebidas. brand aparece en el asunto y el
// encabezado de cada correo.
func NewMailer(sender Sender, brand string) (*Mailer, error) {
	h, err := htemplate.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("email: parse html templates: %w", err)
	}
	t, err := ttemplate.ParseFS(templatesFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("email: parse text templates: %w", err)
	}
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		loc = time.UTC
	}
	return &Mailer{sender: sender, brand: brand, html: h, text: t, location: loc}, nil
}

// SendRecoveryCode envía el código de recuperación.
func (m *Mailer) SendRecoveryCode(ctx context.Context, to, nombre, code string, ttl time.Duration) error {
	vars := recoveryVars{Brand: m.brand, Nombre: nombre, Code: code, TTL: formatDuration(ttl)}
	return m.send(ctx, to, m.brand+": código de recuperación", "recovery_code", vars)
}

// SendPasswordChanged avisa que la contraseña cambió.
func (m *Mailer) SendPasswordChanged(ctx context.Context, to, nombre string, at time.Time, ip string) error {
	vars := changedVars{Brand: m.brand, Nombre: nombre, When: at.In(m.location).Format("02/01/2006 15:04"), IP: ip}
	return m.send(ctx, to, m.brand+": tu contraseña fue cambiada", "password_changed", vars)
}

func (m *Mailer) send(ctx context.Context, to, subject, name string, data any) error {
	var hb, tb bytes.Buffer
	if err := m.html.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return fmt.Errorf("email: render %s.html: %w", name, err)
	}
	if err := m.text.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return fmt.Errorf("email: render %s.txt: %w", name, err)
	}
	return m.sender.Send(ctx, Message{To: to, Subject: subject, HTMLBody: hb.String(), TextBody: tb.String()})
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	hours := int(d.Hours())
	if hours >= 1 {
		if hours == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", hours)
	}
	minutes := int(d.Minutes())
	if minutes == 1 {
		return "1 minuto"
	}
	return fmt.Sprintf("%d minutos", minutes)
}
