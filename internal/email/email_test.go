package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailer_RecoveryCode(t *testing.T) {
	out := NewLogSender()
	m, err := NewMailer(out, "Alquiladora Romero")
	require.NoError(t, err)

	require.NoError(t, m.SendRecoveryCode(context.Background(), "a@x.com", "Ana", "K7M2Q9", 15*time.Minute))

	msg, ok := out.Last()
	require.True(t, ok)
	require.Equal(t, "a@x.com", msg.To)
	require.Contains(t, msg.Subject, "recuperación")
	require.Contains(t, msg.TextBody, "K7M2Q9")
	require.Contains(t, msg.TextBody, "15 minutos")
	require.Contains(t, msg.HTMLBody, "K7M2Q9")
}

func TestMailer_PasswordChangedEscapesHTML(t *testing.T) {
	out := NewLogSender()
	m, err := NewMailer(out, "Alquiladora Romero")
	require.NoError(t, err)

	require.NoError(t, m.SendPasswordChanged(context.Background(), "a@x.com", "<b>Ana</b>", time.Now(), "10.0.0.1"))
	msg, _ := out.Last()
	require.NotContains(t, msg.HTMLBody, "<b>Ana</b>")
	require.Contains(t, msg.TextBody, "10.0.0.1")
}

func TestLogSender_Failure(t *testing.T) {
	out := NewLogSender()
	out.Err = errors.New("smtp down")
	m, _ := NewMailer(out, "X")
	err := m.SendRecoveryCode(context.Background(), "a@x.com", "Ana", "C", time.Minute)
	require.ErrorIs(t, err, ErrUnavailable)
	require.Empty(t, out.Sent())
}

func TestDiagnose(t *testing.T) {
	require.Equal(t, "auth", diagnose(errors.New("535 5.7.8 authentication failed")))
	require.Equal(t, "dial", diagnose(errors.New("dial tcp: connection refused")))
	require.Equal(t, "unknown", diagnose(errors.New("boom")))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "1 minuto", formatDuration(time.Minute))
	require.Equal(t, "2 horas", formatDuration(2*time.Hour))
	require.Equal(t, "", formatDuration(0))
}
