package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChangePassword_HistoryScenario(t *testing.T) {
	f := newFixture(t)
	const (
		p1 = "Primera2026"
		p2 = "Segunda2026"
		p3 = "Tercera2026"
		p4 = "Cuarta2026x"
	)
	id := f.register("a@x.com", p1)

	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.Password.ChangePassword(f.ctx, id, p2, "10.0.0.7"))
	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.Password.ChangePassword(f.ctx, id, p3, "10.0.0.7"))

	// P1 sigue dentro de las últimas 3.
	f.clock.Advance(time.Minute)
	err := f.svc.Password.ChangePassword(f.ctx, id, p1, "10.0.0.7")
	require.ErrorIs(t, err, ErrPasswordReused)
	require.Equal(t, OutcomeSuccess, f.login("a@x.com", p3, "").Outcome, "un rechazo no escribe nada")

	require.NoError(t, f.svc.Password.ChangePassword(f.ctx, id, p4, "10.0.0.7"))

	hist, err := f.store.PasswordHistory().ListRecent(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	for i, want := range []string{p4, p3, p2} {
		ok, err := f.hasher.Verify(want, hist[i].Hash)
		require.NoError(t, err)
		require.True(t, ok, "posición %d", i)
	}

	// P1 salió del historial: vuelve a ser aceptable.
	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.Password.ChangePassword(f.ctx, id, p1, "10.0.0.7"))
	require.Equal(t, OutcomeSuccess, f.login("a@x.com", p1, "").Outcome)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	require.Len(t, f.notifier.changed, 4)
}

func TestChangePassword_Policy(t *testing.T) {
	f := newFixture(t)
	id := f.register("a@x.com", "Primera2026")

	err := f.svc.Password.ChangePassword(f.ctx, id, "corta", "")
	require.ErrorIs(t, err, ErrWeakPassword)
	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	require.Contains(t, pe.Reasons, "too_short")

	require.ErrorIs(t, f.svc.Password.ChangePassword(f.ctx, id, "", ""), ErrMissingFields)
	require.ErrorIs(t, f.svc.Password.ChangePassword(f.ctx, 999, "Valida2026", ""), ErrAccountNotFound)
}

func TestChangePassword_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	id := f.register("a@x.com", "Primera2026")
	f.notifier.err = errors.New("smtp down")

	require.NoError(t, f.svc.Password.ChangePassword(f.ctx, id, "Segunda2026", ""))
	require.Equal(t, OutcomeSuccess, f.login("a@x.com", "Segunda2026", "").Outcome)
}

func TestVerifyCurrent(t *testing.T) {
	f := newFixture(t)
	id := f.register("a@x.com", "Primera2026")

	require.NoError(t, f.svc.Password.VerifyCurrent(f.ctx, id, "Primera2026"))
	require.ErrorIs(t, f.svc.Password.VerifyCurrent(f.ctx, id, "Otra2026xx"), ErrPasswordMismatch)
	require.ErrorIs(t, f.svc.Password.VerifyCurrent(f.ctx, id, ""), ErrMissingFields)
	require.ErrorIs(t, f.svc.Password.VerifyCurrent(f.ctx, 42, "Primera2026"), ErrAccountNotFound)
}
