package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store/memory"
)

func newTestService(t *testing.T) (Service, int64, time.Time) {
	t.Helper()
	st := memory.New()
	id, err := st.Accounts().Create(context.Background(), repository.CreateAccountInput{
		Nombre: "Ana", ApellidoP: "Romero", Email: "a@x.com", PasswordHash: "h",
	})
	require.NoError(t, err)
	require.NoError(t, st.Accounts().SetMFASecret(context.Background(), id, "JBSWY3DPEHPK3PXP"))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewService(Deps{Accounts: st.Accounts(), Now: func() time.Time { return now }}), id, now
}

func TestGetAndList(t *testing.T) {
	svc, id, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", p.Email)
	require.True(t, p.MFAEnabled)

	_, err = svc.Get(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUpdateField(t *testing.T) {
	svc, id, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateField(ctx, id, "telefono", "7711234567"))
	require.NoError(t, svc.UpdateField(ctx, id, "apellidoM", " Ruiz "))
	p, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "7711234567", p.Telefono)
	require.Equal(t, "Ruiz", p.ApellidoM)

	require.ErrorIs(t, svc.UpdateField(ctx, id, "Rol", "Administrador"), ErrInvalidField)
	require.ErrorIs(t, svc.UpdateField(ctx, id, "telefono", "77-11"), ErrInvalidValue)
	require.ErrorIs(t, svc.UpdateField(ctx, id, "nombre", "  "), ErrInvalidValue)
	require.ErrorIs(t, svc.UpdateField(ctx, 99, "nombre", "X"), ErrNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	svc, id, now := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateAvatar(ctx, id, "https://cdn.example.com/u/1.png"))
	p, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/u/1.png", p.AvatarURL)
	require.NotNil(t, p.ProfileUpdatedAt)
	require.True(t, p.ProfileUpdatedAt.Equal(now))

	require.ErrorIs(t, svc.UpdateAvatar(ctx, id, "javascript:alert(1)"), ErrInvalidValue)
	require.ErrorIs(t, svc.UpdateAvatar(ctx, 99, "https://cdn.example.com/x.png"), ErrNotFound)
}
