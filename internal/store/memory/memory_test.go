package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
)

func TestAccounts_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Accounts().Create(ctx, repository.CreateAccountInput{Nombre: "Ana", Email: "A@X.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	_, err = s.Accounts().Create(ctx, repository.CreateAccountInput{Nombre: "Otra", Email: "a@x.com ", PasswordHash: "h"})
	require.ErrorIs(t, err, repository.ErrConflict)

	a, err := s.Accounts().GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, repository.RoleCliente, a.Role)

	_, err = s.Accounts().GetByEmail(ctx, "nadie@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccounts_UpdateProfileField(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.Accounts().Create(ctx, repository.CreateAccountInput{Nombre: "Ana", Email: "a@x.com"})

	require.NoError(t, s.Accounts().UpdateProfileField(ctx, id, repository.FieldTelefono, "7711234567"))
	require.ErrorIs(t, s.Accounts().UpdateProfileField(ctx, id, "Passw", "x"), repository.ErrInvalidInput)
	require.ErrorIs(t, s.Accounts().UpdateProfileField(ctx, 99, repository.FieldNombre, "x"), repository.ErrNotFound)

	a, _ := s.Accounts().GetByID(ctx, id)
	require.Equal(t, "7711234567", a.Telefono)
}

func TestLockouts_RecordFailureLocksAtMax(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(10 * time.Minute)

	var rec *repository.LockoutRecord
	var err error
	for i := 1; i <= 5; i++ {
		rec, err = s.Lockouts().RecordFailure(ctx, repository.FailureInput{
			AccountID: 1, IP: "10.0.0.1", DeviceID: "dev", At: now, MaxAttempts: 5, LockUntil: until,
		})
		require.NoError(t, err)
		require.Equal(t, i, rec.Attempts)
		if i < 5 {
			require.Nil(t, rec.LockedUntil)
		}
	}
	require.NotNil(t, rec.LockedUntil)
	require.True(t, rec.LockedUntil.Equal(until))

	require.NoError(t, s.Lockouts().Delete(ctx, 1))
	_, err = s.Lockouts().Get(ctx, 1)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, s.Lockouts().Delete(ctx, 1), "delete idempotente")
}

func TestHistory_PruneKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, h := range []string{"h1", "h2", "h3", "h4"} {
		require.NoError(t, s.PasswordHistory().Append(ctx, 1, h, base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, s.PasswordHistory().Prune(ctx, 1, 3))

	got, err := s.PasswordHistory().ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "h4", got[0].Hash)
	require.Equal(t, "h2", got[2].Hash)
}

func TestTokens_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.RecoveryTokens().Upsert(ctx, repository.RecoveryToken{AccountID: 1, Token: "old"}))
	require.NoError(t, s.RecoveryTokens().Upsert(ctx, repository.RecoveryToken{AccountID: 1, Token: "new"}))

	_, err := s.RecoveryTokens().Get(ctx, 1, "old")
	require.ErrorIs(t, err, repository.ErrNotFound, "upsert reemplaza el token previo")

	require.NoError(t, s.RecoveryTokens().Consume(ctx, 1, "new"))
	require.ErrorIs(t, s.RecoveryTokens().Consume(ctx, 1, "new"), repository.ErrNotFound)
}

func TestCompany_UpsertAndUpdateField(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	_, err := s.Company().Get(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, s.Company().UpdateField(ctx, repository.CompanySlogan, "x", t0), repository.ErrNotFound)

	created, err := s.Company().Upsert(ctx, repository.Company{Direccion: "Calle 1", Correo: "contacto@romero.mx"}, t0)
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.Company().Upsert(ctx, repository.Company{Direccion: "Calle 2"}, t0.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, created)

	require.NoError(t, s.Company().UpdateField(ctx, repository.CompanyRedesSociales, `{"facebook":"romero"}`, t0.Add(2*time.Hour)))
	require.ErrorIs(t, s.Company().UpdateField(ctx, "id", "2", t0), repository.ErrInvalidInput)

	c, err := s.Company().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Calle 2", c.Direccion)
	require.Empty(t, c.Correo, "upsert reemplaza la fila completa")
	require.JSONEq(t, `{"facebook":"romero"}`, string(c.RedesSociales))
	require.True(t, c.CreatedAt.Equal(t0))
	require.True(t, c.UpdatedAt.Equal(t0.Add(2*time.Hour)))
}
