package empresa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store/memory"
)

type failingCompany struct{ repository.CompanyRepository }

func (failingCompany) Get(context.Context) (*repository.Company, error) {
	return nil, errors.New("db down")
}

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return NewService(Deps{Company: st.Company(), Now: func() time.Time { return now }}), st
}

func TestService_UpsertThenGet(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	created, err := s.Upsert(ctx, Data{
		Direccion:     " Av. Juárez 10, Huejutla ",
		Correo:        "contacto@romero.mx",
		Telefono:      "7711234567",
		RedesSociales: []byte(`{"facebook":"alquiladoraromero"}`),
	})
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.Upsert(ctx, Data{Direccion: "Av. Juárez 12", Slogan: "Todo para tu evento", RedesSociales: []byte("null")})
	require.NoError(t, err)
	require.False(t, created)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Av. Juárez 12", c.Direccion)
	require.Equal(t, "Todo para tu evento", c.Slogan)
	require.Nil(t, c.RedesSociales)
}

func TestService_UpsertRejectsBadValues(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, d := range []Data{
		{Correo: "no-es-correo"},
		{LogoURL: "ftp://romero.mx/logo.png"},
		{Telefono: "77-ABC"},
		{RedesSociales: []byte(`"solo texto"`)},
		{RedesSociales: []byte(`{roto`)},
	} {
		_, err := s.Upsert(ctx, d)
		require.ErrorIs(t, err, ErrInvalidValue, "%+v", d)
	}
}

func TestService_UpdateField(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.ErrorIs(t, s.UpdateField(ctx, "slogan", "Hola"), ErrNotFound)

	_, err := s.Upsert(ctx, Data{Direccion: "Calle 1"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateField(ctx, "logo_url", "https://cdn.romero.mx/logo.png"))
	require.NoError(t, s.UpdateField(ctx, "redes_sociales", `[{"red":"instagram","url":"https://instagram.com/romero"}]`))
	require.ErrorIs(t, s.UpdateField(ctx, "id", "2"), ErrInvalidField)
	require.ErrorIs(t, s.UpdateField(ctx, "creado_en", "x"), ErrInvalidField)
	require.ErrorIs(t, s.UpdateField(ctx, "correo", "mal"), ErrInvalidValue)

	c, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.romero.mx/logo.png", c.LogoURL)
	require.Contains(t, string(c.RedesSociales), "instagram")
}

func TestService_GetStoreDown(t *testing.T) {
	s := NewService(Deps{Company: failingCompany{}})
	_, err := s.Get(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}
