package app

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/bootstrap"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/config"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/email"
)

type staticMX map[string][]*net.MX

func (s staticMX) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if mx, ok := s[name]; ok {
		return mx, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func TestAPI_EmpresaAdminOnlyWrites(t *testing.T) {
	c, _ := newTestContainer(t, nil)
	_, err := bootstrap.CreateAdmin(context.Background(), c.Services.Register, bootstrap.AdminConfig{
		Email: "admin@romero.mx", Password: "Admin2026",
	})
	require.NoError(t, err)

	cliente := newClient(t, c.Handler)
	cliente.register("a@x.com", "Primera2026")
	body := map[string]any{"direccion": "Av. Juárez 10", "correo": "contacto@romero.mx", "redes_sociales": map[string]any{"facebook": "romero"}}

	// sin sesión
	rec, out := cliente.do(http.MethodPost, "/api/empresa/actualizar", body)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "SESSION_MISSING", out["code"])

	rec, _ = cliente.do(http.MethodPost, "/api/usuarios/login", map[string]any{"email": "a@x.com", "password": "Primera2026"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, out = cliente.do(http.MethodPost, "/api/empresa/actualizar", body)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", out["code"])
	rec, _ = cliente.do(http.MethodPatch, "/api/empresa/slogan", map[string]any{"valor": "X"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	admin := newClient(t, c.Handler)
	rec, _ = admin.do(http.MethodPost, "/api/usuarios/login", map[string]any{"email": "admin@romero.mx", "password": "Admin2026"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, out = admin.do(http.MethodPatch, "/api/empresa/slogan", map[string]any{"valor": "Todo para tu evento"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "COMPANY_NOT_FOUND", out["code"])

	rec, _ = admin.do(http.MethodPost, "/api/empresa/actualizar", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = admin.do(http.MethodPatch, "/api/empresa/slogan", map[string]any{"valor": "Todo para tu evento"})
	require.Equal(t, http.StatusOK, rec.Code)

	// lectura pública
	anon := newClient(t, c.Handler)
	rec, out = anon.do(http.MethodGet, "/api/empresa", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Todo para tu evento", out["slogan"])
	require.Equal(t, "contacto@romero.mx", out["correo"])
	require.Equal(t, map[string]any{"facebook": "romero"}, out["redes_sociales"])
}

func TestAPI_ValidateEmail(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Security.SecretKey = "test-secret-key-0123456789"
	c, err := New(context.Background(), cfg, Options{
		Sender: email.NewLogSender(),
		MX:     staticMX{"romero.mx": {{Host: "mx.romero.mx.", Pref: 10}}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	api := newClient(t, c.Handler)

	rec, out := api.do(http.MethodPost, "/api/email/validate-email", map[string]any{"email": "ana@romero.mx"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["isValid"])

	rec, out = api.do(http.MethodPost, "/api/email/validate-email", map[string]any{"email": "ana@dominio-inexistente.mx"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, out["isValid"])

	rec, out = api.do(http.MethodPost, "/api/email/validate-email", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MISSING_FIELDS", out["code"])
}
