package empresa

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/emailcheck"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/empresa"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store/memory"
)

type fakeMX map[string][]*net.MX

func (f fakeMX) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if mx, ok := f[name]; ok {
		return mx, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

type brokenService struct{ empresa.Service }

func (brokenService) Get(context.Context) (*empresa.Company, error) {
	return nil, errors.Join(empresa.ErrUnavailable, errors.New("db down"))
}

func newRouter(svc empresa.Service) http.Handler {
	c := NewController(svc)
	e := NewEmailController(emailcheck.New(fakeMX{"romero.mx": {{Host: "mx.romero.mx."}}}, emailcheck.Config{}))
	r := chi.NewRouter()
	r.Get("/api/empresa", c.Get)
	r.Post("/api/empresa/actualizar", c.Upsert)
	r.Patch("/api/empresa/{campo}", c.UpdateField)
	r.Post("/api/email/validate-email", e.Validate)
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestController_CompanyLifecycle(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	h := newRouter(empresa.NewService(empresa.Deps{Company: memory.New().Company(), Now: func() time.Time { return now }}))

	rec, out := call(t, h, http.MethodGet, "/api/empresa", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "COMPANY_NOT_FOUND", out["code"])

	rec, out = call(t, h, http.MethodPatch, "/api/empresa/slogan", `{"valor":"Hola"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "COMPANY_NOT_FOUND", out["code"])

	body := `{"direccion":"Av. Juárez 10","correo":"contacto@romero.mx","telefono":"7711234567","slogan":"Todo para tu evento","redes_sociales":{"facebook":"romero"},"logo_url":"https://cdn.romero.mx/logo.png"}`
	rec, out = call(t, h, http.MethodPost, "/api/empresa/actualizar", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Datos de la empresa insertados correctamente.", out["message"])

	rec, out = call(t, h, http.MethodPost, "/api/empresa/actualizar", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Datos de la empresa actualizados correctamente.", out["message"])

	rec, _ = call(t, h, http.MethodPatch, "/api/empresa/redes_sociales", `{"valor":[{"red":"instagram"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = call(t, h, http.MethodPatch, "/api/empresa/telefono", `{"valor":"771 123 4567"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = call(t, h, http.MethodPatch, "/api/empresa/id", `{"valor":"9"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", out["code"])
	rec, out = call(t, h, http.MethodPatch, "/api/empresa/correo", `{"valor":"no-es-correo"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", out["code"])
	rec, out = call(t, h, http.MethodPatch, "/api/empresa/slogan", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MISSING_FIELDS", out["code"])

	rec, out = call(t, h, http.MethodGet, "/api/empresa", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, out["id"])
	require.Equal(t, "771 123 4567", out["telefono"])
	require.Equal(t, "Todo para tu evento", out["slogan"])
	redes, ok := out["redes_sociales"].([]any)
	require.True(t, ok, rec.Body.String())
	require.Len(t, redes, 1)
}

func TestController_CompanyStoreDown(t *testing.T) {
	h := newRouter(brokenService{})
	rec, out := call(t, h, http.MethodGet, "/api/empresa", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "DEPENDENCY_UNAVAILABLE", out["code"])
	require.NotContains(t, rec.Body.String(), "db down")
}

func TestEmailController_Validate(t *testing.T) {
	h := newRouter(empresa.NewService(empresa.Deps{Company: memory.New().Company()}))

	rec, out := call(t, h, http.MethodPost, "/api/email/validate-email", `{"email":"ana@romero.mx"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["isValid"])
	require.Equal(t, emailcheck.MsgValid, out["message"])

	rec, out = call(t, h, http.MethodPost, "/api/email/validate-email", `{"email":"ana@gmial.con"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, out["isValid"])
	require.Equal(t, emailcheck.MsgNoMX, out["message"])

	rec, out = call(t, h, http.MethodPost, "/api/email/validate-email", `{"email":"sin arroba"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, emailcheck.MsgBadFormat, out["message"])

	rec, out = call(t, h, http.MethodPost, "/api/email/validate-email", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MISSING_FIELDS", out["code"])
}
