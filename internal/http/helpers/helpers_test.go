package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httperrors "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/errors"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/secretbox"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.4:5555"
	require.Equal(t, "192.0.2.4", ClientIP(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	require.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestTrustedProxies_RealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.9:4000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")

	// sin lista: el header se ignora
	var none *TrustedProxies
	require.Equal(t, "198.51.100.9", none.RealIP(r))
	empty, err := ParseTrustedProxies(nil)
	require.NoError(t, err)
	require.Equal(t, "198.51.100.9", empty.RealIP(r))

	tp, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)
	// peer fuera de la lista: se ignora el header
	require.Equal(t, "198.51.100.9", tp.RealIP(r))

	// peer de confianza: gana la entrada más a la derecha que no es proxy
	r.RemoteAddr = "10.1.2.3:4000"
	r.Header.Set("X-Forwarded-For", "1.1.1.1, 203.0.113.7, 192.0.2.1")
	require.Equal(t, "203.0.113.7", tp.RealIP(r))

	// header ausente o basura: el peer
	r.Header.Set("X-Forwarded-For", "no-es-ip")
	require.Equal(t, "10.1.2.3", tp.RealIP(r))
	r.Header.Del("X-Forwarded-For")
	require.Equal(t, "10.1.2.3", tp.RealIP(r))

	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	require.Error(t, err)
}

func TestCookiePolicy_NoneForcesSecure(t *testing.T) {
	require.True(t, NewCookiePolicy("", "None", false).Secure)
	require.False(t, NewCookiePolicy("", "Strict", false).Secure)
	require.True(t, NewCookiePolicy("", "Strict", true).Secure)
}

func TestBuildCookie(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ck := BuildCookie(CookiePolicy{SameSite: "strict"}, "sesionToken", "v", now.Add(30*time.Minute), now)
	require.True(t, ck.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	require.Equal(t, 1800, ck.MaxAge)

	del := BuildDeletionCookie(CookiePolicy{}, "sesionToken")
	require.Equal(t, -1, del.MaxAge)
}

func TestReadJSON(t *testing.T) {
	var v struct{ Email string }

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com","extra":1}`))
	r.Header.Set("Content-Type", "application/json")
	require.NoError(t, ReadJSON(httptest.NewRecorder(), r, &v))
	require.Equal(t, "a@x.com", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	err := ReadJSON(httptest.NewRecorder(), r, &v)
	require.Equal(t, httperrors.ErrInvalidJSON, err)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", MaxBodyBytes)+`"}`))
	err = ReadJSON(httptest.NewRecorder(), r, &v)
	require.Equal(t, httperrors.ErrPayloadTooLarge, err)
}

func TestDeviceIdentity(t *testing.T) {
	box, err := secretbox.New(secretbox.ParseKey("clave-de-pruebas-para-dispositivo"))
	require.NoError(t, err)
	d := NewDeviceIdentity(box, "clientId", 24*time.Hour, CookiePolicy{})

	// sin cookie: se genera y se setea
	rec := httptest.NewRecorder()
	id := d.Resolve(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Len(t, id, 36)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.NotContains(t, cookies[0].Value, id, "el id viaja cifrado")

	// con cookie válida: mismo id, sin Set-Cookie
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	require.Equal(t, id, d.Resolve(rec, r))
	require.Empty(t, rec.Result().Cookies())

	// cookie manipulada: id nuevo
	r = httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: "clientId", Value: "00:zz"})
	rec = httptest.NewRecorder()
	other := d.Resolve(rec, r)
	require.NotEqual(t, id, other)
	require.Len(t, rec.Result().Cookies(), 1)
}
