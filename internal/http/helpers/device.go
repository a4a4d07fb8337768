package helpers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/secretbox"
)

// DeviceIdentity resuelve el id estable del navegador guardado, cifrado, en la
// cookie clientId.
type DeviceIdentity struct {
	box        *secretbox.Box
	cookieName string
	ttl        time.Duration
	policy     CookiePolicy
	now        func() time.Time
}

func NewDeviceIdentity(box *secretbox.Box, cookieName string, ttl time.Duration, policy CookiePolicy) *DeviceIdentity {
	return &DeviceIdentity{box: box, cookieName: cookieName, ttl: ttl, policy: policy, now: time.Now}
}

// Resolve devuelve el device id del request. Si la cookie falta o no se puede
// descifrar, genera un uuid v4 nuevo, lo cifra y lo deja en la respuesta.
func (d *DeviceIdentity) Resolve(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(d.cookieName); err == nil && ck.Value != "" {
		plain, err := d.box.Open(ck.Value)
		if err == nil {
			if _, perr := uuid.Parse(plain); perr == nil {
				return plain
			}
		}
		logger.From(r.Context()).Debug("clientId ilegible, se regenera", logger.Component("device"))
	}

	id := uuid.NewString()
	sealed, err := d.box.Seal(id)
	if err != nil {
		// sin cookie el login sigue funcionando con un id efímero
		logger.From(r.Context()).Warn("no se pudo cifrar clientId", logger.Err(err))
		return id
	}
	now := d.now()
	var exp time.Time
	if d.ttl > 0 {
		exp = now.Add(d.ttl)
	}
	http.SetCookie(w, BuildCookie(d.policy, d.cookieName, sealed, exp, now))
	return id
}
