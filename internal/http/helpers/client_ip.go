package helpers

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP: primera entrada de X-Forwarded-For, si no la IP del peer.
// Solo para logs y auditoría; no sirve como clave de rate limiting porque el
// cliente controla el header.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		if first := strings.TrimSpace(strings.Split(xf, ",")[0]); first != "" {
			return first
		}
	}
	return PeerIP(r)
}

// PeerIP devuelve la IP de la conexión TCP.
func PeerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// TrustedProxies es la lista de proxies cuyo X-Forwarded-For se acepta.
// Una lista vacía (o nil) ignora el header y usa siempre el peer.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies acepta IPs sueltas o rangos CIDR.
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	tp := &TrustedProxies{}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			tp.prefixes = append(tp.prefixes, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		a = a.Unmap()
		tp.prefixes = append(tp.prefixes, netip.PrefixFrom(a, a.BitLen()))
	}
	return tp, nil
}

func (tp *TrustedProxies) trusts(ip string) bool {
	if tp == nil {
		return false
	}
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range tp.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// RealIP resuelve la IP del cliente para decisiones de seguridad.
// X-Forwarded-For solo cuenta si el peer es un proxy de confianza; se recorre
// de derecha a izquierda y gana la primera entrada que no sea otro proxy.
func (tp *TrustedProxies) RealIP(r *http.Request) string {
	peer := PeerIP(r)
	if !tp.trusts(peer) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			return peer
		}
		if !tp.trusts(hop) {
			return hop
		}
	}
	return peer
}
