// Package emailcheck valida que un correo tenga formato correcto y que su
// dominio reciba correo (registros MX).
package emailcheck

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

var ErrMissingEmail = errors.New("email is required")

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Mensajes que ve el formulario de registro.
const (
	MsgValid       = "Correo electrónico válido."
	MsgBadFormat   = "Formato de correo electrónico inválido."
	MsgNoMX        = "El dominio del correo no tiene registros MX válidos."
	MsgUnreachable = "No se pudo verificar el dominio del correo."
)

// MXResolver lo cumple *net.Resolver.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Result es la respuesta de Check.
type Result struct {
	Valid   bool
	Message string
}

type Config struct {
	Timeout  time.Duration // por consulta DNS
	CacheTTL time.Duration
}

type Checker struct {
	resolver MXResolver
	cache    *gocache.Cache
	timeout  time.Duration
}

func New(r MXResolver, cfg Config) *Checker {
	if r == nil {
		r = net.DefaultResolver
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Checker{
		resolver: r,
		cache:    gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		timeout:  cfg.Timeout,
	}
}

// Check devuelve ErrMissingEmail si email viene vacío. Un fallo de DNS no es
// error: se reporta como correo no válido con MsgUnreachable y no se cachea.
func (c *Checker) Check(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Result{}, ErrMissingEmail
	}
	if !emailRe.MatchString(email) {
		return Result{Message: MsgBadFormat}, nil
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])

	if v, ok := c.cache.Get(domain); ok {
		return v.(Result), nil
	}

	lctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	mx, err := c.resolver.LookupMX(lctx, domain)

	var dnsErr *net.DNSError
	switch {
	case err == nil && len(mx) > 0:
		res := Result{Valid: true, Message: MsgValid}
		c.cache.SetDefault(domain, res)
		return res, nil
	case err == nil, errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		res := Result{Message: MsgNoMX}
		c.cache.SetDefault(domain, res)
		return res, nil
	default:
		logger.From(ctx).Warn("mx lookup failed", logger.Component("emailcheck"), logger.String("domain", domain), logger.Err(err))
		return Result{Message: MsgUnreachable}, nil
	}
}
