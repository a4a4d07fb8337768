// Package app construye el contenedor de dependencias del servicio a partir de
// la configuración: store, seguridad, correo, rate limit, services y router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/captcha"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/config"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/email"
	authctrl "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/controllers/auth"
	empresactrl "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/controllers/empresa"
	healthctrl "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/controllers/health"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/helpers"
	mw "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/middlewares"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/router"
	authsvc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/emailcheck"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/empresa"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/profile"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/metrics"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/rate"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/password"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/secretbox"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/totp"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store/memory"
)

// Container tiene todo lo cableado. Close libera store y redis.
type Container struct {
	Config   *config.Config
	Store    repository.Store
	Metrics  *metrics.Metrics
	Sessions *jwt.SessionManager
	Services authsvc.Services
	Handler  http.Handler

	closers []func() error
}

// Options permite inyectar piezas ya construidas (tests, CLI).
type Options struct {
	// Store reemplaza la apertura del store configurado.
	Store repository.Store
	// Sender reemplaza el envío de correo configurado.
	Sender email.Sender
	// Version aparece en /healthz.
	Version string
	// Now fija el reloj de los services (bloqueos, tokens). nil = time.Now.
	Now func() time.Time
	// MX reemplaza el resolver DNS de /api/email/validate-email.
	MX emailcheck.MXResolver
}

// OpenStore abre el store según cfg.Storage y aplica migraciones si
// auto_migrate está activo. Lo comparten el servicio y la CLI.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Storage.Driver == "memory" {
		return memory.New(), nil
	}
	s, err := store.Open(ctx, store.Options{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Storage.AutoMigrate {
		if err := store.Migrate(ctx, s.DB(), s.Dialect()); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// New arma el contenedor completo.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	log := logger.L().With(logger.Component("app"))
	c := &Container{Config: cfg}

	// 1. Store
	st := opts.Store
	if st == nil {
		var err error
		if st, err = OpenStore(ctx, cfg); err != nil {
			return nil, err
		}
		c.closers = append(c.closers, st.Close)
	}
	c.Store = st

	// 2. Métricas (incluye stats del pool SQL)
	c.Metrics = metrics.New()
	if sqlStore, ok := st.(*store.SQLStore); ok && sqlStore.DB() != nil {
		if err := c.Metrics.RegisterDB(sqlStore.DB(), cfg.App.Name); err != nil {
			log.Warn("no se pudieron registrar métricas de DB", logger.Err(err))
		}
	}

	// 3. Seguridad
	sessions, err := jwt.NewSessionManager(jwt.SessionConfig{
		Secret:        []byte(cfg.Security.SecretKey),
		Issuer:        cfg.App.Name,
		TTL:           cfg.Auth.Session.TTL,
		RenewalWindow: cfg.Auth.Session.RenewalWindow,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Sessions = sessions

	box, err := deviceBox(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 4. Correo y captcha
	sender := opts.Sender
	if sender == nil {
		if cfg.SMTP.Host != "" {
			sender = email.NewSMTPSender(email.SMTPConfig{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
				FromName: cfg.SMTP.FromName,
				TLSMode:  cfg.SMTP.TLSMode,
				Timeout:  cfg.SMTP.Timeout,
			})
		} else {
			log.Warn("SMTP no configurado: los correos solo se registran en el log")
			sender = email.NewLogSender()
		}
	}
	mailer, err := email.NewMailer(sender, cfg.SMTP.FromName)
	if err != nil {
		c.Close()
		return nil, err
	}

	var verifier captcha.Verifier = captcha.Noop{}
	if cfg.Captcha.Enabled {
		verifier = captcha.NewRecaptcha(cfg.Captcha.SecretKey, cfg.Captcha.VerifyURL, cfg.Captcha.Timeout)
	}

	// 5. Services
	pwPolicy, err := passwordPolicy(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Services = authsvc.NewServices(authsvc.Deps{
		Store:    st,
		Hasher:   password.NewHasher(password.Default),
		Policy:   pwPolicy,
		Sessions: sessions,
		TOTP:     totp.New(totp.Config{Issuer: cfg.MFA.Issuer, Skew: cfg.MFA.Skew, QRSize: cfg.MFA.QRSize}),
		Notifier: mailer,
		Captcha:  verifier,
		Metrics:  c.Metrics,
		Now:      opts.Now,
		Settings: authsvc.Settings{
			MaxFailedAttempts:   cfg.Auth.MaxFailedAttempts,
			LockDuration:        cfg.Auth.LockDuration,
			RecoveryTokenTTL:    cfg.Auth.RecoveryTokenTTL,
			ResetGrantTTL:       cfg.Auth.ResetGrantTTL,
			PasswordHistorySize: cfg.Auth.PasswordHistorySize,
		},
	})

	// 6. Rate limit
	limiters, err := c.buildLimiters(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 7. HTTP
	policy := helpers.NewCookiePolicy(cfg.Auth.Session.Domain, cfg.Auth.Session.SameSite, cfg.IsProduction())
	sessionCookie := helpers.SessionCookie{Name: cfg.Auth.Session.CookieName, Policy: policy}

	controllers := authctrl.NewControllers(authctrl.Deps{
		Services: c.Services,
		Profile:  profile.NewService(profile.Deps{Accounts: st.Accounts()}),
		Sessions: sessions,
		Cookie:   sessionCookie,
		Device:   helpers.NewDeviceIdentity(box, cfg.Auth.Device.CookieName, cfg.Auth.Device.TTL, policy),
		CSRF:     authctrl.CSRFSettings{CookieName: cfg.CSRF.CookieName, Policy: policy},
	})

	trusted, err := helpers.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("server.trusted_proxies: %w", err)
	}

	var csrf *mw.CSRFConfig
	if cfg.CSRF.Enabled {
		csrf = &mw.CSRFConfig{HeaderName: cfg.CSRF.HeaderName, CookieName: cfg.CSRF.CookieName, Exempt: cfg.CSRF.Exempt}
	}

	checker := emailcheck.New(opts.MX, emailcheck.Config{Timeout: cfg.EmailCheck.Timeout, CacheTTL: cfg.EmailCheck.CacheTTL})

	c.Handler = router.New(router.Deps{
		Auth:        controllers,
		Empresa:     empresactrl.NewController(empresa.NewService(empresa.Deps{Company: st.Company(), Now: opts.Now})),
		Email:       empresactrl.NewEmailController(checker),
		Health:      healthctrl.NewHealthController(st, opts.Version),
		Metrics:     c.Metrics,
		Session:     mw.SessionConfig{Manager: sessions, Cookie: sessionCookie, Metrics: c.Metrics},
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		CSRF:        csrf,
		Limiters:    limiters,

		TrustedProxies: trusted,
	})

	log.Info("app wired",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("rate_backend", cfg.Rate.Backend),
		logger.Bool("rate_enabled", cfg.Rate.Enabled),
		logger.Bool("csrf", cfg.CSRF.Enabled),
		logger.Bool("captcha", cfg.Captcha.Enabled),
	)
	return c, nil
}

// deviceBox arma el cifrador de la cookie clientId. Sin DEVICE_KEY la clave se
// deriva del SECRET_KEY con su propio label, nunca se reutiliza la del JWT.
func deviceBox(cfg *config.Config) (*secretbox.Box, error) {
	if cfg.Security.DeviceKey != "" {
		return secretbox.New(secretbox.ParseKey(cfg.Security.DeviceKey))
	}
	key, err := secretbox.DeriveKey(cfg.Security.SecretKey, "clientId")
	if err != nil {
		return nil, err
	}
	return secretbox.New(key)
}

func passwordPolicy(cfg *config.Config) (password.Policy, error) {
	p := password.Policy{
		MinLength:     cfg.Auth.Password.MinLength,
		RequireUpper:  cfg.Auth.Password.RequireUpper,
		RequireLower:  cfg.Auth.Password.RequireLower,
		RequireDigit:  cfg.Auth.Password.RequireDigit,
		RequireSymbol: cfg.Auth.Password.RequireSymbol,
	}
	if path := cfg.Auth.Password.BlacklistFile; path != "" {
		f, err := os.Open(path)
		if err != nil {
			return p, fmt.Errorf("password blacklist: %w", err)
		}
		defer f.Close()
		if p.Blacklist, err = password.ReadBlacklist(f); err != nil {
			return p, fmt.Errorf("password blacklist %s: %w", path, err)
		}
	}
	return p, nil
}

func (c *Container) buildLimiters(ctx context.Context) (router.Limiters, error) {
	cfg := c.Config
	if !cfg.Rate.Enabled {
		return router.Limiters{}, nil
	}

	if cfg.Rate.Backend == "redis" {
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return router.Limiters{}, fmt.Errorf("redis ping: %w", err)
		}
		c.closers = append(c.closers, client.Close)
		p := cfg.Redis.Prefix
		return router.Limiters{
			Global:   rate.NewRedisLimiter(client, p+"global:", cfg.Rate.Global.Limit, cfg.Rate.Global.Window),
			Login:    rate.NewRedisLimiter(client, p+"login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window),
			Recovery: rate.NewRedisLimiter(client, p+"recovery:", cfg.Rate.Recovery.Limit, cfg.Rate.Recovery.Window),
			MFA:      rate.NewRedisLimiter(client, p+"mfa:", cfg.Rate.MFA.Limit, cfg.Rate.MFA.Window),
		}, nil
	}

	shared := gocache.New(cfg.Rate.Global.Window, 2*cfg.Rate.Global.Window)
	return router.Limiters{
		Global:   rate.NewMemoryLimiter(shared, "global:", cfg.Rate.Global.Limit, cfg.Rate.Global.Window),
		Login:    rate.NewMemoryLimiter(shared, "login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window),
		Recovery: rate.NewMemoryLimiter(shared, "recovery:", cfg.Rate.Recovery.Limit, cfg.Rate.Recovery.Window),
		MFA:      rate.NewMemoryLimiter(shared, "mfa:", cfg.Rate.MFA.Limit, cfg.Rate.MFA.Window),
	}, nil
}

// Close libera recursos en orden inverso.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
