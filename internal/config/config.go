package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración inmutable del servicio. Se construye una vez en
// main (Load) y se inyecta por valor/puntero a los componentes que la necesitan.
type Config struct {
	App struct {
		// dev | staging | prod
		Env  string `yaml:"env"`
		Name string `yaml:"name"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
		// IPs o CIDRs cuyo X-Forwarded-For se acepta. Vacío = usar la IP del peer.
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"server"`

	Storage struct {
		// mysql | postgres | memory
		Driver          string        `yaml:"driver"`
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		AutoMigrate     bool          `yaml:"auto_migrate"`
	} `yaml:"storage"`

	Security struct {
		// SecretKey firma los tokens de sesión (HS256).
		SecretKey string `yaml:"secret_key"`
		// DeviceKey cifra la cookie clientId. Si está vacía se deriva de SecretKey.
		DeviceKey string `yaml:"device_key"`
	} `yaml:"security"`

	Auth struct {
		MaxFailedAttempts   int           `yaml:"max_failed_attempts"`
		LockDuration        time.Duration `yaml:"lock_duration"`
		RecoveryTokenTTL    time.Duration `yaml:"recovery_token_ttl"`
		ResetGrantTTL       time.Duration `yaml:"reset_grant_ttl"`
		PasswordHistorySize int           `yaml:"password_history_size"`

		Session struct {
			CookieName    string        `yaml:"cookie_name"`
			TTL           time.Duration `yaml:"ttl"`
			RenewalWindow time.Duration `yaml:"renewal_window"`
			// Strict | Lax | None (None fuerza Secure)
			SameSite string `yaml:"same_site"`
			Domain   string `yaml:"domain"`
		} `yaml:"session"`

		Device struct {
			CookieName string        `yaml:"cookie_name"`
			TTL        time.Duration `yaml:"ttl"`
		} `yaml:"device"`

		// Política de contraseñas opcional: los ceros y false no exigen nada.
		Password struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
			// Archivo con una contraseña prohibida por línea.
			BlacklistFile string `yaml:"blacklist_file"`
		} `yaml:"password"`
	} `yaml:"auth"`

	MFA struct {
		Issuer string `yaml:"issuer"`
		// Skew: pasos de 30s aceptados antes/después del actual.
		Skew   uint `yaml:"skew"`
		QRSize int  `yaml:"qr_size"`
	} `yaml:"mfa"`

	CSRF struct {
		Enabled    bool   `yaml:"enabled"`
		CookieName string `yaml:"cookie_name"`
		HeaderName string `yaml:"header_name"`
		// Paths exactos bajo /api que no exigen el token (webhooks, etc.).
		Exempt []string `yaml:"exempt"`
	} `yaml:"csrf"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// memory | redis
		Backend  string   `yaml:"backend"`
		Login    RateRule `yaml:"login"`
		Recovery RateRule `yaml:"recovery"`
		MFA      RateRule `yaml:"mfa"`
		Global   RateRule `yaml:"global"`
	} `yaml:"rate"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		FromName string `yaml:"from_name"`
		// auto | starttls | ssl | none
		TLSMode string        `yaml:"tls_mode"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"smtp"`

	Captcha struct {
		Enabled   bool          `yaml:"enabled"`
		SecretKey string        `yaml:"secret_key"`
		VerifyURL string        `yaml:"verify_url"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"captcha"`

	// EmailCheck: consulta MX de /api/email/validate-email.
	EmailCheck struct {
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"email_check"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// RateRule: Limit requests por Window.
type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// IsProduction indica si el entorno es producción.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.App.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Load lee el YAML en path (opcional: si no existe se usan defaults), aplica
// defaults y luego overrides de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: defaults + env
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default devuelve una configuración con valores por defecto y sin overrides de entorno.
// Útil en tests.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "alquiladora-romero"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":3001"
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "mysql"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = 30 * time.Minute
	}

	// lockout
	if c.Auth.MaxFailedAttempts == 0 {
		c.Auth.MaxFailedAttempts = 5
	}
	if c.Auth.LockDuration == 0 {
		c.Auth.LockDuration = 10 * time.Minute
	}
	if c.Auth.RecoveryTokenTTL == 0 {
		c.Auth.RecoveryTokenTTL = 15 * time.Minute
	}
	if c.Auth.ResetGrantTTL == 0 {
		c.Auth.ResetGrantTTL = 10 * time.Minute
	}
	if c.Auth.PasswordHistorySize == 0 {
		c.Auth.PasswordHistorySize = 3
	}

	// sesión
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "sesionToken"
	}
	if c.Auth.Session.TTL == 0 {
		c.Auth.Session.TTL = 30 * time.Minute
	}
	if c.Auth.Session.RenewalWindow == 0 {
		c.Auth.Session.RenewalWindow = 2 * time.Minute
	}
	if c.Auth.Session.SameSite == "" {
		c.Auth.Session.SameSite = "Strict"
	}
	if c.Auth.Device.CookieName == "" {
		c.Auth.Device.CookieName = "clientId"
	}
	if c.Auth.Device.TTL == 0 {
		c.Auth.Device.TTL = 365 * 24 * time.Hour
	}

	if c.MFA.Issuer == "" {
		c.MFA.Issuer = "Alquiladora Romero"
	}
	if c.MFA.Skew == 0 {
		c.MFA.Skew = 2
	}
	if c.MFA.QRSize == 0 {
		c.MFA.QRSize = 256
	}

	if c.CSRF.CookieName == "" {
		c.CSRF.CookieName = "_csrf"
	}
	if c.CSRF.HeaderName == "" {
		c.CSRF.HeaderName = "X-CSRF-Token"
	}

	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	setRule(&c.Rate.Login, 10, time.Minute)
	setRule(&c.Rate.Recovery, 5, 10*time.Minute)
	setRule(&c.Rate.MFA, 10, time.Minute)
	setRule(&c.Rate.Global, 300, time.Minute)

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "alquiladora:rl:"
	}

	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.FromName == "" {
		c.SMTP.FromName = "Alquiladora Romero"
	}
	if c.SMTP.TLSMode == "" {
		c.SMTP.TLSMode = "auto"
	}
	if c.SMTP.Timeout == 0 {
		c.SMTP.Timeout = 10 * time.Second
	}

	if c.Captcha.VerifyURL == "" {
		c.Captcha.VerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	}
	if c.Captcha.Timeout == 0 {
		c.Captcha.Timeout = 5 * time.Second
	}

	if c.EmailCheck.Timeout == 0 {
		c.EmailCheck.Timeout = 3 * time.Second
	}
	if c.EmailCheck.CacheTTL == 0 {
		c.EmailCheck.CacheTTL = 10 * time.Minute
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func setRule(r *RateRule, limit int, window time.Duration) {
	if r.Limit == 0 {
		r.Limit = limit
	}
	if r.Window == 0 {
		r.Window = window
	}
}

// Validate revisa los valores críticos.
func (c *Config) Validate() error {
	if len(c.Security.SecretKey) < 16 {
		return errors.New("config: SECRET_KEY requerida (mínimo 16 caracteres)")
	}
	switch c.Storage.Driver {
	case "mysql", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: DB_DSN requerido para driver %q", c.Storage.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("config: driver de storage desconocido %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Auth.Session.SameSite) {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("config: same_site inválido %q", c.Auth.Session.SameSite)
	}
	if c.Auth.Session.RenewalWindow >= c.Auth.Session.TTL {
		return errors.New("config: renewal_window debe ser menor que session ttl")
	}
	if c.Rate.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New("config: REDIS_ADDR requerido con rate backend redis")
	}
	if c.Captcha.Enabled && c.Captcha.SecretKey == "" {
		return errors.New("config: RECAPTCHA_SECRET_KEY requerido con captcha habilitado")
	}
	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides pisa el YAML con variables de entorno (.env incluido).
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	// compat con despliegues que solo definen NODE_ENV
	if c.App.Env == "" {
		if v, ok := getEnvStr("NODE_ENV"); ok {
			c.App.Env = strings.ToLower(v)
		}
	}

	if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvCSV("TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}

	if v, ok := getEnvStr("DB_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("DB_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("DB_MAX_OPEN_CONNS"); ok {
		c.Storage.MaxOpenConns = v
	}
	if v, ok := getEnvBool("DB_AUTO_MIGRATE"); ok {
		c.Storage.AutoMigrate = v
	}

	if v, ok := getEnvStr("SECRET_KEY"); ok {
		c.Security.SecretKey = v
	}
	if v, ok := getEnvStr("DEVICE_KEY"); ok {
		c.Security.DeviceKey = v
	}

	if v, ok := getEnvInt("AUTH_MAX_FAILED_ATTEMPTS"); ok {
		c.Auth.MaxFailedAttempts = v
	}
	if v, ok := getEnvDur("AUTH_LOCK_DURATION"); ok {
		c.Auth.LockDuration = v
	}
	if v, ok := getEnvDur("SESSION_TTL"); ok {
		c.Auth.Session.TTL = v
	}
	if v, ok := getEnvStr("SESSION_SAMESITE"); ok {
		c.Auth.Session.SameSite = v
	}
	if v, ok := getEnvStr("SESSION_DOMAIN"); ok {
		c.Auth.Session.Domain = v
	}
	if v, ok := getEnvInt("PASSWORD_MIN_LENGTH"); ok {
		c.Auth.Password.MinLength = v
	}
	if v, ok := getEnvStr("PASSWORD_BLACKLIST_FILE"); ok {
		c.Auth.Password.BlacklistFile = v
	}

	if v, ok := getEnvStr("MFA_ISSUER"); ok {
		c.MFA.Issuer = v
	}
	if v, ok := getEnvBool("CSRF_ENABLED"); ok {
		c.CSRF.Enabled = v
	}
	if v, ok := getEnvCSV("CSRF_EXEMPT"); ok {
		c.CSRF.Exempt = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLSMode = strings.ToLower(v)
	}

	if v, ok := getEnvStr("RECAPTCHA_SECRET_KEY"); ok {
		c.Captcha.SecretKey = v
		c.Captcha.Enabled = true
	}
	if v, ok := getEnvBool("CAPTCHA_ENABLED"); ok {
		c.Captcha.Enabled = v
	}

	if v, ok := getEnvDur("EMAIL_CHECK_TIMEOUT"); ok {
		c.EmailCheck.Timeout = v
	}

	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}
