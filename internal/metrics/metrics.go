// Package metrics define las métricas Prometheus del servicio. Vive aparte de
// internal/http para que los servicios de dominio puedan registrar eventos sin
// depender de la capa HTTP.
package metrics

import (
	"database/sql"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors. Un valor nil es válido: todos los métodos
// Record* son no-op.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInflight prometheus.Gauge

	LoginAttempts   *prometheus.CounterVec
	Lockouts        prometheus.Counter
	SessionRenewals prometheus.Counter
	MFAEvents       *prometheus.CounterVec
	RecoveryEvents  *prometheus.CounterVec
	RateLimited     *prometheus.CounterVec
}

// New crea un registry propio con las métricas del servicio y los collectors
// estándar de proceso y runtime.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Intentos de login por resultado",
		}, []string{"outcome"}),
		Lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_lockouts_total",
			Help: "Cuentas bloqueadas por exceso de intentos",
		}),
		SessionRenewals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_session_renewals_total",
			Help: "Sesiones renovadas dentro de la ventana de renovación",
		}),
		MFAEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_mfa_events_total",
			Help: "Eventos MFA (enable, disable, verify_ok, verify_fail)",
		}, []string{"event"}),
		RecoveryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_recovery_events_total",
			Help: "Eventos de recuperación de contraseña",
		}, []string{"event"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"rule"}),
	}
	m.registry.MustRegister(
		m.HTTPRequests, m.HTTPDuration, m.HTTPInflight,
		m.LoginAttempts, m.Lockouts, m.SessionRenewals,
		m.MFAEvents, m.RecoveryEvents, m.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry expone el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RegisterDB agrega las estadísticas del pool database/sql.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	return registerCollector(m.registry, collectors.NewDBStatsCollector(db, name))
}

// Handler devuelve el handler de /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}

func (m *Metrics) RecordRenewal() {
	if m == nil {
		return
	}
	m.SessionRenewals.Inc()
}

func (m *Metrics) RecordMFA(event string) {
	if m == nil {
		return
	}
	m.MFAEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordRecovery(event string) {
	if m == nil {
		return
	}
	m.RecoveryEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordRateLimited(rule string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(rule).Inc()
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (ids, uuids, tokens) por
// ":param" para acotar la cardinalidad del label path.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 || uuidSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
