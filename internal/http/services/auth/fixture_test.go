package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/captcha"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/jwt"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/password"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/totp"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store/memory"
)

// clock reloj controlable. Arranca en un múltiplo de 30s para que los pasos
// TOTP sean predecibles.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sentCode struct {
	To, Code string
	TTL      time.Duration
}

type fakeNotifier struct {
	mu      sync.Mutex
	codes   []sentCode
	changed []string
	err     error
}

func (f *fakeNotifier) SendRecoveryCode(_ context.Context, to, _ string, code string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.codes = append(f.codes, sentCode{To: to, Code: code, TTL: ttl})
	return nil
}

func (f *fakeNotifier) SendPasswordChanged(_ context.Context, to, _ string, _ time.Time, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.changed = append(f.changed, to)
	return nil
}

type fakeCaptcha struct{ err error }

func (f fakeCaptcha) Verify(context.Context, string, string) error { return f.err }

var _ captcha.Verifier = fakeCaptcha{}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	clock    *clock
	store    *memory.Store
	hasher   *password.Hasher
	sessions *jwt.SessionManager
	notifier *fakeNotifier
	svc      Services
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, func(*Deps) {})
}

func newFixtureWith(t *testing.T, mutate func(*Deps)) *fixture {
	t.Helper()
	clk := newClock()
	st := memory.New()
	sessions, err := jwt.NewSessionManager(jwt.SessionConfig{
		Secret:        []byte("test-secret-key"),
		Issuer:        "alquiladora-test",
		TTL:           30 * time.Minute,
		RenewalWindow: 2 * time.Minute,
		Now:           clk.Now,
	})
	require.NoError(t, err)

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		clock:    clk,
		store:    st,
		hasher:   password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1}),
		sessions: sessions,
		notifier: &fakeNotifier{},
	}
	d := Deps{
		Store:    st,
		Hasher:   f.hasher,
		Policy:   password.Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true},
		Sessions: sessions,
		TOTP:     totp.New(totp.Config{Issuer: "Alquiladora Romero", Skew: 2, Now: clk.Now}),
		Notifier: f.notifier,
		Now:      clk.Now,
	}
	mutate(&d)
	f.svc = NewServices(d)
	return f
}

// register crea una cuenta por el flujo normal y devuelve su id.
func (f *fixture) register(email, plain string) int64 {
	f.t.Helper()
	id, err := f.svc.Register.Register(f.ctx, RegisterInput{
		Nombre:    "Ana",
		ApellidoP: "Romero",
		Email:     email,
		Password:  plain,
	})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) login(email, plain, code string) *LoginResult {
	f.t.Helper()
	res, err := f.svc.Login.Login(f.ctx, LoginInput{
		Email:    email,
		Password: plain,
		MFACode:  code,
		IP:       "10.0.0.7",
		DeviceID: "3f6c9a2e-0000-4000-8000-000000000001",
	})
	require.NoError(f.t, err)
	return res
}

// brokenStore falla en todas las lecturas de cuentas.
type brokenStore struct {
	*memory.Store
}

type brokenAccounts struct {
	repository.AccountRepository
}

var errDBDown = errors.New("dial tcp: connection refused")

func (b brokenStore) Accounts() repository.AccountRepository {
	return brokenAccounts{b.Store.Accounts()}
}

func (brokenAccounts) GetByEmail(context.Context, string) (*repository.Account, error) {
	return nil, errDBDown
}

func (brokenAccounts) GetByID(context.Context, int64) (*repository.Account, error) {
	return nil, errDBDown
}
