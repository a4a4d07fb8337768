// Package memory implementa repository.Store en memoria. Se usa en tests y con
// DB_DRIVER=memory para levantar el servicio sin base de datos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/domain/repository"
	tokensec "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/token"
)

type anonKey struct{ ip, device string }

// AnonymousFailure es el contador forense por (ip, dispositivo).
type AnonymousFailure struct {
	Attempts int
	LastAt   time.Time
}

// Store guarda todo detrás de un único mutex; las operaciones son atómicas
// igual que las sentencias únicas del store SQL.
type Store struct {
	mu sync.Mutex

	nextAccountID int64
	nextHistoryID int64

	accounts  map[int64]*repository.Account
	byEmail   map[string]int64
	lockouts  map[int64]*repository.LockoutRecord
	anonymous map[anonKey]*AnonymousFailure
	history   map[int64][]repository.PasswordHistoryEntry
	tokens    map[int64]repository.RecoveryToken
	company   *repository.Company
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:  map[int64]*repository.Account{},
		byEmail:   map[string]int64{},
		lockouts:  map[int64]*repository.LockoutRecord{},
		anonymous: map[anonKey]*AnonymousFailure{},
		history:   map[int64][]repository.PasswordHistoryEntry{},
		tokens:    map[int64]repository.RecoveryToken{},
	}
}

func (s *Store) Accounts() repository.AccountRepository                 { return accounts{s} }
func (s *Store) Lockouts() repository.LockoutRepository                 { return lockouts{s} }
func (s *Store) PasswordHistory() repository.PasswordHistoryRepository { return history{s} }
func (s *Store) RecoveryTokens() repository.RecoveryTokenRepository     { return tokens{s} }
func (s *Store) Company() repository.CompanyRepository                  { return company{s} }
func (s *Store) Ping(context.Context) error                             { return nil }
func (s *Store) Close() error                                           { return nil }

// Anonymous expone el contador forense (tests).
func (s *Store) Anonymous(ip, device string) (AnonymousFailure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.anonymous[anonKey{ip, device}]
	if !ok {
		return AnonymousFailure{}, false
	}
	return *a, true
}

func normEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// ─────────────────────────────────────────────────────────────────────────────
// accounts
// ─────────────────────────────────────────────────────────────────────────────

type accounts struct{ s *Store }

func (r accounts) Create(_ context.Context, in repository.CreateAccountInput) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := normEmail(in.Email)
	if _, dup := r.s.byEmail[email]; dup {
		return 0, repository.ErrConflict
	}
	r.s.nextAccountID++
	id := r.s.nextAccountID
	role := in.Role
	if role == "" {
		role = repository.RoleCliente
	}
	r.s.accounts[id] = &repository.Account{
		ID:           id,
		Nombre:       in.Nombre,
		ApellidoP:    in.ApellidoP,
		ApellidoM:    in.ApellidoM,
		Email:        email,
		Telefono:     in.Telefono,
		PasswordHash: in.PasswordHash,
		Role:         role,
	}
	r.s.byEmail[email] = id
	return id, nil
}

func (r accounts) GetByID(_ context.Context, id int64) (*repository.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r accounts) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	r.s.mu.Lock()
	id, ok := r.s.byEmail[normEmail(email)]
	r.s.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r accounts) List(context.Context) ([]repository.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]repository.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r accounts) mutate(id int64, fn func(a *repository.Account)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(a)
	return nil
}

func (r accounts) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.mutate(id, func(a *repository.Account) { a.PasswordHash = hash })
}

func (r accounts) UpdateProfileField(_ context.Context, id int64, field repository.ProfileField, value string) error {
	if !field.Valid() {
		return repository.ErrInvalidInput
	}
	return r.mutate(id, func(a *repository.Account) {
		switch field {
		case repository.FieldNombre:
			a.Nombre = value
		case repository.FieldApellidoP:
			a.ApellidoP = value
		case repository.FieldApellidoM:
			a.ApellidoM = value
		case repository.FieldTelefono:
			a.Telefono = value
		}
	})
}

func (r accounts) UpdateAvatar(_ context.Context, id int64, url string, at time.Time) error {
	return r.mutate(id, func(a *repository.Account) {
		a.AvatarURL = url
		t := at
		a.ProfileUpdatedAt = &t
	})
}

func (r accounts) SetMFASecret(_ context.Context, id int64, secret string) error {
	return r.mutate(id, func(a *repository.Account) { a.MFASecret = secret })
}

// ─────────────────────────────────────────────────────────────────────────────
// lockouts
// ─────────────────────────────────────────────────────────────────────────────

type lockouts struct{ s *Store }

func copyLockout(rec *repository.LockoutRecord) *repository.LockoutRecord {
	cp := *rec
	if rec.LockedUntil != nil {
		t := *rec.LockedUntil
		cp.LockedUntil = &t
	}
	return &cp
}

func (r lockouts) Get(_ context.Context, accountID int64) (*repository.LockoutRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.lockouts[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyLockout(rec), nil
}

func (r lockouts) RecordFailure(_ context.Context, in repository.FailureInput) (*repository.LockoutRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.lockouts[in.AccountID]
	if !ok {
		rec = &repository.LockoutRecord{AccountID: in.AccountID}
		r.s.lockouts[in.AccountID] = rec
	}
	rec.Attempts++
	rec.IP = in.IP
	rec.DeviceID = in.DeviceID
	rec.LastAttemptAt = in.At
	if rec.Attempts >= in.MaxAttempts {
		until := in.LockUntil
		rec.LockedUntil = &until
	}
	return copyLockout(rec), nil
}

func (r lockouts) SetLockedUntil(_ context.Context, accountID int64, until time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.lockouts[accountID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.LockedUntil = &until
	return nil
}

func (r lockouts) Delete(_ context.Context, accountID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.lockouts, accountID)
	return nil
}

func (r lockouts) RecordAnonymousFailure(_ context.Context, ip, deviceID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := anonKey{ip, deviceID}
	a, ok := r.s.anonymous[k]
	if !ok {
		a = &AnonymousFailure{}
		r.s.anonymous[k] = a
	}
	a.Attempts++
	a.LastAt = at
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// password history
// ─────────────────────────────────────────────────────────────────────────────

type history struct{ s *Store }

// sortedDesc ordena por created_at DESC, id DESC (igual que el SQL).
func sortedDesc(in []repository.PasswordHistoryEntry) []repository.PasswordHistoryEntry {
	out := append([]repository.PasswordHistoryEntry(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r history) ListRecent(_ context.Context, accountID int64) ([]repository.PasswordHistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedDesc(r.s.history[accountID]), nil
}

func (r history) Append(_ context.Context, accountID int64, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextHistoryID++
	r.s.history[accountID] = append(r.s.history[accountID], repository.PasswordHistoryEntry{
		ID:        r.s.nextHistoryID,
		AccountID: accountID,
		Hash:      hash,
		CreatedAt: at,
	})
	return nil
}

func (r history) Prune(_ context.Context, accountID int64, keep int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entries := sortedDesc(r.s.history[accountID])
	if keep < 0 {
		keep = 0
	}
	if len(entries) > keep {
		entries = entries[:keep]
	}
	r.s.history[accountID] = entries
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// recovery tokens
// ─────────────────────────────────────────────────────────────────────────────

type tokens struct{ s *Store }

func (r tokens) Upsert(_ context.Context, t repository.RecoveryToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[t.AccountID] = t
	return nil
}

func (r tokens) Get(_ context.Context, accountID int64, token string) (*repository.RecoveryToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[accountID]
	if !ok || !tokensec.Equal(t.Token, token) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r tokens) Consume(_ context.Context, accountID int64, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[accountID]
	if !ok || !tokensec.Equal(t.Token, token) {
		return repository.ErrNotFound
	}
	delete(r.s.tokens, accountID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// empresa
// ─────────────────────────────────────────────────────────────────────────────

type company struct{ s *Store }

func copyCompany(c *repository.Company) *repository.Company {
	out := *c
	if c.RedesSociales != nil {
		out.RedesSociales = append([]byte(nil), c.RedesSociales...)
	}
	return &out
}

func (r company) Get(context.Context) (*repository.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.company == nil {
		return nil, repository.ErrNotFound
	}
	return copyCompany(r.s.company), nil
}

func (r company) Upsert(_ context.Context, c repository.Company, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	created := r.s.company == nil
	c.CreatedAt = at
	if !created {
		c.CreatedAt = r.s.company.CreatedAt
	}
	c.UpdatedAt = at
	r.s.company = copyCompany(&c)
	return created, nil
}

func (r company) UpdateField(_ context.Context, field repository.CompanyField, value string, at time.Time) error {
	if !field.Valid() {
		return repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.company
	if c == nil {
		return repository.ErrNotFound
	}
	switch field {
	case repository.CompanyDireccion:
		c.Direccion = value
	case repository.CompanyCorreo:
		c.Correo = value
	case repository.CompanyTelefono:
		c.Telefono = value
	case repository.CompanySlogan:
		c.Slogan = value
	case repository.CompanyLogoURL:
		c.LogoURL = value
	case repository.CompanyRedesSociales:
		c.RedesSociales = nil
		if value != "" {
			c.RedesSociales = []byte(value)
		}
	}
	c.UpdatedAt = at
	return nil
}
