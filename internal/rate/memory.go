package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante de un solo proceso, respaldada por go-cache.
// Las entradas caducan solas al cerrar su ventana.
type MemoryLimiter struct {
	store  *gocache.Cache
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewMemoryLimiter crea un limitador en memoria. Varios limitadores pueden
// compartir el mismo *gocache.Cache si usan prefijos distintos.
func NewMemoryLimiter(store *gocache.Cache, prefix string, max int, window time.Duration) *MemoryLimiter {
	if store == nil {
		store = gocache.New(window, 2*window)
	}
	if prefix == "" {
		prefix = "rl:"
	}
	return &MemoryLimiter{store: store, prefix: prefix, max: int64(max), window: window, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	k := windowKey(l.prefix, key, now, l.window)
	ttl := now.Truncate(l.window).Add(l.window).Sub(now)

	var hits int64
	for i := 0; i < 2; i++ {
		if err := l.store.Add(k, int64(1), ttl); err == nil {
			hits = 1
			break
		}
		n, err := l.store.IncrementInt64(k, 1)
		if err == nil {
			hits = n
			break
		}
		// expiró entre Add e Increment: reintentar una vez
	}
	if hits == 0 {
		hits = 1
	}
	return buildResult(hits, l.max, ttl, l.window), nil
}
