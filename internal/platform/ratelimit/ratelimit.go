// Package ratelimit implementa una ventana fija por clave (owner id) en memoria del proceso.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultLimit  = 5
	DefaultWindow = 60 * time.Second

	// A partir de este tamaño se purgan ventanas vencidas en cada Allow.
	sweepThreshold = 10000
)

// Decision es el resultado de un Allow.
type Decision struct {
	Allowed   bool
	Count     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter es el tiempo hasta el reset (0 si ya pasó).
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.After(now) {
		return d.ResetAt.Sub(now)
	}
	return 0
}

// Limiter decide si una clave puede hacer otra request en su ventana actual.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow guarda contador + reset por clave. Es volátil: se pierde al reiniciar.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	entries map[string]*window
}

func NewFixedWindow(limit int, win time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if win <= 0 {
		win = DefaultWindow
	}
	return &FixedWindow{
		limit:   limit,
		window:  win,
		now:     time.Now,
		entries: make(map[string]*window),
	}
}

func (l *FixedWindow) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.entries) > sweepThreshold {
		l.sweep(now)
	}

	w, ok := l.entries[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = w
	} else {
		w.count++
	}

	remaining := l.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.count <= l.limit,
		Count:     w.count,
		Remaining: remaining,
		ResetAt:   w.resetAt,
	}, nil
}

func (l *FixedWindow) sweep(now time.Time) {
	for k, w := range l.entries {
		if now.After(w.resetAt) {
			delete(l.entries, k)
		}
	}
}

// Len devuelve cuántas claves hay en memoria.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
