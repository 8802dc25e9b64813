// Package local implementa locks por clave dentro del proceso.
package local

import (
	"context"
	"fmt"
	"sync"

	"petrack/internal/ports/locks"
)

type entry struct {
	sem  chan struct{}
	refs int
}

type Locker struct {
	mu   sync.Mutex
	keys map[string]*entry
}

func New() *Locker {
	return &Locker{keys: map[string]*entry{}}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.keys[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("%w: %s: %v", locks.ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(key, e)
		})
	}, nil
}

// release borra la entrada cuando nadie más la espera.
func (l *Locker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
}
