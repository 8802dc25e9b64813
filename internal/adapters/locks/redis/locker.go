// Package redis implementa el Locker con SET NX PX para varias instancias del API.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"petrack/internal/ports/locks"
)

// Sólo borra la clave si el token sigue siendo el nuestro.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Options struct {
	// TTL del lock; si el proceso muere, la clave expira sola.
	TTL time.Duration
	// MaxWait es lo máximo que se espera por el lock además del contexto.
	MaxWait time.Duration
	// RetryEvery es el intervalo entre intentos.
	RetryEvery time.Duration
}

type Locker struct {
	client goredis.UniversalClient
	opts   Options
}

func New(client goredis.UniversalClient, opts Options) *Locker {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 5 * time.Second
	}
	if opts.RetryEvery <= 0 {
		opts.RetryEvery = 25 * time.Millisecond
	}
	return &Locker{client: client, opts: opts}
}

// Connect abre el cliente desde REDIS_URL y verifica con PING.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.opts.MaxWait)
	defer cancel()

	ticker := time.NewTicker(l.opts.RetryEvery)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.opts.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("redis setnx %s: %w", key, err)
		}
		if ok {
			return l.unlocker(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: %s", locks.ErrNotAcquired, key)
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlocker(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Contexto propio: el del request puede estar cancelado ya.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
}
