package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProfileLock serializa las escrituras de perfil por usuario. El modelo
// asume a lo sumo una actualización en vuelo por usuario; usuarios
// distintos nunca contienden.
type ProfileLock interface {
	Acquire(ctx context.Context, userID string) (release func(), err error)
}

// LocalProfileLock implementa el lock con un mutex por usuario, suficiente
// cuando todas las escrituras pasan por un solo proceso.
type LocalProfileLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalProfileLock() *LocalProfileLock {
	return &LocalProfileLock{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalProfileLock) Acquire(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

const redisLockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisProfileLock implementa el lock con SET NX + TTL, para despliegues
// con más de una instancia escribiendo perfiles. El TTL evita locks
// huérfanos si un proceso muere a mitad de una actualización.
type RedisProfileLock struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisProfileLock(client *redis.Client, ttl time.Duration) *RedisProfileLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisProfileLock{
		client: client,
		ttl:    ttl,
		prefix: "profile:lock:",
	}
}

// Acquire reintenta con backoff corto hasta obtener el lock o hasta que el
// contexto expire. El token único evita liberar un lock ajeno.
func (l *RedisProfileLock) Acquire(ctx context.Context, userID string) (func(), error) {
	key := l.prefix + userID
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		_ = l.client.Eval(releaseCtx, redisLockReleaseScript, []string{key}, token).Err()
	}
	return release, nil
}
