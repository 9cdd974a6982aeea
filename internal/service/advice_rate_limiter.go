package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdviceRateLimiter acota las llamadas al servicio de IA externo por
// sujeto y ventana. Pasado el cupo se sirve cache o heuristica.
type AdviceRateLimiter interface {
	Allow(key string) bool
}

const redisAdviceAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisAdviceRateLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
	prefix string
}

func NewRedisAdviceRateLimiter(client *redis.Client, window time.Duration, max int) AdviceRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisAdviceRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "advice:rl:",
	}
}

func (l *redisAdviceRateLimiter) Allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAdviceAllowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		// Redis caido no debe negar el consejo; el timeout del cliente
		// HTTP sigue acotando el costo.
		return true
	}
	return count <= l.max
}

type memoryAdviceRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	counts map[string]rateWindow
}

type rateWindow struct {
	count    int
	resetsAt time.Time
}

func NewMemoryAdviceRateLimiter(window time.Duration, max int) AdviceRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryAdviceRateLimiter{
		window: window,
		max:    max,
		counts: make(map[string]rateWindow),
	}
}

func (l *memoryAdviceRateLimiter) Allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	w, ok := l.counts[key]
	if !ok || now.After(w.resetsAt) {
		l.counts[key] = rateWindow{count: 1, resetsAt: now.Add(l.window)}
		return true
	}
	w.count++
	l.counts[key] = w
	return w.count <= l.max
}
