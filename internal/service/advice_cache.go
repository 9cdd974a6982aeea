package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"teamzen/internal/domain"
)

// AdviceCache guarda consejos derivados por (sujeto, ciclo-o-contexto).
// La lectura valida el fingerprint de los insumos antes de confiar en lo
// cacheado; la expiracion por tiempo es el segundo mecanismo de desalojo.
type AdviceCache interface {
	Get(ctx context.Context, key, fingerprint string) (domain.Advice, bool, error)
	Set(ctx context.Context, key, fingerprint string, advice domain.Advice, ttl time.Duration) error
}

// Fingerprint calcula una huella determinista del input normalizado:
// JSON canonico (marshal de structs con orden de campos fijo) + sha256.
func Fingerprint(input domain.AdviceInput) string {
	payload, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type cachedAdvice struct {
	Fingerprint string        `json:"fingerprint"`
	Advice      domain.Advice `json:"advice"`
}

type redisAdviceCache struct {
	client *redis.Client
	prefix string
}

func NewRedisAdviceCache(client *redis.Client) AdviceCache {
	if client == nil {
		return nil
	}
	return &redisAdviceCache{
		client: client,
		prefix: "advice:cache:",
	}
}

func (c *redisAdviceCache) Get(ctx context.Context, key, fingerprint string) (domain.Advice, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return domain.Advice{}, false, nil
	}
	if err != nil {
		return domain.Advice{}, false, err
	}

	var entry cachedAdvice
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.Advice{}, false, nil
	}
	// Insumos cambiados invalidan la entrada aunque no haya expirado.
	if entry.Fingerprint != fingerprint {
		return domain.Advice{}, false, nil
	}
	return entry.Advice, true, nil
}

func (c *redisAdviceCache) Set(ctx context.Context, key, fingerprint string, advice domain.Advice, ttl time.Duration) error {
	payload, err := json.Marshal(cachedAdvice{Fingerprint: fingerprint, Advice: advice})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+key, payload, ttl).Err()
}

type memoryAdviceCache struct {
	mu    sync.Mutex
	items map[string]memoryAdviceEntry
}

type memoryAdviceEntry struct {
	fingerprint string
	advice      domain.Advice
	expiresAt   time.Time
}

func NewMemoryAdviceCache() AdviceCache {
	return &memoryAdviceCache{items: make(map[string]memoryAdviceEntry)}
}

func (c *memoryAdviceCache) Get(_ context.Context, key, fingerprint string) (domain.Advice, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[key]
	if !ok {
		return domain.Advice{}, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, key)
		return domain.Advice{}, false, nil
	}
	if entry.fingerprint != fingerprint {
		return domain.Advice{}, false, nil
	}
	return entry.advice, true, nil
}

func (c *memoryAdviceCache) Set(_ context.Context, key, fingerprint string, advice domain.Advice, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = memoryAdviceEntry{
		fingerprint: fingerprint,
		advice:      advice,
		expiresAt:   time.Now().UTC().Add(ttl),
	}
	return nil
}
