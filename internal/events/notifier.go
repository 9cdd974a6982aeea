// Package events publica el change feed por equipo: altas de respuestas
// y transiciones de ciclo, para que los dashboards se refresquen en vivo.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Tipos de evento publicados en el canal del equipo.
const (
	EventCycleLaunched     = "cycle.launched"
	EventCycleClosed       = "cycle.closed"
	EventResponseSubmitted = "response.submitted"
)

// Event es el registro que viaja por el feed. No incluye puntajes:
// el suscriptor vuelve a consultar lo que tenga permitido ver.
type Event struct {
	Type    string    `json:"type"`
	TeamID  string    `json:"team_id"`
	CycleID string    `json:"cycle_id,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier publica eventos y permite suscribirse al feed de un equipo.
type Notifier interface {
	Publish(ctx context.Context, event Event)
	Subscribe(ctx context.Context, teamID string) (<-chan Event, func())
}

const channelPrefix = "teamzen:team:"

// RedisNotifier implementa Notifier sobre redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, logger: logger}
}

// Publish es best-effort: un feed caido nunca bloquea la operacion que
// origino el evento.
func (n *RedisNotifier) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("event marshal failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := n.client.Publish(ctx, channelPrefix+event.TeamID, payload).Err(); err != nil {
		n.logger.Warn("event publish failed", zap.Error(err), zap.String("team_id", event.TeamID))
	}
}

func (n *RedisNotifier) Subscribe(ctx context.Context, teamID string) (<-chan Event, func()) {
	sub := n.client.Subscribe(ctx, channelPrefix+teamID)
	out := make(chan Event)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				n.logger.Warn("event unmarshal failed", zap.Error(err))
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel
}

// NoopNotifier descarta eventos; se usa cuando redis no esta configurado.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, Event) {}

func (NoopNotifier) Subscribe(ctx context.Context, _ string) (<-chan Event, func()) {
	ch := make(chan Event)
	var once bool
	cancel := func() {
		if !once {
			once = true
			close(ch)
		}
	}
	return ch, cancel
}
