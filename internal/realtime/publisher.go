package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
)

const Channel = "clinica:appointments"

// RedisPublisher publica os eventos do outbox no canal compartilhado; cada
// instância da API assina o canal e repassa ao próprio Hub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: Channel}
}

func (p *RedisPublisher) Name() string { return "realtime" }

func (p *RedisPublisher) Handle(ctx context.Context, ev appointment.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// Subscribe repassa ao hub tudo que chega no canal até ctx terminar.
func Subscribe(ctx context.Context, client *redis.Client, hub *Hub, log *zap.Logger) {
	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()

	log.Info("realtime inscrito no canal", zap.String("channel", Channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			hub.Broadcast([]byte(msg.Payload))
		}
	}
}

// LocalPublisher entrega direto ao hub; usado quando não há Redis e a API
// roda em instância única.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Name() string { return "realtime" }

func (p *LocalPublisher) Handle(_ context.Context, ev appointment.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.hub.Broadcast(payload)
	return nil
}
