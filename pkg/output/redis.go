package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/redis/go-redis/v9"
)

// RedisPusher é o subconjunto do cliente Redis usado pela saída.
type RedisPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// Redis acrescenta cada evento ao fim de uma lista.
type Redis struct {
	client RedisPusher
	key    string
}

func NewRedis(client RedisPusher, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Write(ctx context.Context, ev *event.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento: %w", err)
	}
	if err := r.client.RPush(ctx, r.key, string(b)).Err(); err != nil {
		return fmt.Errorf("falha no RPUSH em '%s': %w", r.key, err)
	}
	return nil
}

func (r *Redis) Name() string { return config.OutputRedis }

func (r *Redis) Close() error {
	return r.client.Close()
}
