// Package output entrega os eventos processados ao destino configurado.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-yaml-filter/pkg/awsconf"
	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/redis/go-redis/v9"
)

// Writer recebe eventos processados. Implementações são seguras para uso
// concorrente.
type Writer interface {
	Write(ctx context.Context, ev *event.Event) error
	Name() string
	Close() error
}

// New cria o Writer descrito em cfg. stdout é usado quando a saída é do
// tipo stdout.
func New(ctx context.Context, cfg config.OutputConf, stdout io.Writer) (Writer, error) {
	switch cfg.GetType() {
	case config.OutputStdout:
		return NewStream(stdout), nil
	case config.OutputSQS:
		awsCfg, err := awsconf.Get(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("falha ao carregar config aws: %w", err)
		}
		return NewSQS(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL), nil
	case config.OutputRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedis(client, cfg.Redis.Key), nil
	}
	return nil, fmt.Errorf("tipo de saída não suportado: %s", cfg.Type)
}

// Stream grava um evento JSON por linha.
type Stream struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStream(w io.Writer) *Stream {
	return &Stream{w: w}
}

func (s *Stream) Write(_ context.Context, ev *event.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento: %w", err)
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(b)
	return err
}

func (s *Stream) Name() string { return config.OutputStdout }
func (s *Stream) Close() error { return nil }
