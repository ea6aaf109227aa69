package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
)

// SQSSender é o subconjunto do cliente SQS usado pela saída (permite Mocking).
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS publica cada evento como uma mensagem na fila.
type SQS struct {
	client   SQSSender
	queueURL string
}

func NewSQS(client SQSSender, queueURL string) *SQS {
	return &SQS{client: client, queueURL: queueURL}
}

func (s *SQS) Write(ctx context.Context, ev *event.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento: %w", err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		return fmt.Errorf("falha ao publicar no sqs: %w", err)
	}
	return nil
}

func (s *SQS) Name() string { return config.OutputSQS }
func (s *SQS) Close() error { return nil }
