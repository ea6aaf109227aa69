package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/metrics"
	"github.com/raywall/fast-yaml-filter/pkg/output"
	"github.com/rs/zerolog"
)

// SQSClient define a interface necessária para o consumidor (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSConsumer lê eventos de uma fila por long polling. Cada mensagem só é
// apagada depois que o evento correspondente foi gravado na saída.
type SQSConsumer struct {
	client      SQSClient
	queueURL    string
	waitSeconds int32
	maxMessages int32
	retryDelay  time.Duration
	proc        Processor
	out         output.Writer
	recorder    *metrics.Recorder
	logger      zerolog.Logger
}

// NewSQSConsumer cria o consumidor. Valores zerados em cfg assumem 20s de
// espera e 10 mensagens por chamada.
func NewSQSConsumer(client SQSClient, cfg config.SQSInputConf, proc Processor, out output.Writer, recorder *metrics.Recorder, logger zerolog.Logger) *SQSConsumer {
	c := &SQSConsumer{
		client:      client,
		queueURL:    cfg.QueueURL,
		waitSeconds: cfg.WaitSeconds,
		maxMessages: cfg.MaxMessages,
		retryDelay:  5 * time.Second,
		proc:        proc,
		out:         out,
		recorder:    recorder,
		logger:      logger.With().Str("component", "sqs_consumer").Logger(),
	}
	if c.waitSeconds == 0 {
		c.waitSeconds = 20
	}
	if c.maxMessages == 0 {
		c.maxMessages = 10
	}
	return c
}

// Start inicia o consumo (bloqueante) até o cancelamento de ctx.
func (s *SQSConsumer) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Consumidor desativado.")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("Consumindo eventos da fila SQS")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Parando consumo SQS")
			return
		default:
			out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(s.queueURL),
				MaxNumberOfMessages: s.maxMessages,
				WaitTimeSeconds:     s.waitSeconds,
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error().Err(err).Msgf("Erro no SQS. Retentando em %s...", s.retryDelay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.retryDelay):
				}
				continue
			}

			if len(out.Messages) > 0 {
				s.handle(ctx, out.Messages)
			}
		}
	}
}

func (s *SQSConsumer) handle(ctx context.Context, msgs []types.Message) {
	events := make([]*event.Event, len(msgs))
	for i, m := range msgs {
		events[i] = EventFromBody(aws.ToString(m.Body))
	}

	processed, err := s.proc.ProcessBatch(ctx, events)
	if err != nil {
		// Mensagens não apagadas voltam para a fila após o visibility timeout
		s.logger.Warn().Err(err).Int("messages", len(msgs)).Msg("lote interrompido")
		return
	}

	for i, ev := range processed {
		if err := s.out.Write(ctx, ev); err != nil {
			s.recorder.OutputFailure(s.out.Name())
			s.logger.Error().Err(err).Str("message_id", aws.ToString(msgs[i].MessageId)).Msg("falha ao gravar evento, mensagem mantida na fila")
			continue
		}
		if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(s.queueURL),
			ReceiptHandle: msgs[i].ReceiptHandle,
		}); err != nil {
			s.logger.Warn().Err(err).Str("message_id", aws.ToString(msgs[i].MessageId)).Msg("falha ao apagar mensagem")
		}
	}
}
