package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/metrics"
	"github.com/raywall/fast-yaml-filter/pkg/output"
	"github.com/rs/zerolog"
)

// JSONParseFailureTag marca eventos cuja entrada não era JSON válido.
const JSONParseFailureTag = "_jsonparsefailure"

// maxLineSize limita o tamanho de uma linha de entrada.
const maxLineSize = 4 * 1024 * 1024

// Processor executa a cadeia de filtros.
type Processor interface {
	Process(ctx context.Context, ev *event.Event)
	ProcessBatch(ctx context.Context, events []*event.Event) ([]*event.Event, error)
}

// EventFromBody converte uma entrada textual em evento. Entradas que não são
// um objeto JSON viram {"message": body} com a tag _jsonparsefailure.
func EventFromBody(body string) *event.Event {
	ev, err := event.FromJSON([]byte(body))
	if err == nil {
		return ev
	}
	ev = event.New(map[string]interface{}{"message": body})
	ev.Tag(JSONParseFailureTag)
	return ev
}

// StdinRunner lê eventos em JSON Lines e envia os processados para a saída.
type StdinRunner struct {
	proc     Processor
	out      output.Writer
	recorder *metrics.Recorder
	logger   zerolog.Logger
}

func NewStdinRunner(proc Processor, out output.Writer, recorder *metrics.Recorder, logger zerolog.Logger) *StdinRunner {
	return &StdinRunner{
		proc:     proc,
		out:      out,
		recorder: recorder,
		logger:   logger.With().Str("component", "stdin").Logger(),
	}
}

// Run consome r até EOF ou cancelamento de ctx. Linhas em branco são
// ignoradas. Falhas de escrita são logadas e contabilizadas sem interromper
// a leitura.
func (s *StdinRunner) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var count int
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev := EventFromBody(line)
		s.proc.Process(ctx, ev)
		if err := s.out.Write(ctx, ev); err != nil {
			s.recorder.OutputFailure(s.out.Name())
			s.logger.Error().Err(err).Str("output", s.out.Name()).Msg("falha ao gravar evento")
			continue
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("falha ao ler a entrada: %w", err)
	}

	s.logger.Info().Int("events", count).Msg("entrada encerrada")
	return nil
}
