// Package pipeline monta a cadeia de filtros declarada na configuração e
// executa os eventos sobre ela, individualmente ou em lotes.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/filter"
	"github.com/raywall/fast-yaml-filter/pkg/metrics"
	"github.com/raywall/fast-yaml-filter/pkg/rules"
	"github.com/rs/zerolog"
)

// Deps são as dependências compartilhadas injetadas no pipeline.
type Deps struct {
	Logger      zerolog.Logger
	Metrics     metrics.Provider
	RuleManager *rules.RuleManager
	Validator   *config.ConfigValidator
}

// Pipeline é imutável após New e pode ser usado por várias goroutines,
// desde que cada evento pertença a uma só.
type Pipeline struct {
	Config   *config.PipelineConfig
	Logger   zerolog.Logger
	filters  []filter.Filter
	recorder *metrics.Recorder
	workers  int
}

type noopProvider struct{}

func (noopProvider) Count(string, float64, []string) error     { return nil }
func (noopProvider) Gauge(string, float64, []string) error     { return nil }
func (noopProvider) Histogram(string, float64, []string) error { return nil }

// New compila cada filtro declarado em cfg.Filters.
func New(cfg *config.PipelineConfig, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuração do pipeline ausente")
	}

	rm := deps.RuleManager
	if rm == nil {
		var err error
		rm, err = rules.NewRuleManager()
		if err != nil {
			return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
		}
	}
	v := deps.Validator
	if v == nil {
		v = config.NewValidator()
	}
	var provider metrics.Provider = noopProvider{}
	if deps.Metrics != nil {
		provider = deps.Metrics
	}

	log := deps.Logger.With().Str("component", "pipeline").Logger()

	filters := make([]filter.Filter, 0, len(cfg.Filters))
	for _, fc := range cfg.Filters {
		base, err := filter.NewBase(fc, rm, deps.Logger)
		if err != nil {
			return nil, err
		}
		f, err := NewFilter(filter.Spec{Conf: fc, Base: base, Logger: deps.Logger, Validator: v})
		if err != nil {
			return nil, fmt.Errorf("erro ao construir filtro '%s': %w", fc.ID, err)
		}
		filters = append(filters, f)
		log.Debug().Str("filter_id", fc.ID).Str("filter_type", fc.Type).Msg("filtro registrado")
	}

	return &Pipeline{
		Config:   cfg,
		Logger:   log,
		filters:  filters,
		recorder: metrics.NewRecorder(provider, deps.Logger),
		workers:  cfg.Service.GetWorkers(),
	}, nil
}

// Filters retorna a cadeia na ordem de execução.
func (p *Pipeline) Filters() []filter.Filter {
	return p.filters
}

// Recorder expõe as métricas do pipeline para os transportes.
func (p *Pipeline) Recorder() *metrics.Recorder {
	return p.recorder
}

// Process executa todos os filtros sobre ev, em ordem. Um filtro que falha
// não interrompe a cadeia: a falha fica registrada como tag no evento.
func (p *Pipeline) Process(ctx context.Context, ev *event.Event) {
	start := time.Now()
	for _, f := range p.filters {
		if ctx.Err() != nil {
			p.Logger.Debug().Err(ctx.Err()).Msg("processamento interrompido")
			return
		}
		out := f.Filter(ctx, ev)
		p.recorder.FilterOutcome(f.Type(), f.ID(), out.String())
	}
	p.recorder.EventDuration(time.Since(start))
}

// ProcessBatch processa events com até service.workers goroutines. O slice
// retornado mantém a ordem de entrada. Se ctx for cancelado, nenhum evento
// novo é agendado e o erro do contexto é retornado junto dos eventos.
func (p *Pipeline) ProcessBatch(ctx context.Context, events []*event.Event) ([]*event.Event, error) {
	p.recorder.BatchSize(len(events))

	jobs := make(chan int, p.workers)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				p.Process(ctx, events[idx])
			}
		}()
	}

	var err error
schedule:
	for i := range events {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break schedule
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return events, err
}
