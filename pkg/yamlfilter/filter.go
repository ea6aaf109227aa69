// Package yamlfilter implementa o filtro que decodifica um campo YAML do
// evento e mescla o resultado na raiz do evento ou em um campo de destino.
//
// O processamento é feito em duas fases: o conteúdo é decodificado, validado
// e o @timestamp convertido em uma estrutura temporária; só então os campos
// são gravados no evento. Um evento nunca fica com uma mesclagem parcial.
package yamlfilter

import (
	"context"
	"fmt"
	"time"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/filter"
	"github.com/rs/zerolog"
)

// TypeName é o nome do filtro no arquivo de configuração.
const TypeName = "yaml"

// ParseFailureTag marca eventos cujo campo de origem não pôde ser mesclado.
const ParseFailureTag = "_yamlparsefailure"

// Config é a configuração do filtro, imutável após New.
type Config struct {
	// Source é o campo que contém o texto YAML.
	Source string `json:"source" validate:"required"`
	// Target recebe a estrutura decodificada. Vazio mescla na raiz do evento.
	Target string `json:"target"`
}

// Hooks são as capacidades fornecidas pelo host: a condição de
// aplicabilidade e o sinal de sucesso. *filter.Base implementa Hooks.
type Hooks interface {
	ID() string
	Applies(ev *event.Event) bool
	Matched(ev *event.Event)
}

// Filter decodifica YAML de um campo do evento. É seguro para uso
// concorrente desde que cada evento seja processado por uma única goroutine.
type Filter struct {
	cfg    Config
	hooks  Hooks
	logger zerolog.Logger
	now    func() time.Time
}

// New cria o filtro.
func New(cfg Config, hooks Hooks, logger zerolog.Logger) (*Filter, error) {
	if cfg.Source == "" {
		return nil, ErrMissingSource
	}
	return &Filter{
		cfg:    cfg,
		hooks:  hooks,
		logger: logger.With().Str("filter", TypeName).Str("filter_id", hooks.ID()).Logger(),
		now:    time.Now,
	}, nil
}

// Build é a fábrica registrada no pipeline para o tipo "yaml".
func Build(spec filter.Spec) (filter.Filter, error) {
	var cfg Config
	if err := config.DecodeConfig(spec.Conf.Config, &cfg); err != nil {
		return nil, fmt.Errorf("filtro '%s': %w", spec.Conf.ID, err)
	}
	if spec.Validator != nil {
		if err := spec.Validator.Struct(cfg); err != nil {
			return nil, fmt.Errorf("filtro '%s': %w", spec.Conf.ID, err)
		}
	}
	f, err := New(cfg, spec.Base, spec.Logger)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Filter) ID() string   { return f.hooks.ID() }
func (f *Filter) Type() string { return TypeName }

// Config retorna a configuração efetiva.
func (f *Filter) Config() Config { return f.cfg }

// Filter aplica o filtro sobre ev. Nunca retorna erro: falhas de
// decodificação viram a tag _yamlparsefailure e o evento fica intacto.
func (f *Filter) Filter(_ context.Context, ev *event.Event) filter.Outcome {
	if !f.hooks.Applies(ev) {
		return filter.OutcomeSkipped
	}

	f.logger.Debug().Stringer("event", ev).Msg("executando filtro yaml")

	raw, ok := ev.Get(f.cfg.Source)
	if !ok {
		return filter.OutcomeSkipped
	}

	// Fase 1: decodifica e valida sem tocar no evento
	p, err := f.decode(raw)
	if err != nil {
		return f.fail(ev, raw, err, "erro ao fazer parse do yaml")
	}

	// Fase 2: grava
	if f.cfg.Target != "" {
		if err := ev.Set(f.cfg.Target, p.Value()); err != nil {
			return f.fail(ev, raw, fmt.Errorf("%w '%s': %v", ErrTargetConflict, f.cfg.Target, err), "falha ao gravar o target")
		}
	} else {
		m, ok := p.(Mapping)
		if !ok {
			return f.fail(ev, raw, ErrRootNotMapping, "YAML não-objeto exige a opção target")
		}
		f.mergeRoot(ev, m)
	}

	f.hooks.Matched(ev)
	f.logger.Trace().Stringer("event", ev).Msg("evento após filtro yaml")
	return filter.OutcomeMatched
}

func (f *Filter) decode(raw interface{}) (Payload, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, &DecodeError{Source: f.cfg.Source, Raw: raw, Err: fmt.Errorf("%w: %T", ErrSourceNotString, raw)}
	}
	p, err := Decode(s)
	if err != nil {
		return nil, &DecodeError{Source: f.cfg.Source, Raw: raw, Err: err}
	}
	return p, nil
}

// mergeRoot grava as chaves de m na raiz do evento. O @timestamp é extraído
// antes e convertido; se não for reconhecido, o evento recebe o horário
// atual, a tag _timestampparsefailure e o valor original em _@timestamp.
func (f *Filter) mergeRoot(ev *event.Event, m Mapping) {
	rawTS, hasTS := m[event.TimestampField]
	delete(m, event.TimestampField)

	var ts time.Time
	var tsErr error
	if hasTS {
		ts, tsErr = event.CoerceTimestamp(rawTS)
	}

	for k, v := range m {
		ev.SetRoot(k, v)
	}

	if !hasTS {
		return
	}
	if tsErr == nil {
		ev.SetTimestamp(ts)
		return
	}

	ev.SetTimestamp(f.now())
	ev.Tag(event.TimestampFailureTag)
	ev.SetRoot(event.TimestampFailureField, fmt.Sprintf("%v", rawTS))
	f.logger.Warn().
		Err(tsErr).
		Interface("value", rawTS).
		Msgf("%s não reconhecido, usando horário atual; original em %s", event.TimestampField, event.TimestampFailureField)
}

func (f *Filter) fail(ev *event.Event, raw interface{}, err error, msg string) filter.Outcome {
	ev.Tag(ParseFailureTag)
	f.logger.Warn().
		Err(err).
		Str("source", f.cfg.Source).
		Interface("raw", raw).
		Msg(msg)
	return filter.OutcomeFailed
}
