// Package filter define o contrato entre o pipeline e os filtros: o
// resultado de cada invocação, a condição de aplicabilidade e as decorações
// aplicadas quando um filtro casa com o evento.
package filter

import (
	"context"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/rs/zerolog"
)

// Outcome é o resultado de um filtro para um evento.
type Outcome int

const (
	// OutcomeSkipped: condição falsa ou campo de origem ausente; evento intacto.
	OutcomeSkipped Outcome = iota
	// OutcomeMatched: o filtro aplicou sua transformação.
	OutcomeMatched
	// OutcomeFailed: o filtro não conseguiu aplicar e marcou o evento com uma tag.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeMatched:
		return "matched"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Filter é uma etapa do pipeline. Implementações não retornam erro: falhas
// viram tags no evento.
type Filter interface {
	Filter(ctx context.Context, ev *event.Event) Outcome
	ID() string
	Type() string
}

// Spec reúne o que uma fábrica de filtros recebe do pipeline.
type Spec struct {
	Conf      config.FilterConf
	Base      *Base
	Logger    zerolog.Logger
	Validator *config.ConfigValidator
}

// Factory constrói um filtro a partir de sua declaração.
type Factory func(spec Spec) (Filter, error)
