package filter

import (
	"fmt"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/rules"
	"github.com/rs/zerolog"
)

// Base reúne o comportamento comum a todos os filtros: a condição de
// aplicabilidade e as decorações de sucesso. É imutável após NewBase.
type Base struct {
	id          string
	condition   *rules.Condition
	tags        []string
	addTag      []string
	removeTag   []string
	addField    map[string]string
	removeField []string
	logger      zerolog.Logger
}

// NewBase compila a condição do filtro. rm pode ser nil quando não há condição.
func NewBase(conf config.FilterConf, rm *rules.RuleManager, logger zerolog.Logger) (*Base, error) {
	b := &Base{
		id:          conf.ID,
		tags:        conf.Tags,
		addTag:      conf.AddTag,
		removeTag:   conf.RemoveTag,
		addField:    conf.AddField,
		removeField: conf.RemoveField,
		logger:      logger,
	}

	if conf.Condition != "" {
		if rm == nil {
			return nil, fmt.Errorf("filtro '%s': condição exige RuleManager", conf.ID)
		}
		cond, err := rm.Compile(conf.Condition)
		if err != nil {
			return nil, fmt.Errorf("filtro '%s': %w", conf.ID, err)
		}
		b.condition = cond
	}
	return b, nil
}

// ID identifica o filtro em logs e métricas.
func (b *Base) ID() string {
	return b.id
}

// Applies informa se o filtro deve atuar sobre ev: todas as tags exigidas
// presentes e a condição verdadeira. Erros de avaliação contam como falso.
func (b *Base) Applies(ev *event.Event) bool {
	for _, t := range b.tags {
		if !ev.HasTag(t) {
			return false
		}
	}
	if b.condition == nil {
		return true
	}

	ok, err := b.condition.Evaluate(map[string]interface{}{
		rules.VarEvent: ev.Fields(),
	})
	if err != nil {
		b.logger.Debug().Err(err).Str("filter_id", b.id).Msg("condição não avaliada, filtro ignorado")
		return false
	}
	return ok
}

// Matched aplica as decorações configuradas: add_field, remove_field,
// add_tag e remove_tag, nessa ordem.
func (b *Base) Matched(ev *event.Event) {
	for k, v := range b.addField {
		path := ev.Sprintf(k)
		value := ev.Sprintf(v)
		if err := b.addFieldValue(ev, path, value); err != nil {
			b.logger.Warn().Err(err).Str("filter_id", b.id).Str("field", path).Msg("falha ao adicionar campo")
		}
	}
	for _, f := range b.removeField {
		ev.Remove(ev.Sprintf(f))
	}
	for _, t := range b.addTag {
		ev.Tag(ev.Sprintf(t))
	}
	for _, t := range b.removeTag {
		ev.Untag(ev.Sprintf(t))
	}
}

// addFieldValue transforma um campo existente em lista em vez de sobrescrevê-lo.
func (b *Base) addFieldValue(ev *event.Event, path, value string) error {
	current, ok := ev.Get(path)
	if !ok {
		return ev.Set(path, value)
	}
	switch c := current.(type) {
	case []interface{}:
		return ev.Set(path, append(c, value))
	default:
		if s, ok := c.(string); ok && s == value {
			return nil
		}
		return ev.Set(path, []interface{}{c, value})
	}
}
