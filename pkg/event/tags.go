package event

import (
	"fmt"
	"regexp"
	"strings"
)

// Tag acrescenta name ao conjunto de tags, sem duplicar.
func (e *Event) Tag(name string) {
	tags := e.tagList()
	for _, t := range tags {
		if t == name {
			return
		}
	}
	e.fields[TagsField] = append(tags, name)
}

// Untag remove name do conjunto de tags.
func (e *Event) Untag(name string) {
	raw, ok := e.fields[TagsField].([]interface{})
	if !ok {
		return
	}
	kept := raw[:0]
	for _, t := range raw {
		if t != name {
			kept = append(kept, t)
		}
	}
	e.fields[TagsField] = kept
}

// HasTag informa se o evento possui a tag.
func (e *Event) HasTag(name string) bool {
	for _, t := range e.Tags() {
		if t == name {
			return true
		}
	}
	return false
}

// Tags retorna as tags do evento como strings.
func (e *Event) Tags() []string {
	raw, ok := e.fields[TagsField]
	if !ok {
		return nil
	}
	switch t := raw.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, v := range t {
			out = append(out, fmt.Sprintf("%v", v))
		}
		return out
	}
	return nil
}

// tagList normaliza o campo tags para []interface{}. Uma string vira lista
// de um elemento; qualquer outro tipo é movido para _tags.
func (e *Event) tagList() []interface{} {
	raw, ok := e.fields[TagsField]
	if !ok || raw == nil {
		return []interface{}{}
	}
	switch t := raw.(type) {
	case []interface{}:
		return t
	case string:
		return []interface{}{t}
	}
	e.fields[TagsFailureField] = raw
	return []interface{}{}
}

var sprintfRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// Sprintf substitui referências %{campo} pelo valor correspondente do evento.
// Referências inexistentes são mantidas literalmente.
func (e *Event) Sprintf(format string) string {
	if !strings.Contains(format, "%{") {
		return format
	}
	return sprintfRegex.ReplaceAllStringFunc(format, func(match string) string {
		path := match[2 : len(match)-1]
		v, ok := e.Get(path)
		if !ok {
			return match
		}
		if path == TimestampField {
			return FormatTimestamp(e.timestamp)
		}
		return fmt.Sprintf("%v", v)
	})
}
