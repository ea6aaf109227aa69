package event

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Nomes reservados do evento.
const (
	TimestampField        = "@timestamp"
	TagsField             = "tags"
	TagsFailureField      = "_tags"
	TimestampFailureTag   = "_timestampparsefailure"
	TimestampFailureField = "_@timestamp"
)

// ErrPathConflict indica que um nó intermediário do caminho não é um container.
var ErrPathConflict = errors.New("conflito de caminho")

// ErrInvalidPath indica um caminho vazio ou mal formado.
var ErrInvalidPath = errors.New("caminho inválido")

// Event é um registro estruturado que trafega pelo pipeline.
//
// O timestamp fica fora do mapa de campos e as tags ficam no campo "tags".
// Um Event não é seguro para uso concorrente: o host garante que cada
// evento pertence a uma única goroutine durante o processamento.
type Event struct {
	fields    map[string]interface{}
	timestamp time.Time
}

// New cria um evento assumindo a posse de fields. O campo @timestamp, se
// existir, é removido do mapa e convertido; quando inválido, o evento recebe
// o horário atual, a tag de falha e o valor original em _@timestamp.
func New(fields map[string]interface{}) *Event {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	e := &Event{fields: fields, timestamp: now()}

	raw, ok := fields[TimestampField]
	if !ok {
		return e
	}
	delete(fields, TimestampField)

	ts, err := CoerceTimestamp(raw)
	if err != nil {
		e.Tag(TimestampFailureTag)
		e.fields[TimestampFailureField] = fmt.Sprintf("%v", raw)
		return e
	}
	e.timestamp = ts
	return e
}

// now é substituível nos testes.
var now = func() time.Time { return time.Now().UTC() }

// Timestamp retorna o timestamp canônico do evento.
func (e *Event) Timestamp() time.Time {
	return e.timestamp
}

// SetTimestamp define o timestamp canônico do evento.
func (e *Event) SetTimestamp(t time.Time) {
	e.timestamp = t.UTC()
}

// Get retorna o valor no caminho informado.
func (e *Event) Get(path string) (interface{}, bool) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	if len(segs) == 1 && segs[0] == TimestampField {
		return e.timestamp, true
	}

	var current interface{} = e.fields
	for _, seg := range segs {
		next, ok := child(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Includes informa se o caminho existe no evento, mesmo com valor nulo.
func (e *Event) Includes(path string) bool {
	_, ok := e.Get(path)
	return ok
}

// Set grava value no caminho, criando mapas intermediários quando preciso.
// Se algum nó intermediário for um escalar, retorna ErrPathConflict sem
// alterar o evento.
func (e *Event) Set(path string, value interface{}) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	if len(segs) == 1 && segs[0] == TimestampField {
		ts, err := CoerceTimestamp(value)
		if err != nil {
			return err
		}
		e.timestamp = ts
		return nil
	}

	// Primeira passada apenas valida, para nunca deixar escrita parcial.
	if err := e.checkWritable(segs); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}

	var current interface{} = e.fields
	for _, seg := range segs[:len(segs)-1] {
		next, ok := child(current, seg)
		if !ok {
			m := current.(map[string]interface{})
			created := make(map[string]interface{})
			m[seg] = created
			next = created
		}
		current = next
	}
	return assign(current, segs[len(segs)-1], value)
}

// SetRoot grava value na raiz do evento usando key literalmente, sem
// interpretar pontos ou colchetes.
func (e *Event) SetRoot(key string, value interface{}) {
	if key == TimestampField {
		if ts, err := CoerceTimestamp(value); err == nil {
			e.timestamp = ts
		}
		return
	}
	e.fields[key] = value
}

// Remove apaga o campo no caminho e retorna o valor anterior.
func (e *Event) Remove(path string) (interface{}, bool) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, false
	}

	var current interface{} = e.fields
	for _, seg := range segs[:len(segs)-1] {
		next, ok := child(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}

	last := segs[len(segs)-1]
	switch c := current.(type) {
	case map[string]interface{}:
		v, ok := c[last]
		if ok {
			delete(c, last)
		}
		return v, ok
	case []interface{}:
		// Remover de um slice exige regravar o pai; mantemos o comprimento
		// e zeramos a posição.
		idx, ok := index(c, last)
		if !ok {
			return nil, false
		}
		v := c[idx]
		c[idx] = nil
		return v, true
	}
	return nil, false
}

// Fields retorna uma cópia profunda dos campos, incluindo @timestamp.
func (e *Event) Fields() map[string]interface{} {
	out := deepCopy(e.fields).(map[string]interface{})
	out[TimestampField] = e.timestamp
	return out
}

// Clone retorna uma cópia profunda e independente do evento.
func (e *Event) Clone() *Event {
	return &Event{
		fields:    deepCopy(e.fields).(map[string]interface{}),
		timestamp: e.timestamp,
	}
}

// Keys lista os campos de primeiro nível em ordem alfabética.
func (e *Event) Keys() []string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Event) checkWritable(segs []string) error {
	var current interface{} = e.fields
	for i, seg := range segs {
		switch c := current.(type) {
		case map[string]interface{}:
			next, ok := c[seg]
			if !ok {
				// Daqui em diante tudo será criado.
				return nil
			}
			if i == len(segs)-1 {
				return nil
			}
			current = next
		case []interface{}:
			idx, ok := index(c, seg)
			if !ok {
				return ErrPathConflict
			}
			if i == len(segs)-1 {
				return nil
			}
			current = c[idx]
		default:
			return ErrPathConflict
		}
	}
	return nil
}

func child(current interface{}, seg string) (interface{}, bool) {
	switch c := current.(type) {
	case map[string]interface{}:
		v, ok := c[seg]
		return v, ok
	case []interface{}:
		idx, ok := index(c, seg)
		if !ok {
			return nil, false
		}
		return c[idx], true
	}
	return nil, false
}

func assign(current interface{}, seg string, value interface{}) error {
	switch c := current.(type) {
	case map[string]interface{}:
		c[seg] = value
		return nil
	case []interface{}:
		idx, ok := index(c, seg)
		if !ok {
			return ErrPathConflict
		}
		c[idx] = value
		return nil
	}
	return ErrPathConflict
}

func deepCopy(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[k] = deepCopy(val)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(x))
		for i, val := range x {
			s[i] = deepCopy(val)
		}
		return s
	default:
		return v
	}
}
