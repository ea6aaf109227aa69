package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromJSON decodifica um objeto JSON em um evento. Números são preservados
// como int64 quando inteiros.
func FromJSON(data []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("erro ao fazer parse do JSON: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("erro ao fazer parse do JSON: objeto nulo")
	}
	return New(normalizeNumbers(fields).(map[string]interface{})), nil
}

// MarshalJSON serializa o evento com o @timestamp no formato canônico.
func (e *Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.fields)+1)
	for k, v := range e.fields {
		out[k] = v
	}
	out[TimestampField] = FormatTimestamp(e.timestamp)
	return json.Marshal(out)
}

// String devolve o evento em JSON, usado em logs.
func (e *Event) String() string {
	b, err := e.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", e.fields)
	}
	return string(b)
}

func normalizeNumbers(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, val := range x {
			x[k] = normalizeNumbers(val)
		}
		return x
	case []interface{}:
		for i, val := range x {
			x[i] = normalizeNumbers(val)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}
