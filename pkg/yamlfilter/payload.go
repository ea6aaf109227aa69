package yamlfilter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Payload é o resultado normalizado da decodificação: Mapping, Sequence ou
// Scalar. A interface é selada para que os switches sobre ela sejam exaustivos.
type Payload interface {
	// Value devolve o valor nativo (map[string]interface{}, []interface{} ou escalar).
	Value() interface{}
	payload()
}

// Mapping é um documento YAML cujo nó raiz é um mapa.
type Mapping map[string]interface{}

// Sequence é um documento YAML cujo nó raiz é uma lista.
type Sequence []interface{}

// Scalar é um documento YAML cujo nó raiz é um escalar (inclusive nulo).
type Scalar struct {
	V interface{}
}

func (m Mapping) Value() interface{}  { return map[string]interface{}(m) }
func (s Sequence) Value() interface{} { return []interface{}(s) }
func (s Scalar) Value() interface{}   { return s.V }

func (Mapping) payload()  {}
func (Sequence) payload() {}
func (Scalar) payload()   {}

// Decode decodifica raw com yaml.v3. Apenas o primeiro documento é
// considerado; chaves não textuais são convertidas para string.
// Pânicos do decodificador são convertidos em erro.
func Decode(raw string) (p Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("%w: pânico no decodificador: %v", ErrDecode, r)
		}
	}()

	var out interface{}
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch v := normalize(out).(type) {
	case map[string]interface{}:
		return Mapping(v), nil
	case []interface{}:
		return Sequence(v), nil
	default:
		return Scalar{V: v}, nil
	}
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			m[fmt.Sprintf("%v", k)] = normalize(val)
		}
		return m
	case []interface{}:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	}
	return v
}
