package config

import (
	"encoding/json"
	"fmt"
)

// Sanitize converte recursivamente map[interface{}]interface{} (yaml.v2)
// em map[string]interface{}.
func Sanitize(input interface{}) interface{} {
	switch x := input.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[fmt.Sprintf("%v", k)] = Sanitize(v)
		}
		return m
	case map[string]interface{}:
		for k, v := range x {
			x[k] = Sanitize(v)
		}
		return x
	case []interface{}:
		for i, v := range x {
			x[i] = Sanitize(v)
		}
		return x
	}
	return input
}

// DecodeConfig copia um mapa dinâmico para a struct output usando as tags json.
func DecodeConfig(input interface{}, output interface{}) error {
	data, err := json.Marshal(Sanitize(input))
	if err != nil {
		return fmt.Errorf("configuração de filtro inválida: %w", err)
	}
	if err := json.Unmarshal(data, output); err != nil {
		return fmt.Errorf("configuração de filtro inválida: %w", err)
	}
	return nil
}
