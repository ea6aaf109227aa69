package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/raywall/fast-yaml-filter/pkg/filter"
	"github.com/raywall/fast-yaml-filter/pkg/yamlfilter"
)

var (
	// registry guarda as fábricas de filtro por tipo
	registry = make(map[string]filter.Factory)
	mu       sync.RWMutex
)

// RegisterFilterType registra a fábrica de um tipo de filtro. Um registro
// posterior com o mesmo nome substitui o anterior.
func RegisterFilterType(filterType string, factory filter.Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[filterType] = factory
}

// GetFilterFactory retorna a fábrica de um tipo de filtro.
func GetFilterFactory(filterType string) (filter.Factory, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, exists := registry[filterType]
	if !exists {
		return nil, fmt.Errorf("tipo de filtro desconhecido: %s", filterType)
	}
	return factory, nil
}

// NewFilter constrói um filtro usando a fábrica registrada para spec.Conf.Type.
func NewFilter(spec filter.Spec) (filter.Filter, error) {
	factory, err := GetFilterFactory(spec.Conf.Type)
	if err != nil {
		return nil, err
	}
	return factory(spec)
}

// ListFilterTypes lista os tipos registrados em ordem alfabética.
func ListFilterTypes() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// RegisterDefaults registra os filtros embutidos no binário.
func RegisterDefaults() {
	RegisterFilterType(yamlfilter.TypeName, yamlfilter.Build)
}
