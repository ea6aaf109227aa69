package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// MockProvider para verificar chamadas
type MockProvider struct {
	LastCallType string
	LastName     string
	LastValue    float64
	LastTags     []string
	Err          error
}

func (m *MockProvider) record(kind, name string, val float64, tags []string) error {
	m.LastCallType = kind
	m.LastName = name
	m.LastValue = val
	m.LastTags = tags
	return m.Err
}

func (m *MockProvider) Count(name string, val float64, tags []string) error {
	return m.record("count", name, val, tags)
}
func (m *MockProvider) Gauge(name string, val float64, tags []string) error {
	return m.record("gauge", name, val, tags)
}
func (m *MockProvider) Histogram(name string, val float64, tags []string) error {
	return m.record("histogram", name, val, tags)
}

func TestRecorder_FilterOutcome(t *testing.T) {
	provider := &MockProvider{}
	rec := NewRecorder(provider, zerolog.Nop())

	rec.FilterOutcome("yaml", "parse-message", "matched")

	if provider.LastCallType != "count" || provider.LastName != MetricFilterEvents {
		t.Errorf("Chamada incorreta: %s %s", provider.LastCallType, provider.LastName)
	}
	if provider.LastValue != 1.0 {
		t.Errorf("Valor incorreto: %f", provider.LastValue)
	}

	want := []string{"filter_type:yaml", "filter_id:parse-message", "outcome:matched"}
	for i, tag := range want {
		if provider.LastTags[i] != tag {
			t.Errorf("Tag %d: esperado %s, recebido %s", i, tag, provider.LastTags[i])
		}
	}
}

func TestRecorder_EventDurationAndBatch(t *testing.T) {
	provider := &MockProvider{}
	rec := NewRecorder(provider, zerolog.Nop())

	rec.EventDuration(1500 * time.Microsecond)
	if provider.LastCallType != "histogram" || provider.LastValue != 1.5 {
		t.Errorf("Histograma incorreto: %s %f", provider.LastCallType, provider.LastValue)
	}

	rec.BatchSize(7)
	if provider.LastCallType != "gauge" || provider.LastValue != 7 {
		t.Errorf("Gauge incorreto: %s %f", provider.LastCallType, provider.LastValue)
	}
}

func TestRecorder_ProviderErrorIsSwallowed(t *testing.T) {
	provider := &MockProvider{Err: errors.New("statsd fora")}
	rec := NewRecorder(provider, zerolog.Nop())

	// Não deve entrar em pânico nem propagar
	rec.OutputFailure("redis")
	if provider.LastTags[0] != "output:redis" {
		t.Errorf("Tag incorreta: %v", provider.LastTags)
	}
}
