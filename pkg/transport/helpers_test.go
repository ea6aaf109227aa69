package transport

import (
	"context"
	"sync"
	"testing"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/metrics"
	"github.com/raywall/fast-yaml-filter/pkg/observability"
	"github.com/raywall/fast-yaml-filter/pkg/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	pipeline.RegisterDefaults()
	cfg := &config.PipelineConfig{
		Version: "1.0",
		Service: config.ServiceDetails{Name: "transport-test", Runtime: config.RuntimeLocal, Route: "/events", Timeout: "1s", Workers: 2},
		Filters: []config.FilterConf{{
			Type:   "yaml",
			ID:     "parse",
			Config: map[string]interface{}{"source": "message", "target": "doc"},
		}},
	}
	p, err := pipeline.New(cfg, pipeline.Deps{Logger: zerolog.Nop()})
	require.NoError(t, err)
	return p
}

func noopRecorder() *metrics.Recorder {
	return metrics.NewRecorder(&observability.NoopProvider{}, zerolog.Nop())
}

// memoryWriter guarda os eventos gravados e pode falhar sob demanda.
type memoryWriter struct {
	mu     sync.Mutex
	events []*event.Event
	fail   func(ev *event.Event) error
}

func (m *memoryWriter) Write(_ context.Context, ev *event.Event) error {
	if m.fail != nil {
		if err := m.fail(ev); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memoryWriter) Written() []*event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*event.Event(nil), m.events...)
}

func (m *memoryWriter) Name() string { return "memory" }
func (m *memoryWriter) Close() error { return nil }

func stringPtr(s string) *string {
	return &s
}
