package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/raywall/fast-yaml-filter/pkg/filter"
	"github.com/raywall/fast-yaml-filter/pkg/metrics"
	"github.com/raywall/fast-yaml-filter/pkg/yamlfilter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingProvider() *countingProvider {
	return &countingProvider{counts: make(map[string]int)}
}

func (c *countingProvider) Count(name string, _ float64, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[fmt.Sprintf("%s%v", name, tags)]++
	return nil
}
func (c *countingProvider) Gauge(string, float64, []string) error     { return nil }
func (c *countingProvider) Histogram(string, float64, []string) error { return nil }

func yamlConf(id string, cfg map[string]interface{}) config.FilterConf {
	return config.FilterConf{Type: yamlfilter.TypeName, ID: id, Config: cfg}
}

func newPipeline(t *testing.T, workers int, filters ...config.FilterConf) (*Pipeline, *countingProvider) {
	t.Helper()
	RegisterDefaults()
	prov := newCountingProvider()
	cfg := &config.PipelineConfig{
		Version: "1.0",
		Service: config.ServiceDetails{Name: "test", Runtime: config.RuntimeStdin, Workers: workers},
		Filters: filters,
	}
	p, err := New(cfg, Deps{Logger: zerolog.Nop(), Metrics: prov})
	require.NoError(t, err)
	return p, prov
}

func TestRegistry(t *testing.T) {
	RegisterDefaults()
	assert.Contains(t, ListFilterTypes(), yamlfilter.TypeName)

	_, err := GetFilterFactory("inexistente")
	assert.Error(t, err)

	RegisterFilterType("noop-test", func(spec filter.Spec) (filter.Filter, error) {
		return nil, fmt.Errorf("nao construido")
	})
	_, err = NewFilter(filter.Spec{Conf: config.FilterConf{Type: "noop-test"}})
	assert.EqualError(t, err, "nao construido")
}

func TestNew_Errors(t *testing.T) {
	RegisterDefaults()

	_, err := New(nil, Deps{})
	assert.Error(t, err)

	cfg := &config.PipelineConfig{Filters: []config.FilterConf{{Type: "desconhecido", ID: "x"}}}
	_, err = New(cfg, Deps{Logger: zerolog.Nop()})
	assert.ErrorContains(t, err, "desconhecido")

	cfg = &config.PipelineConfig{Filters: []config.FilterConf{yamlConf("sem-source", map[string]interface{}{})}}
	_, err = New(cfg, Deps{Logger: zerolog.Nop()})
	assert.ErrorContains(t, err, "sem-source")

	cfg = &config.PipelineConfig{Filters: []config.FilterConf{{Type: yamlfilter.TypeName, ID: "cond", Condition: "event.(", Config: map[string]interface{}{"source": "m"}}}}
	_, err = New(cfg, Deps{Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestPipeline_ProcessChain(t *testing.T) {
	first := yamlConf("parse-message", map[string]interface{}{"source": "message", "target": "doc"})
	first.AddTag = []string{"doc_ok"}
	second := yamlConf("parse-inner", map[string]interface{}{"source": "[doc][inner]"})
	second.Tags = []string{"doc_ok"}

	p, prov := newPipeline(t, 1, first, second)
	require.Len(t, p.Filters(), 2)

	ev := event.New(map[string]interface{}{"message": "inner: \"x: 1\""})
	p.Process(context.Background(), ev)

	v, _ := ev.Get("x")
	assert.Equal(t, 1, v)
	assert.True(t, ev.HasTag("doc_ok"))
	assert.Equal(t, 1, prov.counts[fmt.Sprintf("%s%v", metrics.MetricFilterEvents, []string{"filter_type:yaml", "filter_id:parse-message", "outcome:matched"})])
	assert.Equal(t, 1, prov.counts[fmt.Sprintf("%s%v", metrics.MetricFilterEvents, []string{"filter_type:yaml", "filter_id:parse-inner", "outcome:matched"})])
}

func TestPipeline_FailureDoesNotStopChain(t *testing.T) {
	first := yamlConf("quebra", map[string]interface{}{"source": "message"})
	second := yamlConf("segue", map[string]interface{}{"source": "other", "target": "o"})
	p, prov := newPipeline(t, 1, first, second)

	ev := event.New(map[string]interface{}{"message": "'", "other": "k: v"})
	p.Process(context.Background(), ev)

	assert.True(t, ev.HasTag(yamlfilter.ParseFailureTag))
	v, _ := ev.Get("[o][k]")
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, prov.counts[fmt.Sprintf("%s%v", metrics.MetricFilterEvents, []string{"filter_type:yaml", "filter_id:quebra", "outcome:failed"})])
}

func TestPipeline_ProcessBatchKeepsOrder(t *testing.T) {
	p, _ := newPipeline(t, 4, yamlConf("parse", map[string]interface{}{"source": "message"}))

	events := make([]*event.Event, 50)
	for i := range events {
		events[i] = event.New(map[string]interface{}{"message": fmt.Sprintf("n: %d", i)})
	}

	out, err := p.ProcessBatch(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, out, 50)
	for i, ev := range out {
		v, _ := ev.Get("n")
		assert.Equal(t, i, v)
	}
}

func TestPipeline_ProcessBatchCancelled(t *testing.T) {
	p, _ := newPipeline(t, 2, yamlConf("parse", map[string]interface{}{"source": "message"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []*event.Event{event.New(map[string]interface{}{"message": "a: 1"})}
	_, err := p.ProcessBatch(ctx, events)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Execute(t *testing.T) {
	p, _ := newPipeline(t, 2, yamlConf("parse", map[string]interface{}{"source": "message", "target": "doc"}))

	tests := []struct {
		name     string
		payload  string
		wantCode int
		check    func(t *testing.T, body []byte)
	}{
		{
			name:     "objeto",
			payload:  `{"message": "a: 1"}`,
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var out map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &out))
				assert.Equal(t, map[string]interface{}{"a": float64(1)}, out["doc"])
				assert.Contains(t, out, "@timestamp")
			},
		},
		{
			name:     "lista",
			payload:  `[{"message": "a: 1"}, {"message": "'"}]`,
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var out []map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &out))
				require.Len(t, out, 2)
				assert.Equal(t, []interface{}{yamlfilter.ParseFailureTag}, out[1]["tags"])
			},
		},
		{name: "json inválido", payload: `{`, wantCode: http.StatusBadRequest},
		{name: "corpo vazio", payload: ``, wantCode: http.StatusBadRequest},
		{name: "item não objeto", payload: `[1]`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, _, err := p.Execute(context.Background(), []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}
