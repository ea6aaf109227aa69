package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo pipeline.
const (
	MetricFilterEvents   = "filter.events"
	MetricEventDuration  = "pipeline.event.duration_ms"
	MetricBatchSize      = "pipeline.batch.size"
	MetricOutputFailures = "output.failures"
)
