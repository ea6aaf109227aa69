package metrics

import (
	"time"

	"github.com/rs/zerolog"
)

// Recorder traduz acontecimentos do pipeline em métricas. Falhas no envio
// nunca interrompem o processamento; são apenas logadas em debug.
type Recorder struct {
	provider Provider
	logger   zerolog.Logger
}

// NewRecorder cria um Recorder sobre provider.
func NewRecorder(provider Provider, logger zerolog.Logger) *Recorder {
	return &Recorder{
		provider: provider,
		logger:   logger.With().Str("component", "metrics").Logger(),
	}
}

// FilterOutcome contabiliza o resultado de um filtro para um evento.
func (r *Recorder) FilterOutcome(filterType, filterID, outcome string) {
	tags := []string{"filter_type:" + filterType, "filter_id:" + filterID, "outcome:" + outcome}
	r.check(r.provider.Count(MetricFilterEvents, 1, tags), MetricFilterEvents)
}

// EventDuration registra o tempo total da cadeia de filtros para um evento.
func (r *Recorder) EventDuration(d time.Duration) {
	r.check(r.provider.Histogram(MetricEventDuration, float64(d.Microseconds())/1000, nil), MetricEventDuration)
}

// BatchSize registra o tamanho de um lote processado.
func (r *Recorder) BatchSize(n int) {
	r.check(r.provider.Gauge(MetricBatchSize, float64(n), nil), MetricBatchSize)
}

// OutputFailure contabiliza falhas de escrita na saída.
func (r *Recorder) OutputFailure(output string) {
	r.check(r.provider.Count(MetricOutputFailures, 1, []string{"output:" + output}), MetricOutputFailures)
}

func (r *Recorder) check(err error, name string) {
	if err != nil {
		r.logger.Debug().Err(err).Str("metric", name).Msg("falha ao enviar métrica")
	}
}
