package observability

import (
	"testing"

	"github.com/raywall/fast-yaml-filter/pkg/config"
)

func TestSetupMetrics(t *testing.T) {
	t.Run("Disabled returns Noop", func(t *testing.T) {
		cfg := config.MetricsConf{
			Datadog: config.DatadogConf{Enabled: false},
		}

		provider, err := SetupMetrics(cfg, "yaml-enricher")
		if err != nil {
			t.Fatalf("Erro setup: %v", err)
		}

		if _, ok := provider.(*NoopProvider); !ok {
			t.Errorf("Esperado NoopProvider, recebido %T", provider)
		}
		if err := provider.Count("x", 1, nil); err != nil {
			t.Errorf("Noop não deveria falhar: %v", err)
		}
	})

	t.Run("Enabled returns Datadog", func(t *testing.T) {
		cfg := config.MetricsConf{
			Datadog: config.DatadogConf{
				Enabled:   true,
				Addr:      "localhost:8125",
				Namespace: "yaml.",
			},
		}

		provider, err := SetupMetrics(cfg, "yaml-enricher")
		if err != nil {
			// statsd.New pode falhar se o endereço for inválido, mas localhost costuma passar na criação do struct
			t.Fatalf("Erro setup: %v", err)
		}
		defer provider.Close()

		if _, ok := provider.(*DatadogProvider); !ok {
			t.Errorf("Esperado DatadogProvider, recebido %T", provider)
		}
	})
}
