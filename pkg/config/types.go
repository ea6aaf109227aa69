package config

import "time"

// Runtimes suportados pelo binário.
const (
	RuntimeStdin  = "stdin"
	RuntimeLocal  = "local"
	RuntimeLambda = "lambda"
	RuntimeSQS    = "sqs"
)

// Tipos de saída suportados.
const (
	OutputStdout = "stdout"
	OutputSQS    = "sqs"
	OutputRedis  = "redis"
)

// PipelineConfig representa a estrutura raiz do arquivo YAML do pipeline.
type PipelineConfig struct {
	Version string         `yaml:"version" validate:"required"`
	Service ServiceDetails `yaml:"service" validate:"required"`
	Input   InputConf      `yaml:"input"`
	Output  OutputConf     `yaml:"output"`
	Filters []FilterConf   `yaml:"filters" validate:"required,min=1,dive"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" validate:"required,oneof=stdin local lambda sqs"`
	Port    int         `yaml:"port" validate:"required_if=Runtime local"` // Obrigatório apenas se local
	Route   string      `yaml:"route" validate:"omitempty,startswith=/"`
	Timeout string      `yaml:"timeout"` // Ex: "500ms", "2s"
	Workers int         `yaml:"workers" validate:"gte=0,lte=256"`
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// InputConf descreve a origem dos eventos para o runtime sqs.
type InputConf struct {
	SQS SQSInputConf `yaml:"sqs"`
}

type SQSInputConf struct {
	QueueURL    string `yaml:"queue_url" validate:"omitempty,url"`
	WaitSeconds int32  `yaml:"wait_seconds" validate:"gte=0,lte=20"`
	MaxMessages int32  `yaml:"max_messages" validate:"gte=0,lte=10"`
}

// OutputConf define para onde os eventos processados são enviados.
type OutputConf struct {
	Type  string          `yaml:"type" validate:"omitempty,oneof=stdout sqs redis"`
	SQS   SQSOutputConf   `yaml:"sqs"`
	Redis RedisOutputConf `yaml:"redis"`
}

type SQSOutputConf struct {
	QueueURL string `yaml:"queue_url" validate:"omitempty,url"`
}

type RedisOutputConf struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// FilterConf declara um filtro da cadeia. Config é decodificado na struct
// específica do tipo do filtro.
type FilterConf struct {
	Type        string                 `yaml:"type" validate:"required"`
	ID          string                 `yaml:"id" validate:"required"`
	Condition   string                 `yaml:"condition"`
	Tags        []string               `yaml:"tags"`
	AddTag      []string               `yaml:"add_tag"`
	RemoveTag   []string               `yaml:"remove_tag"`
	AddField    map[string]string      `yaml:"add_field"`
	RemoveField []string               `yaml:"remove_field"`
	Config      map[string]interface{} `yaml:"config"`
}

func (s ServiceDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWorkers retorna o tamanho do pool de workers (mínimo 1).
func (s ServiceDetails) GetWorkers() int {
	if s.Workers < 1 {
		return 1
	}
	return s.Workers
}

// GetType retorna o tipo da saída, stdout por padrão.
func (o OutputConf) GetType() string {
	if o.Type == "" {
		return OutputStdout
	}
	return o.Type
}
