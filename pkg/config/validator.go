package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *PipelineConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.Struct(cfg); err != nil {
		return fmt.Errorf("erros de validação estrutural:\n- %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

// Struct valida qualquer struct com tags `validate`. Também é usado para as
// configurações específicas de cada filtro.
func (cv *ConfigValidator) Struct(s interface{}) error {
	err := cv.validate.Struct(s)
	if err == nil {
		return nil
	}
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMsgs []string
		for _, e := range validationErrors {
			errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(errMsgs, "\n- "))
	}
	return err
}

func (cv *ConfigValidator) validateSemantics(cfg *PipelineConfig) error {
	// 1. Unicidade de IDs de filtro
	seenIDs := make(map[string]bool)
	for _, f := range cfg.Filters {
		if seenIDs[f.ID] {
			return fmt.Errorf("filter ID duplicado detectado: '%s'", f.ID)
		}
		seenIDs[f.ID] = true
	}

	// 2. Requisitos por runtime
	switch cfg.Service.Runtime {
	case RuntimeLocal, RuntimeLambda:
		if cfg.Service.Route == "" {
			return fmt.Errorf("runtime '%s' exige 'service.route'", cfg.Service.Runtime)
		}
	case RuntimeSQS:
		if cfg.Input.SQS.QueueURL == "" {
			return fmt.Errorf("runtime 'sqs' exige 'input.sqs.queue_url'")
		}
	}

	// 3. Requisitos por saída
	switch cfg.Output.GetType() {
	case OutputSQS:
		if cfg.Output.SQS.QueueURL == "" {
			return fmt.Errorf("saída 'sqs' exige 'output.sqs.queue_url'")
		}
	case OutputRedis:
		if cfg.Output.Redis.Addr == "" || cfg.Output.Redis.Key == "" {
			return fmt.Errorf("saída 'redis' exige 'output.redis.addr' e 'output.redis.key'")
		}
	}

	return nil
}
