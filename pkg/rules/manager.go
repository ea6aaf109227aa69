package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Variáveis disponíveis nas expressões.
const (
	VarEvent = "event"
	VarEnv   = "env"
)

// RuleManager gerencia a compilação e avaliação de expressões CEL.
type RuleManager struct {
	env *cel.Env
}

// NewRuleManager inicializa o ambiente CEL com as variáveis padrão esperadas.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarEvent, cel.DynType), // Campos do evento, incluindo @timestamp e tags
		cel.Variable(VarEnv, cel.DynType),   // Variáveis de ambiente
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env}, nil
}

// Condition é uma expressão booleana compilada, pronta para uso concorrente.
type Condition struct {
	expr string
	prg  cel.Program
}

// Compile valida e compila a expressão uma única vez (boot time).
func (rm *RuleManager) Compile(expr string) (*Condition, error) {
	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro compilação CEL '%s': %w", expr, issues.Err())
	}

	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro programa CEL: %w", err)
	}
	return &Condition{expr: expr, prg: prg}, nil
}

// Expr retorna a expressão original.
func (c *Condition) Expr() string {
	return c.expr
}

// Evaluate executa a condição; o resultado precisa ser booleano.
func (c *Condition) Evaluate(vars map[string]interface{}) (bool, error) {
	out, _, err := c.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("erro execução CEL '%s': %w", c.expr, err)
	}

	if val, ok := out.Value().(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado de '%s' não é booleano: %T", c.expr, out.Value())
}

// EvaluateBool compila e avalia expression em uma única chamada.
// Expressão vazia aprova.
func (rm *RuleManager) EvaluateBool(expression string, vars map[string]interface{}) (bool, error) {
	if expression == "" {
		return true, nil
	}

	cond, err := rm.Compile(expression)
	if err != nil {
		return false, err
	}
	return cond.Evaluate(vars)
}
