package yamlfilter

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode indica YAML malformado ou falha interna do decodificador.
	ErrDecode = errors.New("yaml inválido")
	// ErrSourceNotString indica que o campo de origem não contém texto.
	ErrSourceNotString = errors.New("campo de origem não é string")
	// ErrRootNotMapping indica payload não-objeto sem target configurado.
	ErrRootNotMapping = errors.New("payload não-objeto exige a opção target")
	// ErrTargetConflict indica que o caminho do target não pode ser gravado.
	ErrTargetConflict = errors.New("não foi possível gravar o target")
	// ErrMissingSource indica configuração sem a opção source.
	ErrMissingSource = errors.New("a opção source é obrigatória")
)

// DecodeError descreve uma falha ao interpretar o campo de origem de um evento.
type DecodeError struct {
	Source string
	Raw    interface{}
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("yamlfilter: falha no campo '%s': %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
