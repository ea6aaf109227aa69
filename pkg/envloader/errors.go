package envloader

import (
	"fmt"
	"reflect"
)

// InvalidTargetError indica que Load não recebeu um ponteiro para struct.
type InvalidTargetError struct {
	Type reflect.Type
}

func (e *InvalidTargetError) Error() string {
	if e.Type == nil {
		return "envloader: destino nulo"
	}
	return fmt.Sprintf("envloader: destino deve ser ponteiro para struct, recebido %s", e.Type)
}

// MissingError indica uma variável obrigatória ausente.
type MissingError struct {
	EnvVar string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("envloader: variável %s não definida", e.EnvVar)
}

// FieldError indica falha de conversão do valor de uma variável.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: campo %s (%s=%s): %v", e.FieldName, e.EnvVar, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError indica um tipo de campo sem conversão.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: tipo não suportado %s", e.Type)
}
