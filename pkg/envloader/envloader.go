// Package envloader preenche structs de bootstrap a partir de variáveis de
// ambiente, usando as tags `env:"NOME[,required]"` e `envDefault`.
package envloader

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load preenche target, que deve ser um ponteiro para struct.
func Load(target interface{}) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return &InvalidTargetError{Type: reflect.TypeOf(target)}
	}
	return loadStruct(val.Elem())
}

func loadStruct(val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		sf := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		tag, hasTag := sf.Tag.Lookup("env")
		if !hasTag && field.Kind() == reflect.Struct {
			if err := loadStruct(field); err != nil {
				return err
			}
			continue
		}
		if tag == "" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			raw = sf.Tag.Get("envDefault")
		}
		if raw == "" {
			if opts == "required" {
				return &MissingError{EnvVar: name}
			}
			continue
		}

		if err := setField(field, raw); err != nil {
			return &FieldError{FieldName: sf.Name, EnvVar: name, Value: raw, Err: err}
		}
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return &UnsupportedTypeError{Type: field.Type()}
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return &UnsupportedTypeError{Type: field.Type()}
	}
	return nil
}
