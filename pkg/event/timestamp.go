package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimestampParse é retornado quando um valor não pode ser convertido em timestamp.
var ErrTimestampParse = errors.New("timestamp não reconhecido")

// TimestampLayout é o formato usado na serialização do @timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Variações ISO8601 aceitas, da mais comum para a menos comum.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

// CoerceTimestamp converte v em um instante UTC. Aceita time.Time e strings
// ISO8601; layouts sem fuso são interpretados como UTC.
func CoerceTimestamp(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			break
		}
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampParse, t)
	}
	return time.Time{}, fmt.Errorf("%w: tipo %T", ErrTimestampParse, v)
}

// FormatTimestamp serializa t no formato canônico com milissegundos.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
