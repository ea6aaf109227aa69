package event

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePath converte uma referência de campo em segmentos.
// Formatos aceitos:
//   - "mensagem"              -> campo direto
//   - "dados.empregador"      -> navega em objetos aninhados
//   - "cursos[1].nome"        -> índice de array seguido de campo
//   - "[dados][empregador]"   -> forma com colchetes
//   - "[a.b]"                 -> colchetes preservam pontos no nome
func parsePath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrInvalidPath
	}

	var segs []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			segs = append(segs, buf.String())
			buf.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i+1:], ']')
			if end == -1 {
				return nil, fmt.Errorf("%w: colchete sem fechamento em '%s'", ErrInvalidPath, path)
			}
			name := path[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("%w: segmento vazio em '%s'", ErrInvalidPath, path)
			}
			segs = append(segs, name)
			i += end + 1
		default:
			buf.WriteByte(c)
		}
	}
	flush()

	if len(segs) == 0 {
		return nil, ErrInvalidPath
	}
	return segs, nil
}

// index interpreta seg como posição dentro de s. Índices negativos contam a
// partir do fim.
func index(s []interface{}, seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	if i < 0 {
		i += len(s)
	}
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return i, true
}
