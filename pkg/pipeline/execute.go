package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/raywall/fast-yaml-filter/pkg/event"
)

// Execute processa um corpo de requisição contendo um objeto JSON ou uma
// lista de objetos e devolve os eventos processados no mesmo formato.
// Erros de entrada viram status 400; o erro retornado fica reservado a
// falhas internas.
func (p *Pipeline) Execute(ctx context.Context, payload []byte) (int, []byte, map[string]string, error) {
	events, isList, err := DecodeEvents(payload)
	if err != nil {
		p.Logger.Warn().Err(err).Msg("payload inválido")
		return http.StatusBadRequest, errorJSON(err.Error()), nil, nil
	}

	processed, err := p.ProcessBatch(ctx, events)
	if err != nil {
		return http.StatusGatewayTimeout, errorJSON("processing interrupted"), nil, nil
	}

	var body []byte
	if isList {
		body, err = json.Marshal(processed)
	} else {
		body, err = json.Marshal(processed[0])
	}
	if err != nil {
		return 0, nil, nil, fmt.Errorf("falha ao serializar eventos: %w", err)
	}
	return http.StatusOK, body, nil, nil
}

// DecodeEvents interpreta payload como um objeto ou uma lista de objetos.
// isList informa qual dos dois formatos foi recebido.
func DecodeEvents(payload []byte) (events []*event.Event, isList bool, err error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("corpo vazio")
	}

	if trimmed[0] != '[' {
		ev, err := event.FromJSON(trimmed)
		if err != nil {
			return nil, false, err
		}
		return []*event.Event{ev}, false, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, true, fmt.Errorf("erro ao fazer parse do JSON: %w", err)
	}
	events = make([]*event.Event, 0, len(items))
	for i, item := range items {
		ev, err := event.FromJSON(item)
		if err != nil {
			return nil, true, fmt.Errorf("item %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, true, nil
}

func errorJSON(msg string) []byte {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return b
}
