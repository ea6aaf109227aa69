package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *Event {
	return New(map[string]interface{}{
		"mensagem": "ola",
		"dados": map[string]interface{}{
			"empregador": "acme",
			"a.b":        "literal",
		},
		"cursos": []interface{}{
			map[string]interface{}{"nome": "go"},
			map[string]interface{}{"nome": "yaml"},
		},
	})
}

func TestEvent_Get(t *testing.T) {
	ev := sampleEvent()

	tests := []struct {
		name   string
		path   string
		want   interface{}
		exists bool
	}{
		{"campo direto", "mensagem", "ola", true},
		{"ponto aninhado", "dados.empregador", "acme", true},
		{"colchetes", "[dados][empregador]", "acme", true},
		{"colchetes com ponto", "[dados][a.b]", "literal", true},
		{"indice de array", "cursos[1].nome", "yaml", true},
		{"indice com colchetes", "[cursos][0][nome]", "go", true},
		{"indice negativo", "cursos[-1].nome", "yaml", true},
		{"indice fora do limite", "cursos[5]", nil, false},
		{"campo ausente", "dados.inexistente", nil, false},
		{"atravessa escalar", "mensagem.x", nil, false},
		{"caminho vazio", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ev.Get(tt.path)
			assert.Equal(t, tt.exists, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvent_SetCreatesIntermediateMaps(t *testing.T) {
	ev := New(nil)

	require.NoError(t, ev.Set("a.b.c", 1))

	got, ok := ev.Get("[a][b][c]")
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestEvent_SetConflictLeavesEventUntouched(t *testing.T) {
	ev := sampleEvent()
	before := ev.Clone()

	err := ev.Set("mensagem.novo.campo", "x")

	assert.True(t, errors.Is(err, ErrPathConflict))
	assert.Equal(t, before, ev)
}

func TestEvent_SetArrayElement(t *testing.T) {
	ev := sampleEvent()

	require.NoError(t, ev.Set("cursos[0].nome", "rust"))
	got, _ := ev.Get("cursos[0].nome")
	assert.Equal(t, "rust", got)

	err := ev.Set("cursos[9].nome", "x")
	assert.ErrorIs(t, err, ErrPathConflict)
}

func TestEvent_SetRootKeepsDotsLiteral(t *testing.T) {
	ev := New(nil)
	ev.SetRoot("a.b", "v")

	assert.Equal(t, []string{"a.b"}, ev.Keys())
	assert.False(t, ev.Includes("a"))
	assert.True(t, ev.Includes("[a.b]"))
}

func TestEvent_Remove(t *testing.T) {
	ev := sampleEvent()

	v, ok := ev.Remove("dados.empregador")
	assert.True(t, ok)
	assert.Equal(t, "acme", v)
	assert.False(t, ev.Includes("dados.empregador"))

	_, ok = ev.Remove("nao.existe")
	assert.False(t, ok)
}

func TestEvent_TimestampField(t *testing.T) {
	ev := New(map[string]interface{}{"@timestamp": "2013-10-19T00:14:32.996Z"})

	want := time.Date(2013, 10, 19, 0, 14, 32, 996000000, time.UTC)
	assert.Equal(t, want, ev.Timestamp())
	assert.False(t, ev.Includes("tags"))

	got, ok := ev.Get("@timestamp")
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, ev.Set("@timestamp", "2020-01-02T03:04:05Z"))
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), ev.Timestamp())

	assert.ErrorIs(t, ev.Set("@timestamp", "ontem"), ErrTimestampParse)
}

func TestEvent_InvalidTimestampOnCreation(t *testing.T) {
	ev := New(map[string]interface{}{"@timestamp": "ontem"})

	assert.True(t, ev.HasTag(TimestampFailureTag))
	raw, _ := ev.Get(TimestampFailureField)
	assert.Equal(t, "ontem", raw)
	assert.WithinDuration(t, time.Now(), ev.Timestamp(), 5*time.Second)
}

func TestEvent_Tags(t *testing.T) {
	ev := New(map[string]interface{}{"tags": "existente"})

	ev.Tag("nova")
	ev.Tag("nova")
	assert.Equal(t, []string{"existente", "nova"}, ev.Tags())

	ev.Untag("existente")
	assert.Equal(t, []string{"nova"}, ev.Tags())
	assert.True(t, ev.HasTag("nova"))

	odd := New(map[string]interface{}{"tags": map[string]interface{}{"x": 1}})
	odd.Tag("a")
	assert.Equal(t, []string{"a"}, odd.Tags())
	assert.True(t, odd.Includes("_tags.x"))
}

func TestEvent_Sprintf(t *testing.T) {
	ev := sampleEvent()
	ev.SetTimestamp(time.Date(2013, 10, 19, 0, 14, 32, 996000000, time.UTC))

	assert.Equal(t, "ola de acme", ev.Sprintf("%{mensagem} de %{dados.empregador}"))
	assert.Equal(t, "2013-10-19T00:14:32.996Z", ev.Sprintf("%{@timestamp}"))
	assert.Equal(t, "%{ausente}", ev.Sprintf("%{ausente}"))
	assert.Equal(t, "sem referencia", ev.Sprintf("sem referencia"))
}

func TestEvent_CloneIsDeep(t *testing.T) {
	ev := sampleEvent()
	cp := ev.Clone()

	require.NoError(t, cp.Set("dados.empregador", "outra"))
	got, _ := ev.Get("dados.empregador")
	assert.Equal(t, "acme", got)
}
