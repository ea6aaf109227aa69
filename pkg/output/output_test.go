package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/event"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockSQSSender struct {
	mock.Mock
}

func (m *MockSQSSender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	args := m.Called(ctx, key, values)
	cmd := redis.NewIntCmd(ctx)
	if err := args.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func (m *MockRedis) Close() error {
	return m.Called().Error(0)
}

// --- Tests ---

func TestStream_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewStream(&buf)

	require.NoError(t, w.Write(context.Background(), event.New(map[string]interface{}{"a": "1"})))
	require.NoError(t, w.Write(context.Background(), event.New(map[string]interface{}{"b": "2"})))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "1", first["a"])
	assert.Contains(t, first, event.TimestampField)
	assert.Equal(t, config.OutputStdout, w.Name())
}

func TestSQS_Write(t *testing.T) {
	client := new(MockSQSSender)
	client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return *in.QueueUrl == "https://sqs.local/out" && strings.Contains(*in.MessageBody, `"a":"1"`)
	})).Return(&sqs.SendMessageOutput{}, nil).Once()

	w := NewSQS(client, "https://sqs.local/out")
	require.NoError(t, w.Write(context.Background(), event.New(map[string]interface{}{"a": "1"})))
	client.AssertExpectations(t)
}

func TestSQS_WriteError(t *testing.T) {
	client := new(MockSQSSender)
	client.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	w := NewSQS(client, "https://sqs.local/out")
	err := w.Write(context.Background(), event.New(nil))
	assert.ErrorContains(t, err, "throttled")
}

func TestRedis_Write(t *testing.T) {
	client := new(MockRedis)
	client.On("RPush", mock.Anything, "events", mock.Anything).Return(nil).Once()
	client.On("Close").Return(nil)

	w := NewRedis(client, "events")
	require.NoError(t, w.Write(context.Background(), event.New(map[string]interface{}{"a": "1"})))
	require.NoError(t, w.Close())
	client.AssertExpectations(t)
}

func TestRedis_WriteError(t *testing.T) {
	client := new(MockRedis)
	client.On("RPush", mock.Anything, "events", mock.Anything).Return(errors.New("conn refused"))

	w := NewRedis(client, "events")
	err := w.Write(context.Background(), event.New(nil))
	assert.ErrorContains(t, err, "conn refused")
	assert.ErrorContains(t, err, "events")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	w, err := New(context.Background(), config.OutputConf{}, &buf)
	require.NoError(t, err)
	assert.IsType(t, &Stream{}, w)

	w, err = New(context.Background(), config.OutputConf{Type: config.OutputRedis, Redis: config.RedisOutputConf{Addr: "localhost:6379", Key: "k"}}, &buf)
	require.NoError(t, err)
	assert.Equal(t, config.OutputRedis, w.Name())
	_ = w.Close()

	_, err = New(context.Background(), config.OutputConf{Type: "kafka"}, &buf)
	assert.Error(t, err)
}
