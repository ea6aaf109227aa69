package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LambdaHandler adapta eventos do API Gateway para o pipeline.
type LambdaHandler struct {
	exec    Executor
	timeout time.Duration
	logger  zerolog.Logger
}

// NewLambdaHandler cria uma nova instância do adaptador.
func NewLambdaHandler(exec Executor, timeout time.Duration, logger zerolog.Logger) *LambdaHandler {
	return &LambdaHandler{exec: exec, timeout: timeout, logger: logger}
}

// Handle processa a requisição Lambda com a mesma semântica do POST HTTP.
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	// O API Gateway pode ou não normalizar o case dos headers
	corrID := req.Headers[HeaderCorrelationID]
	if corrID == "" {
		corrID = req.Headers["X-Correlation-Id"]
	}
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := h.logger.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)
	ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

	response := h.handleEvents(ctx, req)

	logger.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", response.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	if response.Headers == nil {
		response.Headers = make(map[string]string)
	}
	response.Headers[HeaderCorrelationID] = corrID

	return response, nil
}

func (h *LambdaHandler) handleEvents(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusBadRequest,
				Body:       `{"error": "invalid base64 body"}`,
			}
		}
		body = decoded
	}

	code, resp, headers, err := h.exec.Execute(ctx, body)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Erro crítico na execução Lambda")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}
	}

	respHeaders := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		respHeaders[k] = v
	}

	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    respHeaders,
		Body:       string(resp),
	}
}
