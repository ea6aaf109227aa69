package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/fast-yaml-filter/pkg/pipeline"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type ctxKey string

// ContextKeyCorrID guarda o correlation id no contexto da requisição.
const ContextKeyCorrID ctxKey = "correlation_id"

// Executor processa um corpo JSON (objeto ou lista) e devolve a resposta.
type Executor interface {
	Execute(ctx context.Context, payload []byte) (int, []byte, map[string]string, error)
}

// StartHTTPServer sobe o servidor do runtime local (bloqueante).
func StartHTTPServer(p *pipeline.Pipeline) error {
	svc := p.Config.Service
	router := NewRouter(p, svc.Route, svc.GetTimeout(), p.Logger)

	addr := fmt.Sprintf(":%d", svc.Port)
	p.Logger.Info().Msgf("Servidor HTTP ouvindo em %s", addr)

	return http.ListenAndServe(addr, router)
}

// NewRouter registra POST {route} e GET /health com o middleware de
// observabilidade.
func NewRouter(exec Executor, route string, timeout time.Duration, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(ObservabilityMiddleware(logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	logger.Info().Msgf("Registrando rota de eventos em %s", route)
	r.HandleFunc(route, createEventsHandler(exec, timeout)).Methods(http.MethodPost)

	return r
}

func createEventsHandler(exec Executor, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, `{"error": "could not read body"}`, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		code, resp, headers, err := exec.Execute(ctx, body)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Erro crítico na execução HTTP")
			http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(code)
		w.Write(resp)
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", time.Since(rw.startTime).Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga ou gera o x-correlation-id, injeta um
// logger contextual e registra a latência de cada requisição.
func ObservabilityMiddleware(base zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			logger := base.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		})
	}
}
