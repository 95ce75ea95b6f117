package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
)

type traceKey string

const traceIdKey traceKey = "traceId"

type Logging struct {
	logger *zap.SugaredLogger
}

func NewLoggingMiddleware(l *zap.SugaredLogger) *Logging {
	return &Logging{
		logger: l,
	}
}

// SetupTracing assigns every request a random trace id, exposed both in
// the context and in the x-trace-id response header.
func (lm *Logging) SetupTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceId := common.RandStringRunes(8)
		ctx := context.WithValue(r.Context(), traceIdKey, traceId)
		w.Header().Set("x-trace-id", traceId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetupLogging puts a request-scoped logger into the context so handlers
// can use logger.Log(ctx) and get the trace id for free.
func (lm *Logging) SetupLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := lm.logger
		if traceId, ok := r.Context().Value(traceIdKey).(string); ok {
			l = l.With("trace_id", traceId)
		}
		ctx := logger.ToContext(r.Context(), l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (lm *Logging) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log(r.Context()).Infow("request handled",
			"method", r.Method,
			"url", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"took", time.Since(start),
		)
	})
}
