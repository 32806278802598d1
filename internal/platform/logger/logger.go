package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
)

// RequestIDHeader é o header usado para propagar o id da requisição
const RequestIDHeader = "X-Request-ID"

// New cria o logger raiz do serviço e o registra como logger padrão de contexto
func New(cfg config.Log, service string) zerolog.Logger {
	return newWithWriter(cfg, service, os.Stdout)
}

func newWithWriter(cfg config.Log, service string, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	log := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	zerolog.DefaultContextLogger = &log
	return log
}

// Middleware injeta no contexto da requisição um logger com request id e trace id
// e registra uma linha por requisição
func Middleware(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		fields := base.With().
			Str("requestId", requestID).
			Str("method", c.Request.Method).
			Str("path", c.FullPath())
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			fields = fields.Str("traceId", sc.TraceID().String())
		}
		log := fields.Logger()

		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}
