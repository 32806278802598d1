package idempotency

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/matheusmosca/sales-orders/internal/platform/auth"
	"github.com/matheusmosca/sales-orders/internal/platform/httpx"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

const (
	Header       = "Idempotency-Key"
	ReplayHeader = "Idempotent-Replay"
	maxKeyLength = 255
)

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware reaproveita a primeira resposta (status < 500) de uma chave por 24h.
// Uma requisição duplicada enquanto a primeira ainda está em andamento recebe 409.
// Se o store estiver indisponível a requisição segue sem idempotência.
func Middleware(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(Header))
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > maxKeyLength {
			httpx.WriteError(c, sales.Validation("Idempotency-Key is too long", map[string]any{"maxLength": maxKeyLength}))
			return
		}

		ctx := c.Request.Context()
		log := zerolog.Ctx(ctx)
		key := scopedKey(c, raw)

		existing, started, err := store.Begin(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("idempotencyKey", raw).Msg("⚠️ idempotência indisponível; seguindo sem replay")
			c.Next()
			return
		}
		if !started {
			if existing.State == StatePending {
				httpx.WriteError(c, sales.Conflict("a request with this Idempotency-Key is still in progress",
					map[string]any{"idempotencyKey": raw}))
				return
			}
			log.Info().Str("idempotencyKey", raw).Int("status", existing.Status).Msg("ℹ️ resposta idempotente reaproveitada")
			c.Header(ReplayHeader, "true")
			c.Data(existing.Status, existing.ContentType, existing.Body)
			c.Abort()
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		// a resposta já foi enviada: o registro não depende do cliente continuar conectado
		sctx := context.WithoutCancel(ctx)
		status := writer.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(sctx, key); err != nil {
				log.Warn().Err(err).Str("idempotencyKey", raw).Msg("⚠️ falha ao liberar chave de idempotência")
			}
			return
		}

		record := Record{State: StateDone, Status: status, ContentType: writer.Header().Get("Content-Type"), Body: writer.body.Bytes()}
		if err := store.Complete(sctx, key, record); err != nil {
			log.Warn().Err(err).Str("idempotencyKey", raw).Msg("⚠️ falha ao gravar resposta idempotente")
		}
	}
}

func scopedKey(c *gin.Context, raw string) string {
	owner := "anonymous"
	if actor, ok := auth.ActorFrom(c); ok {
		owner = strconv.FormatInt(actor.SellerID, 10)
	}
	return "idem:" + owner + ":" + c.FullPath() + ":" + raw
}

// Noop desabilita a idempotência quando o Redis não está configurado
func Noop(c *gin.Context) {
	c.Next()
}
