package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ErrorResponse é o corpo padrão de erro
type ErrorResponse struct {
	Code    sales.ErrorKind `json:"code"`
	Message string          `json:"message"`
	Details map[string]any  `json:"details,omitempty"`
}

// StatusFor mapeia o tipo de erro para o status HTTP
func StatusFor(kind sales.ErrorKind) int {
	switch kind {
	case sales.KindValidation, sales.KindOrderNotEditable, sales.KindInvalidTransition:
		return http.StatusBadRequest
	case sales.KindUnauthorized:
		return http.StatusUnauthorized
	case sales.KindForbidden:
		return http.StatusForbidden
	case sales.KindNotFound, sales.KindProductNotFound:
		return http.StatusNotFound
	case sales.KindReservationConflict, sales.KindConflict, sales.KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError escreve err no formato ErrorResponse e aborta a cadeia de handlers
func WriteError(c *gin.Context, err error) {
	e := sales.AsError(err)
	status := StatusFor(e.Kind)

	_ = c.Error(err)
	log := zerolog.Ctx(c.Request.Context())
	switch {
	case e.Kind == sales.KindCompensationFailed:
		log.Error().Err(err).Bool("manual_reconciliation", true).Interface("details", e.Details).
			Msg("❌ stock inconsistent after failed compensation")
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Msg("❌ request failed")
	}

	message := e.Message
	if e.Kind == sales.KindPersistence && e.Message == "" {
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: e.Kind, Message: message, Details: e.Details})
}

// BindJSON faz o bind do corpo e converte falhas em VALIDATION_ERROR
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if se := sales.AsError(err); se.Kind != sales.KindPersistence {
			WriteError(c, se)
			return false
		}
		WriteError(c, sales.Validation("invalid request body", map[string]any{"error": err.Error()}))
		return false
	}
	return true
}
