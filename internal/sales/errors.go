package sales

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind é o discriminante estável exposto nas respostas de erro
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION_ERROR"
	KindProductNotFound     ErrorKind = "PRODUCT_NOT_FOUND"
	KindInsufficientStock   ErrorKind = "INSUFFICIENT_STOCK"
	KindReservationConflict ErrorKind = "RESERVATION_CONFLICT"
	KindOrderNotEditable    ErrorKind = "ORDER_NOT_EDITABLE"
	KindCompensationFailed  ErrorKind = "COMPENSATION_FAILED"
	KindPersistence         ErrorKind = "PERSISTENCE_ERROR"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidTransition   ErrorKind = "INVALID_STATUS_TRANSITION"
	KindConflict            ErrorKind = "CONFLICT"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindForbidden           ErrorKind = "FORBIDDEN"
)

// Error carrega o tipo do erro, uma mensagem para o usuário e detalhes estruturados
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf retorna o discriminante de err, ou "" quando err não é um *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind verifica se err (ou algum erro encadeado) é do tipo informado
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// AsError extrai o *Error da cadeia; erros desconhecidos viram PERSISTENCE_ERROR
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindPersistence, Message: "internal persistence error", Cause: err}
}

func Validation(message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func ProductNotFound(productID int64) *Error {
	return &Error{
		Kind:    KindProductNotFound,
		Message: fmt.Sprintf("product %d not found", productID),
		Details: map[string]any{"productId": productID},
	}
}

func InsufficientStock(productID int64, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for product %d", productID),
		Details: map[string]any{
			"productId": productID,
			"available": available,
			"requested": requested,
		},
	}
}

func OrderNotEditable(orderID string, status OrderStatus) *Error {
	return &Error{
		Kind:    KindOrderNotEditable,
		Message: "only pending orders can be modified",
		Details: map[string]any{"orderId": orderID, "status": status},
	}
}

func InvalidTransition(from, to OrderStatus) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot change order status from %s to %s", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

func NotFound(entity string, key any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: map[string]any{"entity": entity, "key": key},
	}
}

func Conflict(message string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Persistence envolve uma falha genérica do store. Se err já for um *Error ele é preservado.
func Persistence(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindPersistence, Message: message, Cause: err}
}
