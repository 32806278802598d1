package inventory

import (
	"context"

	"github.com/pkg/errors"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func productIDs(deltas []StockDelta) []int64 {
	ids := make([]int64, len(deltas))
	for i, d := range deltas {
		ids[i] = d.ProductID
	}
	return ids
}

func compensationFailed(message string, cause error, details map[string]any) *sales.Error {
	return &sales.Error{
		Kind:    sales.KindCompensationFailed,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// AfterCompensation monta o erro devolvido ao cliente depois que uma escrita de pedido falhou
// e o estoque reservado foi revertido. Reversão completa vira PERSISTENCE_ERROR; parcial vira COMPENSATION_FAILED.
// Um timeout na escrita do pedido também vira COMPENSATION_FAILED: o pedido pode ter sido gravado.
func AfterCompensation(cause error, message string, outcome CompensationOutcome) error {
	details := map[string]any{"compensation": outcome}
	if isContextErr(cause) {
		details["stateUnknown"] = true
		return compensationFailed(message+"; the write timed out and the order state is unknown", cause, details)
	}
	if !outcome.Succeeded {
		return compensationFailed(message+"; stock could not be fully restored", cause, details)
	}
	return &sales.Error{
		Kind:    sales.KindPersistence,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// afterPartialWrite converte o resultado de uma escrita em lote incompleta no erro final,
// considerando o resultado da compensação já executada.
func afterPartialWrite(writeErr error, result WriteResult, outcome CompensationOutcome) error {
	details := map[string]any{
		"attempted":    result.Attempted,
		"applied":      result.AppliedCount(),
		"missed":       productIDs(result.Missed),
		"compensation": outcome,
	}

	switch {
	case writeErr != nil && isContextErr(writeErr):
		// a escrita pode ter sido aplicada no servidor sem confirmação
		details["stateUnknown"] = true
		return compensationFailed("stock write timed out; stock state is unknown", writeErr, details)
	case !outcome.Succeeded:
		return compensationFailed("stock reservation failed and could not be rolled back", writeErr, details)
	case writeErr != nil:
		return &sales.Error{Kind: sales.KindPersistence, Message: "stock write failed; reservation rolled back", Details: details, Cause: writeErr}
	default:
		return &sales.Error{Kind: sales.KindReservationConflict, Message: "stock changed concurrently; reservation rolled back", Details: details}
	}
}
