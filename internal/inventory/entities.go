package inventory

import (
	"time"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// StockDelta é uma mutação de estoque em um produto: Delta < 0 decrementa, Delta > 0 incrementa
type StockDelta struct {
	ProductID int64 `json:"productId"`
	Delta     int   `json:"delta"`
}

// WriteResult é o que o store confirma sobre uma escrita em lote.
// Applied contém apenas as escritas confirmadas; Missed as que o filtro (guarda) rejeitou.
type WriteResult struct {
	Attempted int
	Applied   []StockDelta
	Missed    []StockDelta
}

// AppliedCount retorna o número de escritas confirmadas
func (r WriteResult) AppliedCount() int {
	return len(r.Applied)
}

// ReservedItem é uma quantidade efetivamente decrementada de um produto
type ReservedItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ReservationReceipt registra exatamente o que foi reservado na criação de um pedido.
// É a única base para uma compensação posterior.
type ReservationReceipt struct {
	ID    string         `json:"reservationId"`
	Items []ReservedItem `json:"items"`
}

// LineItems retorna os itens consolidados que devem ser persistidos no pedido
func (r ReservationReceipt) LineItems() []sales.LineItem {
	items := make([]sales.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = sales.LineItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return items
}

func (r ReservationReceipt) applied() []StockDelta {
	deltas := make([]StockDelta, len(r.Items))
	for i, it := range r.Items {
		deltas[i] = StockDelta{ProductID: it.ProductID, Delta: -it.Quantity}
	}
	return deltas
}

// AdjustmentReceipt registra as variações líquidas aplicadas na atualização de um pedido.
// Delta = quantidade antiga - quantidade nova (positivo devolve estoque).
type AdjustmentReceipt struct {
	ID         string           `json:"adjustmentId"`
	OrderID    string           `json:"orderId"`
	Items      []sales.LineItem `json:"-"`
	Changes    []StockDelta     `json:"changes"`
	Unrestored []int64          `json:"unrestored,omitempty"`
}

// ReleaseReceipt registra o estoque devolvido no cancelamento de um pedido
type ReleaseReceipt struct {
	OrderID    string         `json:"orderId"`
	Restored   []ReservedItem `json:"restored"`
	Unrestored []int64        `json:"unrestored"`
}

// CompensationOutcome descreve o resultado de uma tentativa de reversão
type CompensationOutcome struct {
	Attempted int          `json:"attempted"`
	Reverted  []StockDelta `json:"reverted"`
	Failed    []StockDelta `json:"failed,omitempty"`
	Succeeded bool         `json:"succeeded"`
	Error     string       `json:"error,omitempty"`
}

// MovementType representa os tipos de movimentação de estoque
type MovementType string

const (
	MovementReserved    MovementType = "reserved"
	MovementAdjusted    MovementType = "adjusted"
	MovementReleased    MovementType = "released"
	MovementCompensated MovementType = "compensated"
	MovementRestocked   MovementType = "restocked"
)

// Movement é uma mutação de estoque confirmada, registrada no ledger
type Movement struct {
	ID        string       `json:"id"`
	ProductID int64        `json:"productId"`
	Reference string       `json:"reference"`
	Change    int          `json:"change"`
	Type      MovementType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
}
