package orders

import (
	"context"
	"errors"
	"time"

	"github.com/matheusmosca/sales-orders/internal/events"
	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ErrOrderChanged indica que a guarda de status de uma escrita no pedido não casou
var ErrOrderChanged = errors.New("order changed concurrently")

// Repository define a persistência de pedidos
type Repository interface {
	Insert(ctx context.Context, order *sales.Order) error
	FindByID(ctx context.Context, id string) (*sales.Order, error)
	// ReplacePending substitui o pedido somente se ele ainda estiver Pending
	ReplacePending(ctx context.Context, order *sales.Order) error
	// DeletePending remove o pedido somente se ele ainda estiver Pending
	DeletePending(ctx context.Context, id string) error
	// UpdateStatus aplica o novo status somente se o status atual não estiver em forbiddenFrom
	UpdateStatus(ctx context.Context, id string, next sales.OrderStatus, forbiddenFrom []sales.OrderStatus, at time.Time) (*sales.Order, error)
	List(ctx context.Context, filter Filter, page sales.PageRequest) ([]sales.Order, int64, error)
	Summary(ctx context.Context, sellerID int64) ([]StatusSummary, error)
}

// ClientDirectory resolve a referência de cliente do pedido
type ClientDirectory interface {
	FindByTaxID(ctx context.Context, taxID string) (*sales.Client, error)
}

// StockEngine é o protocolo de reservas consumido pelos pontos de entrada
type StockEngine interface {
	ReserveForNewOrder(ctx context.Context, items []sales.LineItem) (inventory.ReservationReceipt, error)
	AdjustForOrderUpdate(ctx context.Context, order *sales.Order, items []sales.LineItem) (inventory.AdjustmentReceipt, error)
	ReleaseForOrderCancellation(ctx context.Context, order *sales.Order) (inventory.ReleaseReceipt, error)
	CompensateReservation(ctx context.Context, receipt inventory.ReservationReceipt) inventory.CompensationOutcome
	CompensateAdjustment(ctx context.Context, receipt inventory.AdjustmentReceipt) inventory.CompensationOutcome
}

// EventPublisher publica o ciclo de vida do pedido e alertas de reconciliação
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event events.OrderEvent) error
	PublishReconciliation(ctx context.Context, alert events.Reconciliation) error
}
