package events

import (
	"time"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// OrderEventType identifica o evento do ciclo de vida do pedido
type OrderEventType string

const (
	OrderCreated       OrderEventType = "order.created"
	OrderUpdated       OrderEventType = "order.updated"
	OrderCancelled     OrderEventType = "order.cancelled"
	OrderStatusChanged OrderEventType = "order.status_changed"
)

// ReconciliationRequired é o tipo dos alertas de estoque inconsistente
const ReconciliationRequired = "stock.reconciliation_required"

// OrderEvent é publicado no tópico de pedidos, com o id do pedido como chave
type OrderEvent struct {
	ID           string            `json:"id"`
	Type         OrderEventType    `json:"type"`
	OrderID      string            `json:"orderId"`
	SellerID     int64             `json:"sellerId"`
	Customer     string            `json:"customer"`
	Status       sales.OrderStatus `json:"status"`
	Products     []sales.LineItem  `json:"products"`
	TotalWithTax float64           `json:"totalWithTax"`
	Stock        any               `json:"stock,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
}

// NewOrderEvent monta o evento a partir do estado atual do pedido
func NewOrderEvent(kind OrderEventType, order *sales.Order, stock any) OrderEvent {
	return OrderEvent{
		Type:         kind,
		OrderID:      order.ID,
		SellerID:     order.SellerID,
		Customer:     order.Customer,
		Status:       order.Status,
		Products:     order.Products,
		TotalWithTax: order.TotalWithTax,
		Stock:        stock,
		OccurredAt:   time.Now().UTC(),
	}
}

// Reconciliation sinaliza que o estoque precisa de correção manual
type Reconciliation struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Reason     string         `json:"reason"`
	OrderID    string         `json:"orderId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// NewReconciliation monta o alerta de reconciliação
func NewReconciliation(orderID, reason string, details map[string]any) Reconciliation {
	return Reconciliation{
		Type:       ReconciliationRequired,
		Reason:     reason,
		OrderID:    orderID,
		Details:    details,
		OccurredAt: time.Now().UTC(),
	}
}
