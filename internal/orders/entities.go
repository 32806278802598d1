package orders

import (
	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// LineItemRequest é um item no corpo das requisições de criação/atualização
type LineItemRequest struct {
	ProductID sales.ProductRef `json:"productId" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest representa a requisição para criar um pedido
type CreateOrderRequest struct {
	Customer        string            `json:"customer" binding:"required"`
	Products        []LineItemRequest `json:"products" binding:"required,min=1,dive"`
	DiscountApplied float64           `json:"discountApplied" binding:"gte=0,lte=100"`
	NetTotal        float64           `json:"netTotal" binding:"gte=0"`
	TotalWithTax    float64           `json:"totalWithTax" binding:"gte=0,gtefield=NetTotal"`
	Comment         string            `json:"comment" binding:"max=500"`
}

// UpdateOrderRequest representa a requisição para atualizar um pedido Pending
type UpdateOrderRequest struct {
	Products        []LineItemRequest `json:"products" binding:"required,min=1,dive"`
	DiscountApplied float64           `json:"discountApplied" binding:"gte=0,lte=100"`
	NetTotal        float64           `json:"netTotal" binding:"gte=0"`
	TotalWithTax    float64           `json:"totalWithTax" binding:"gte=0,gtefield=NetTotal"`
	Comment         string            `json:"comment" binding:"max=500"`
}

// ChangeStatusRequest representa a requisição de mudança de status
type ChangeStatusRequest struct {
	Status sales.OrderStatus `json:"status" binding:"required"`
}

func toLineItems(items []LineItemRequest) []sales.LineItem {
	out := make([]sales.LineItem, len(items))
	for i, item := range items {
		out[i] = sales.LineItem{ProductID: int64(item.ProductID), Quantity: item.Quantity}
	}
	return out
}

// CreateOrderInput são os dados de criação já desacoplados do HTTP
type CreateOrderInput struct {
	Customer string
	Products []sales.LineItem
	Terms    sales.OrderTerms
}

func (r CreateOrderRequest) Input() CreateOrderInput {
	return CreateOrderInput{
		Customer: r.Customer,
		Products: toLineItems(r.Products),
		Terms: sales.OrderTerms{
			DiscountApplied: r.DiscountApplied,
			NetTotal:        r.NetTotal,
			TotalWithTax:    r.TotalWithTax,
			Comment:         r.Comment,
		},
	}
}

// UpdateOrderInput são os dados de atualização já desacoplados do HTTP
type UpdateOrderInput struct {
	Products []sales.LineItem
	Terms    sales.OrderTerms
}

func (r UpdateOrderRequest) Input() UpdateOrderInput {
	return UpdateOrderInput{
		Products: toLineItems(r.Products),
		Terms: sales.OrderTerms{
			DiscountApplied: r.DiscountApplied,
			NetTotal:        r.NetTotal,
			TotalWithTax:    r.TotalWithTax,
			Comment:         r.Comment,
		},
	}
}

// CreateResult é a resposta da criação: o pedido gravado e o recibo da reserva
type CreateResult struct {
	Order           *sales.Order                 `json:"order"`
	StockUpdateInfo inventory.ReservationReceipt `json:"stockUpdateInfo"`
}

// UpdateResult é a resposta da atualização
type UpdateResult struct {
	Order           *sales.Order                `json:"order"`
	StockUpdateInfo inventory.AdjustmentReceipt `json:"stockUpdateInfo"`
}

// DeletionInfo descreve o resultado do cancelamento
type DeletionInfo struct {
	OrderDeleted        bool                     `json:"orderDeleted"`
	StockRestoreDetails inventory.ReleaseReceipt `json:"stockRestoreDetails"`
}

// Filter restringe a listagem de pedidos. SellerID 0 significa todos os vendedores.
type Filter struct {
	SellerID int64
	Status   sales.OrderStatus
	Customer string
}

// StatusSummary agrega os pedidos de um status
type StatusSummary struct {
	Status       sales.OrderStatus `json:"status" bson:"_id"`
	Count        int64             `json:"count" bson:"count"`
	TotalWithTax float64           `json:"totalWithTax" bson:"totalWithTax"`
}
