package orders

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/sales-orders/internal/platform/auth"
	"github.com/matheusmosca/sales-orders/internal/platform/httpx"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// OrderUseCaseInterface define a interface para o use case
type OrderUseCaseInterface interface {
	CreateOrder(ctx context.Context, actor sales.Actor, input CreateOrderInput) (CreateResult, error)
	UpdateOrder(ctx context.Context, actor sales.Actor, id string, input UpdateOrderInput) (UpdateResult, error)
	DeleteOrder(ctx context.Context, actor sales.Actor, id string) (DeletionInfo, error)
	GetOrder(ctx context.Context, actor sales.Actor, id string) (*sales.Order, error)
	ListOrders(ctx context.Context, actor sales.Actor, filter Filter, page sales.PageRequest) (sales.Page[sales.Order], error)
	ChangeStatus(ctx context.Context, actor sales.Actor, id string, next sales.OrderStatus) (*sales.Order, error)
	Summary(ctx context.Context, actor sales.Actor) ([]StatusSummary, error)
}

// OrderHandler contém os handlers HTTP de pedidos
type OrderHandler struct {
	useCase OrderUseCaseInterface
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(useCase OrderUseCaseInterface) *OrderHandler {
	return &OrderHandler{useCase: useCase}
}

// Register registra as rotas de pedidos; idempotent é aplicado apenas na criação
func (h *OrderHandler) Register(rg gin.IRoutes, idempotent gin.HandlerFunc) {
	rg.POST("/orders", idempotent, h.CreateOrder)
	rg.GET("/orders", h.ListOrders)
	rg.GET("/orders/summary", h.Summary)
	rg.GET("/orders/:id", h.GetOrder)
	rg.PUT("/orders/:id", h.UpdateOrder)
	rg.DELETE("/orders/:id", h.DeleteOrder)
	rg.PATCH("/orders/:id/status", h.ChangeStatus)
}

// CreateOrder cria um pedido reservando o estoque
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	var req CreateOrderRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	result, err := h.useCase.CreateOrder(c.Request.Context(), actor, req.Input())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateOrder substitui os itens e valores de um pedido Pending
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	var req UpdateOrderRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	result, err := h.useCase.UpdateOrder(c.Request.Context(), actor, c.Param("id"), req.Input())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteOrder cancela um pedido Pending devolvendo o estoque
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	info, err := h.useCase.DeleteOrder(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletionInfo": info})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}
	page, ok := httpx.PageRequest(c)
	if !ok {
		return
	}

	filter := Filter{
		Status:   sales.OrderStatus(c.Query("status")),
		Customer: c.Query("customer"),
	}
	result, err := h.useCase.ListOrders(c.Request.Context(), actor, filter, page)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ChangeStatus altera o status do pedido
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	var req ChangeStatusRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	order, err := h.useCase.ChangeStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Summary(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	summary, err := h.useCase.Summary(c.Request.Context(), actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
