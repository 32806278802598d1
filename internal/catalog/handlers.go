package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/platform/httpx"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

const defaultMovementLimit = 50

// ProductUseCaseInterface define a interface para o use case de produtos
type ProductUseCaseInterface interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*sales.Product, error)
	GetProduct(ctx context.Context, id int64) (*sales.Product, error)
	ListProducts(ctx context.Context, search string, page sales.PageRequest) (sales.Page[sales.Product], error)
	UpdateProduct(ctx context.Context, id int64, details ProductDetails) (*sales.Product, error)
	Restock(ctx context.Context, id int64, quantity int) (RestockResult, error)
	Movements(ctx context.Context, id int64, limit int) ([]inventory.Movement, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ClientUseCaseInterface define a interface para o use case de clientes
type ClientUseCaseInterface interface {
	CreateClient(ctx context.Context, req ClientRequest) (*sales.Client, error)
	GetClient(ctx context.Context, taxID string) (*sales.Client, error)
	ListClients(ctx context.Context, search string, page sales.PageRequest) (sales.Page[sales.Client], error)
	UpdateClient(ctx context.Context, taxID string, req ClientRequest) (*sales.Client, error)
	SetActive(ctx context.Context, taxID string, active bool) (*sales.Client, error)
}

// Handler contém os handlers HTTP do catálogo
type Handler struct {
	products ProductUseCaseInterface
	clients  ClientUseCaseInterface
}

func NewHandler(products ProductUseCaseInterface, clients ClientUseCaseInterface) *Handler {
	return &Handler{products: products, clients: clients}
}

// Register registra as rotas; admin protege as operações administrativas de produtos
func (h *Handler) Register(rg gin.IRoutes, admin gin.HandlerFunc) {
	rg.POST("/products", admin, h.CreateProduct)
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.PUT("/products/:id", admin, h.UpdateProduct)
	rg.POST("/products/:id/stock", admin, h.Restock)
	rg.GET("/products/:id/movements", admin, h.Movements)
	rg.DELETE("/products/:id", admin, h.DeleteProduct)

	rg.POST("/clients", h.CreateClient)
	rg.GET("/clients", h.ListClients)
	rg.GET("/clients/:taxId", h.GetClient)
	rg.PUT("/clients/:taxId", h.UpdateClient)
	rg.PATCH("/clients/:taxId/status", h.SetClientActive)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := httpx.Int64Param(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	page, ok := httpx.PageRequest(c)
	if !ok {
		return
	}

	result, err := h.products.ListProducts(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := httpx.Int64Param(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, req.Details())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Restock repõe o estoque de um produto
func (h *Handler) Restock(c *gin.Context) {
	id, ok := httpx.Int64Param(c, "id")
	if !ok {
		return
	}
	var req RestockRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	result, err := h.products.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Movements(c *gin.Context) {
	id, ok := httpx.Int64Param(c, "id")
	if !ok {
		return
	}
	limit := defaultMovementLimit
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 1 || l > sales.MaxPageLimit {
			httpx.WriteError(c, sales.Validation("limit must be between 1 and 100", map[string]any{"limit": raw}))
			return
		}
		limit = l
	}

	movements, err := h.products.Movements(c.Request.Context(), id, limit)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := httpx.Int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req ClientRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) GetClient(c *gin.Context) {
	client, err := h.clients.GetClient(c.Request.Context(), c.Param("taxId"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) ListClients(c *gin.Context) {
	page, ok := httpx.PageRequest(c)
	if !ok {
		return
	}

	result, err := h.clients.ListClients(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	var req ClientRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	client, err := h.clients.UpdateClient(c.Request.Context(), c.Param("taxId"), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) SetClientActive(c *gin.Context) {
	var req SetActiveRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	client, err := h.clients.SetActive(c.Request.Context(), c.Param("taxId"), *req.Active)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}
