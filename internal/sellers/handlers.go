package sellers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/sales-orders/internal/platform/auth"
	"github.com/matheusmosca/sales-orders/internal/platform/httpx"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// SellerUseCaseInterface define a interface para o use case
type SellerUseCaseInterface interface {
	Register(ctx context.Context, req CreateSellerRequest) (*sales.Seller, error)
	ConfirmEmail(ctx context.Context, token string) (*sales.Seller, error)
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Me(ctx context.Context, actor sales.Actor) (*sales.Seller, error)
	List(ctx context.Context, page sales.PageRequest) (sales.Page[sales.Seller], error)
	SetActive(ctx context.Context, actor sales.Actor, nationalID int64, active bool) (*sales.Seller, error)
}

type SellerHandler struct {
	useCase SellerUseCaseInterface
}

func NewSellerHandler(useCase SellerUseCaseInterface) *SellerHandler {
	return &SellerHandler{useCase: useCase}
}

// RegisterPublic registra as rotas sem autenticação (login e confirmação de e-mail)
func (h *SellerHandler) RegisterPublic(rg gin.IRoutes) {
	rg.POST("/auth/login", h.Login)
	rg.GET("/sellers/confirm", h.ConfirmEmail)
}

// Register registra as rotas autenticadas; admin protege o cadastro e a administração
func (h *SellerHandler) Register(rg gin.IRoutes, admin gin.HandlerFunc) {
	rg.POST("/sellers", admin, h.CreateSeller)
	rg.GET("/sellers", admin, h.List)
	rg.GET("/sellers/me", h.Me)
	rg.PATCH("/sellers/:nationalId/status", admin, h.SetActive)
}

func (h *SellerHandler) CreateSeller(c *gin.Context) {
	var req CreateSellerRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	seller, err := h.useCase.Register(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, seller)
}

func (h *SellerHandler) ConfirmEmail(c *gin.Context) {
	seller, err := h.useCase.ConfirmEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": true, "username": seller.Username})
}

func (h *SellerHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	result, err := h.useCase.Login(c.Request.Context(), req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SellerHandler) Me(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}

	seller, err := h.useCase.Me(c.Request.Context(), actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

func (h *SellerHandler) List(c *gin.Context) {
	page, ok := httpx.PageRequest(c)
	if !ok {
		return
	}

	result, err := h.useCase.List(c.Request.Context(), page)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SellerHandler) SetActive(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpx.WriteError(c, sales.Unauthorized("authentication required"))
		return
	}
	nationalID, ok := httpx.Int64Param(c, "nationalId")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !httpx.BindJSON(c, &req) {
		return
	}

	seller, err := h.useCase.SetActive(c.Request.Context(), actor, nationalID, *req.Active)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}
