package catalog

import (
	"strings"
	"time"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// CreateProductRequest representa a requisição para cadastrar um produto
type CreateProductRequest struct {
	ID          int64   `json:"id" binding:"required,gt=0"`
	Name        string  `json:"name" binding:"required,max=200"`
	Reference   string  `json:"reference" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	ImageURL    string  `json:"imageUrl" binding:"omitempty,url"`
}

func (r CreateProductRequest) Product(now time.Time) *sales.Product {
	return &sales.Product{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Reference:   strings.TrimSpace(r.Reference),
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateProductRequest altera todos os campos do produto exceto o estoque
type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Reference   string  `json:"reference" binding:"required,max=100"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"gte=0"`
	ImageURL    string  `json:"imageUrl" binding:"omitempty,url"`
}

// ProductDetails são os campos editáveis de um produto
type ProductDetails struct {
	Name        string
	Reference   string
	Description string
	Price       float64
	ImageURL    string
}

func (r UpdateProductRequest) Details() ProductDetails {
	return ProductDetails{
		Name:        strings.TrimSpace(r.Name),
		Reference:   strings.TrimSpace(r.Reference),
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
	}
}

// RestockRequest representa uma reposição de estoque
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// RestockResult é a resposta da reposição
type RestockResult struct {
	ProductID int64 `json:"productId"`
	Added     int   `json:"added"`
	Stock     int   `json:"stock"`
}

// ClientRequest é usado no cadastro e na atualização de clientes
type ClientRequest struct {
	TaxID       string `json:"taxId" binding:"required,max=30"`
	Name        string `json:"name" binding:"required,max=200"`
	Address     string `json:"address" binding:"max=300"`
	Phone       string `json:"phone" binding:"max=30"`
	Email       string `json:"email" binding:"omitempty,email"`
	CreditTerms int    `json:"creditTerms" binding:"gte=0"`
	Active      *bool  `json:"active"`
}

func (r ClientRequest) Client(now time.Time) *sales.Client {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &sales.Client{
		TaxID:       strings.TrimSpace(r.TaxID),
		Name:        strings.TrimSpace(r.Name),
		Address:     r.Address,
		Phone:       r.Phone,
		Email:       strings.ToLower(strings.TrimSpace(r.Email)),
		CreditTerms: r.CreditTerms,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetActiveRequest ativa ou desativa um cadastro
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
