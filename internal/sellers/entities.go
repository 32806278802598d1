package sellers

import (
	"strings"
	"time"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// CreateSellerRequest representa o cadastro de um vendedor
type CreateSellerRequest struct {
	NationalID int64      `json:"nationalId" binding:"required,gt=0"`
	FirstName  string     `json:"firstName" binding:"required,max=100"`
	LastName   string     `json:"lastName" binding:"required,max=100"`
	Email      string     `json:"email" binding:"required,email"`
	Phone      string     `json:"phone" binding:"max=30"`
	SalesCity  string     `json:"salesCity" binding:"max=100"`
	Role       sales.Role `json:"role"`
}

func (r CreateSellerRequest) Seller(now time.Time) *sales.Seller {
	role := r.Role
	if role == "" {
		role = sales.RoleSeller
	}
	return &sales.Seller{
		NationalID: r.NationalID,
		FirstName:  strings.TrimSpace(r.FirstName),
		LastName:   strings.TrimSpace(r.LastName),
		Email:      strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:      r.Phone,
		SalesCity:  r.SalesCity,
		Role:       role,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult é a resposta do login
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Seller    *sales.Seller `json:"seller"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
