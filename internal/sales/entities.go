package sales

import (
	"time"
)

// OrderStatus representa os possíveis status de um pedido
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "InProgress"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Valid indica se o status é um dos valores conhecidos
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo aplica a única restrição de transição conhecida: Shipped nunca volta para Pending.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return !(s == OrderStatusShipped && next == OrderStatusPending)
}

// LineItem é um item do pedido (produto + quantidade). Não tem ciclo de vida próprio.
type LineItem struct {
	ProductID int64 `json:"productId" bson:"productId"`
	Quantity  int   `json:"quantity" bson:"quantity"`
}

// OrderTerms agrupa os valores comerciais informados na criação/atualização do pedido
type OrderTerms struct {
	DiscountApplied float64
	NetTotal        float64
	TotalWithTax    float64
	Comment         string
}

// Order representa um pedido no sistema
type Order struct {
	ID               string      `json:"id" bson:"_id"`
	Customer         string      `json:"customer" bson:"customer"`
	SellerID         int64       `json:"seller" bson:"seller"`
	Products         []LineItem  `json:"products" bson:"products"`
	DiscountApplied  float64     `json:"discountApplied" bson:"discountApplied"`
	NetTotal         float64     `json:"netTotal" bson:"netTotal"`
	TotalWithTax     float64     `json:"totalWithTax" bson:"totalWithTax"`
	Status           OrderStatus `json:"status" bson:"status"`
	Comment          string      `json:"comment,omitempty" bson:"comment,omitempty"`
	RegistrationDate time.Time   `json:"registrationDate" bson:"registrationDate"`
	LastUpdate       time.Time   `json:"lastUpdate" bson:"lastUpdate"`
}

// NewOrder cria um novo pedido com status Pending.
// items deve ser a lista já consolidada.
func NewOrder(id, customer string, sellerID int64, items []LineItem, terms OrderTerms) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:               id,
		Customer:         customer,
		SellerID:         sellerID,
		Products:         items,
		DiscountApplied:  terms.DiscountApplied,
		NetTotal:         terms.NetTotal,
		TotalWithTax:     terms.TotalWithTax,
		Status:           OrderStatusPending,
		Comment:          terms.Comment,
		RegistrationDate: now,
		LastUpdate:       now,
	}
}

// IsEditable indica se o pedido ainda pode ser alterado ou removido
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusPending
}

// EnsureEditable retorna ORDER_NOT_EDITABLE quando o pedido não está Pending
func (o *Order) EnsureEditable() error {
	if !o.IsEditable() {
		return OrderNotEditable(o.ID, o.Status)
	}
	return nil
}

// ChangeStatus valida e aplica uma transição de status
func (o *Order) ChangeStatus(next OrderStatus) error {
	if !next.Valid() {
		return Validation("invalid order status", map[string]any{"status": next})
	}
	if !o.Status.CanTransitionTo(next) {
		return InvalidTransition(o.Status, next)
	}
	o.Status = next
	o.LastUpdate = time.Now().UTC()
	return nil
}

// Product é um item do catálogo. ID é atribuído externamente e não é a identidade interna do store.
type Product struct {
	ID          int64     `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Reference   string    `json:"reference" bson:"reference"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Stock       int       `json:"stock" bson:"stock"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Client é o cliente referenciado pelo pedido através do TaxID
type Client struct {
	TaxID       string    `json:"taxId" bson:"taxId"`
	Name        string    `json:"name" bson:"name"`
	Address     string    `json:"address" bson:"address"`
	Phone       string    `json:"phone" bson:"phone"`
	Email       string    `json:"email" bson:"email"`
	CreditTerms int       `json:"creditTerms" bson:"creditTerms"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Role define o papel de um vendedor
type Role string

const (
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid indica se o papel é conhecido
func (r Role) Valid() bool {
	return r == RoleSeller || r == RoleAdmin
}

// Seller representa um vendedor (agente dono dos pedidos)
type Seller struct {
	NationalID        int64     `json:"nationalId" bson:"nationalId"`
	FirstName         string    `json:"firstName" bson:"firstName"`
	LastName          string    `json:"lastName" bson:"lastName"`
	Username          string    `json:"username" bson:"username"`
	PasswordHash      string    `json:"-" bson:"passwordHash"`
	Email             string    `json:"email" bson:"email"`
	Phone             string    `json:"phone" bson:"phone"`
	SalesCity         string    `json:"salesCity" bson:"salesCity"`
	Role              Role      `json:"role" bson:"role"`
	Active            bool      `json:"active" bson:"active"`
	EmailConfirmed    bool      `json:"emailConfirmed" bson:"emailConfirmed"`
	ConfirmationToken string    `json:"-" bson:"confirmationToken,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin indica se o vendedor tem papel de administrador
func (s *Seller) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Actor é o vendedor autenticado que executa uma operação
type Actor struct {
	SellerID int64
	Role     Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess indica se o ator pode ler ou alterar o pedido
func (a Actor) CanAccess(o *Order) bool {
	return a.IsAdmin() || o.SellerID == a.SellerID
}
