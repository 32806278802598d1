package catalog

import (
	"context"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ProductRepository define a persistência do catálogo. O estoque só é alterado pelo motor de reservas.
type ProductRepository interface {
	Insert(ctx context.Context, product *sales.Product) error
	FindByID(ctx context.Context, id int64) (*sales.Product, error)
	List(ctx context.Context, search string, page sales.PageRequest) ([]sales.Product, int64, error)
	UpdateDetails(ctx context.Context, id int64, details ProductDetails) (*sales.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ClientRepository define a persistência de clientes
type ClientRepository interface {
	Insert(ctx context.Context, client *sales.Client) error
	FindByTaxID(ctx context.Context, taxID string) (*sales.Client, error)
	List(ctx context.Context, search string, page sales.PageRequest) ([]sales.Client, int64, error)
	Update(ctx context.Context, client *sales.Client) (*sales.Client, error)
	SetActive(ctx context.Context, taxID string, active bool) (*sales.Client, error)
}

// Restocker é a parte do motor de estoque usada pelo catálogo
type Restocker interface {
	Restock(ctx context.Context, productID int64, quantity int) (inventory.StockDelta, error)
}

// MovementReader lê o histórico de movimentações de um produto, mais recentes primeiro
type MovementReader interface {
	ListByProduct(ctx context.Context, productID int64, limit int) ([]inventory.Movement, error)
}

// NoMovements é usado quando o ledger está desabilitado
type NoMovements struct{}

func (NoMovements) ListByProduct(context.Context, int64, int) ([]inventory.Movement, error) {
	return []inventory.Movement{}, nil
}
