package sellers

import (
	"context"
	"time"

	"github.com/matheusmosca/sales-orders/internal/mailer"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// Repository define a persistência de vendedores
type Repository interface {
	Insert(ctx context.Context, seller *sales.Seller) error
	FindByNationalID(ctx context.Context, nationalID int64) (*sales.Seller, error)
	FindByUsername(ctx context.Context, username string) (*sales.Seller, error)
	// UsernamesWithPrefix retorna os usernames que começam com prefix
	UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// ConfirmEmail limpa o token e marca o e-mail como confirmado
	ConfirmEmail(ctx context.Context, token string) (*sales.Seller, error)
	List(ctx context.Context, page sales.PageRequest) ([]sales.Seller, int64, error)
	SetActive(ctx context.Context, nationalID int64, active bool) (*sales.Seller, error)
}

// Mailer envia as credenciais e o link de confirmação
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// TokenIssuer emite o JWT de sessão
type TokenIssuer interface {
	Issue(seller *sales.Seller) (string, time.Time, error)
}
