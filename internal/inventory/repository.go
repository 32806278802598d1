package inventory

import (
	"context"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ProductStore é o colaborador de persistência usado pelo motor de reservas
type ProductStore interface {
	// FindProductsByIDs busca todos os produtos cujo id está em ids em uma única leitura
	FindProductsByIDs(ctx context.Context, ids []int64) ([]sales.Product, error)

	// ApplyStockDeltas aplica cada delta como uma escrita atômica independente por documento.
	// Com guarded=true a escrita só acontece se stock+delta >= 0 no momento da escrita.
	// Quando retorna erro, o WriteResult ainda contém as escritas confirmadas até ali.
	ApplyStockDeltas(ctx context.Context, deltas []StockDelta, guarded bool) (WriteResult, error)
}

// MovementRecorder persiste as movimentações confirmadas (ledger)
type MovementRecorder interface {
	Record(ctx context.Context, movements []Movement) error
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, []Movement) error { return nil }
