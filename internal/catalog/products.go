package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ProductUseCase contém a lógica do catálogo de produtos
type ProductUseCase struct {
	repository ProductRepository
	stock      Restocker
	movements  MovementReader
	tracer     trace.Tracer
}

// NewProductUseCase cria uma nova instância de ProductUseCase
func NewProductUseCase(repository ProductRepository, stock Restocker, movements MovementReader, tracer trace.Tracer) *ProductUseCase {
	if movements == nil {
		movements = NoMovements{}
	}
	return &ProductUseCase{
		repository: repository,
		stock:      stock,
		movements:  movements,
		tracer:     tracer,
	}
}

// CreateProduct cadastra um produto. Id duplicado resulta em CONFLICT.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, req CreateProductRequest) (*sales.Product, error) {
	ctx, span := uc.tracer.Start(ctx, "catalog.CreateProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", req.ID))

	product := req.Product(time.Now().UTC())
	if err := uc.repository.Insert(ctx, product); err != nil {
		return nil, failSpan(span, sales.Persistence(err, "failed to save product"))
	}

	zerolog.Ctx(ctx).Info().Int64("productId", product.ID).Int("stock", product.Stock).Msg("✅ [PRODUCT] produto cadastrado")
	return product, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id int64) (*sales.Product, error) {
	product, err := uc.repository.FindByID(ctx, id)
	if err != nil {
		return nil, sales.Persistence(err, "failed to load product")
	}
	return product, nil
}

// ListProducts busca por nome ou referência, sem diferenciar maiúsculas
func (uc *ProductUseCase) ListProducts(ctx context.Context, search string, page sales.PageRequest) (sales.Page[sales.Product], error) {
	items, total, err := uc.repository.List(ctx, search, page)
	if err != nil {
		return sales.Page[sales.Product]{}, sales.Persistence(err, "failed to list products")
	}
	return sales.NewPage(items, page, total), nil
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id int64, details ProductDetails) (*sales.Product, error) {
	ctx, span := uc.tracer.Start(ctx, "catalog.UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := uc.repository.UpdateDetails(ctx, id, details)
	if err != nil {
		return nil, failSpan(span, sales.Persistence(err, "failed to update product"))
	}
	return product, nil
}

// Restock repõe o estoque pelo motor de reservas, que registra a movimentação no ledger
func (uc *ProductUseCase) Restock(ctx context.Context, id int64, quantity int) (RestockResult, error) {
	ctx, span := uc.tracer.Start(ctx, "catalog.Restock")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id), attribute.Int("quantity", quantity))

	delta, err := uc.stock.Restock(ctx, id, quantity)
	if err != nil {
		return RestockResult{}, failSpan(span, err)
	}

	result := RestockResult{ProductID: id, Added: delta.Delta, Stock: -1}
	if product, err := uc.repository.FindByID(ctx, id); err == nil {
		result.Stock = product.Stock
	}

	zerolog.Ctx(ctx).Info().Int64("productId", id).Int("added", delta.Delta).Msg("✅ [RESTOCK] estoque reposto")
	return result, nil
}

// Movements retorna o histórico de estoque de um produto existente
func (uc *ProductUseCase) Movements(ctx context.Context, id int64, limit int) ([]inventory.Movement, error) {
	if _, err := uc.repository.FindByID(ctx, id); err != nil {
		return nil, sales.Persistence(err, "failed to load product")
	}

	movements, err := uc.movements.ListByProduct(ctx, id, limit)
	if err != nil {
		return nil, sales.Persistence(err, "failed to load stock movements")
	}
	if movements == nil {
		movements = []inventory.Movement{}
	}
	return movements, nil
}

// DeleteProduct remove o produto. Pedidos existentes mantêm seus itens.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := uc.tracer.Start(ctx, "catalog.DeleteProduct")
	defer span.End()

	if err := uc.repository.Delete(ctx, id); err != nil {
		return failSpan(span, sales.Persistence(err, "failed to delete product"))
	}

	zerolog.Ctx(ctx).Info().Int64("productId", id).Msg("ℹ️ [PRODUCT] produto removido")
	return nil
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(sales.KindOf(err)))
	return err
}
