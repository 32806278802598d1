package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/sales-orders/internal/events"
	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

var allStatuses = []sales.OrderStatus{
	sales.OrderStatusPending,
	sales.OrderStatusInProgress,
	sales.OrderStatusShipped,
	sales.OrderStatusCancelled,
}

// OrderUseCase contém a lógica de negócio dos pedidos
type OrderUseCase struct {
	repository Repository
	clients    ClientDirectory
	engine     StockEngine
	publisher  EventPublisher
	tracer     trace.Tracer
	newID      func() string
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(
	repository Repository,
	clients ClientDirectory,
	engine StockEngine,
	publisher EventPublisher,
	tracer trace.Tracer,
) *OrderUseCase {
	return &OrderUseCase{
		repository: repository,
		clients:    clients,
		engine:     engine,
		publisher:  publisher,
		tracer:     tracer,
		newID:      uuid.NewString,
	}
}

// CreateOrder reserva o estoque e grava o pedido. Se a gravação falhar, a reserva é compensada.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, actor sales.Actor, input CreateOrderInput) (CreateResult, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("seller.id", actor.SellerID), attribute.String("customer", input.Customer))
	log := zerolog.Ctx(ctx)

	// 1. O cliente precisa existir
	if _, err := uc.clients.FindByTaxID(ctx, input.Customer); err != nil {
		return CreateResult{}, failSpan(span, sales.Persistence(err, "failed to load client"))
	}

	// 2. Reserva o estoque
	receipt, err := uc.engine.ReserveForNewOrder(ctx, input.Products)
	if err != nil {
		uc.alertIfInconsistent(ctx, "", "reservation", err)
		return CreateResult{}, failSpan(span, err)
	}

	// 3. Grava o pedido com os itens consolidados do recibo
	order := sales.NewOrder(uc.newID(), input.Customer, actor.SellerID, receipt.LineItems(), input.Terms)
	span.SetAttributes(attribute.String("order.id", order.ID))

	if err := uc.repository.Insert(ctx, order); err != nil {
		log.Error().Err(err).Str("orderId", order.ID).Str("reservationId", receipt.ID).
			Msg("❌ [CREATE ORDER] falha ao gravar pedido; compensando reserva")

		outcome := uc.engine.CompensateReservation(ctx, receipt)
		ferr := inventory.AfterCompensation(errors.Wrap(err, "insert order"), "failed to save order", outcome)
		uc.alertIfInconsistent(ctx, order.ID, "order insert failed", ferr)
		return CreateResult{}, failSpan(span, ferr)
	}

	uc.publish(ctx, events.NewOrderEvent(events.OrderCreated, order, receipt))

	log.Info().Str("orderId", order.ID).Int("items", len(order.Products)).Msg("✅ [CREATE ORDER] pedido criado")
	return CreateResult{Order: order, StockUpdateInfo: receipt}, nil
}

// UpdateOrder ajusta o estoque pela diferença de itens e grava o pedido (somente Pending)
func (uc *OrderUseCase) UpdateOrder(ctx context.Context, actor sales.Actor, id string, input UpdateOrderInput) (UpdateResult, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.UpdateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))
	log := zerolog.Ctx(ctx)

	order, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return UpdateResult{}, failSpan(span, err)
	}

	// 1. Ajusta o estoque (o motor rejeita pedidos que não estão Pending)
	receipt, err := uc.engine.AdjustForOrderUpdate(ctx, order, input.Products)
	if err != nil {
		uc.alertIfInconsistent(ctx, order.ID, "adjustment", err)
		return UpdateResult{}, failSpan(span, err)
	}

	// 2. Grava o pedido, guardado por status == Pending
	updated := *order
	updated.Products = receipt.Items
	updated.DiscountApplied = input.Terms.DiscountApplied
	updated.NetTotal = input.Terms.NetTotal
	updated.TotalWithTax = input.Terms.TotalWithTax
	updated.Comment = input.Terms.Comment
	updated.LastUpdate = time.Now().UTC()

	if err := uc.repository.ReplacePending(ctx, &updated); err != nil {
		log.Error().Err(err).Str("orderId", order.ID).Str("adjustmentId", receipt.ID).
			Msg("❌ [UPDATE ORDER] falha ao gravar pedido; revertendo ajuste")

		outcome := uc.engine.CompensateAdjustment(ctx, receipt)
		var ferr error
		if errors.Is(err, ErrOrderChanged) && outcome.Succeeded {
			ferr = sales.Conflict("order was modified concurrently; stock adjustment rolled back",
				map[string]any{"orderId": order.ID, "compensation": outcome})
		} else {
			ferr = inventory.AfterCompensation(errors.Wrap(err, "replace order"), "failed to save order", outcome)
		}
		uc.alertIfInconsistent(ctx, order.ID, "order update failed", ferr)
		return UpdateResult{}, failSpan(span, ferr)
	}

	uc.publish(ctx, events.NewOrderEvent(events.OrderUpdated, &updated, receipt))

	log.Info().Str("orderId", order.ID).Int("changes", len(receipt.Changes)).Msg("✅ [UPDATE ORDER] pedido atualizado")
	return UpdateResult{Order: &updated, StockUpdateInfo: receipt}, nil
}

// DeleteOrder devolve o estoque e remove o pedido (somente Pending).
// Se a devolução falhar o pedido não é removido.
func (uc *OrderUseCase) DeleteOrder(ctx context.Context, actor sales.Actor, id string) (DeletionInfo, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.DeleteOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))
	log := zerolog.Ctx(ctx)

	order, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return DeletionInfo{}, failSpan(span, err)
	}

	// 1. Devolve o estoque
	receipt, err := uc.engine.ReleaseForOrderCancellation(ctx, order)
	if err != nil {
		uc.alertIfInconsistent(ctx, order.ID, "stock release failed", err)
		return DeletionInfo{}, failSpan(span, err)
	}

	// 2. Remove o pedido, guardado por status == Pending
	if err := uc.repository.DeletePending(ctx, order.ID); err != nil {
		details := map[string]any{
			"orderId":             order.ID,
			"stockRestored":       true,
			"orderDeleted":        false,
			"stockRestoreDetails": receipt,
		}
		log.Error().Err(err).Str("orderId", order.ID).Bool("manual_reconciliation", true).
			Msg("❌ [DELETE ORDER] estoque devolvido mas o pedido não foi removido")
		uc.reconcile(ctx, order.ID, "order delete failed after stock release", details)

		return DeletionInfo{}, failSpan(span, &sales.Error{
			Kind:    sales.KindPersistence,
			Message: "stock was restored but the order could not be deleted",
			Details: details,
			Cause:   errors.Wrap(err, "delete order"),
		})
	}

	uc.publish(ctx, events.NewOrderEvent(events.OrderCancelled, order, receipt))

	log.Info().Str("orderId", order.ID).Ints64("unrestored", receipt.Unrestored).Msg("✅ [DELETE ORDER] pedido removido")
	return DeletionInfo{OrderDeleted: true, StockRestoreDetails: receipt}, nil
}

// GetOrder retorna um pedido do vendedor (ou qualquer pedido, para admins)
func (uc *OrderUseCase) GetOrder(ctx context.Context, actor sales.Actor, id string) (*sales.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.GetOrder")
	defer span.End()

	order, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return order, nil
}

// ListOrders lista os pedidos do vendedor, mais recentes primeiro. Admins veem todos.
func (uc *OrderUseCase) ListOrders(ctx context.Context, actor sales.Actor, filter Filter, page sales.PageRequest) (sales.Page[sales.Order], error) {
	ctx, span := uc.tracer.Start(ctx, "orders.ListOrders")
	defer span.End()

	if filter.Status != "" && !filter.Status.Valid() {
		return sales.Page[sales.Order]{}, failSpan(span, sales.Validation("invalid order status", map[string]any{"status": filter.Status}))
	}
	if !actor.IsAdmin() {
		filter.SellerID = actor.SellerID
	}

	items, total, err := uc.repository.List(ctx, filter, page)
	if err != nil {
		return sales.Page[sales.Order]{}, failSpan(span, sales.Persistence(err, "failed to list orders"))
	}
	return sales.NewPage(items, page, total), nil
}

// ChangeStatus altera o status sem tocar no estoque. Shipped -> Pending é rejeitado.
func (uc *OrderUseCase) ChangeStatus(ctx context.Context, actor sales.Actor, id string, next sales.OrderStatus) (*sales.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.ChangeStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.status", string(next)))

	order, err := uc.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, failSpan(span, err)
	}

	candidate := *order
	if err := candidate.ChangeStatus(next); err != nil {
		return nil, failSpan(span, err)
	}

	var forbiddenFrom []sales.OrderStatus
	for _, s := range allStatuses {
		if !s.CanTransitionTo(next) {
			forbiddenFrom = append(forbiddenFrom, s)
		}
	}

	updated, err := uc.repository.UpdateStatus(ctx, id, next, forbiddenFrom, candidate.LastUpdate)
	if errors.Is(err, ErrOrderChanged) {
		// o status mudou entre a leitura e a escrita
		current, ferr := uc.repository.FindByID(ctx, id)
		if ferr != nil {
			return nil, failSpan(span, ferr)
		}
		return nil, failSpan(span, sales.InvalidTransition(current.Status, next))
	}
	if err != nil {
		return nil, failSpan(span, sales.Persistence(err, "failed to update order status"))
	}

	uc.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated, nil))
	zerolog.Ctx(ctx).Info().Str("orderId", id).Str("from", string(order.Status)).Str("to", string(next)).
		Msg("✅ [ORDER STATUS] status alterado")
	return updated, nil
}

// Summary agrega quantidade e total por status. Admins veem todos os vendedores.
func (uc *OrderUseCase) Summary(ctx context.Context, actor sales.Actor) ([]StatusSummary, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.Summary")
	defer span.End()

	var sellerID int64
	if !actor.IsAdmin() {
		sellerID = actor.SellerID
	}

	summary, err := uc.repository.Summary(ctx, sellerID)
	if err != nil {
		return nil, failSpan(span, sales.Persistence(err, "failed to summarize orders"))
	}
	if summary == nil {
		summary = []StatusSummary{}
	}
	return summary, nil
}

func (uc *OrderUseCase) loadOwned(ctx context.Context, actor sales.Actor, id string) (*sales.Order, error) {
	order, err := uc.repository.FindByID(ctx, id)
	if err != nil {
		return nil, sales.Persistence(err, "failed to load order")
	}
	if !actor.CanAccess(order) {
		return nil, sales.Forbidden("order belongs to another seller")
	}
	return order, nil
}

func (uc *OrderUseCase) publish(ctx context.Context, event events.OrderEvent) {
	if err := uc.publisher.PublishOrderEvent(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("orderId", event.OrderID).Str("type", string(event.Type)).
			Msg("⚠️ falha ao publicar evento do pedido")
	}
}

// alertIfInconsistent publica um alerta quando err indica estoque inconsistente
func (uc *OrderUseCase) alertIfInconsistent(ctx context.Context, orderID, reason string, err error) {
	if !sales.IsKind(err, sales.KindCompensationFailed) {
		return
	}
	uc.reconcile(ctx, orderID, reason, sales.AsError(err).Details)
}

func (uc *OrderUseCase) reconcile(ctx context.Context, orderID, reason string, details map[string]any) {
	if err := uc.publisher.PublishReconciliation(ctx, events.NewReconciliation(orderID, reason, details)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("orderId", orderID).Bool("manual_reconciliation", true).
			Msg("❌ falha ao publicar alerta de reconciliação")
	}
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(sales.KindOf(err)))
	return err
}
