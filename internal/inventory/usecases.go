package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// DefaultCompensationTimeout limita cada tentativa de reversão, independente do contexto da requisição
const DefaultCompensationTimeout = 5 * time.Second

const (
	opReserve = "reserve"
	opAdjust  = "adjust"
	opRelease = "release"
	opRestock = "restock"
)

// Engine é o motor de reservas de estoque: converte itens de pedido em escritas guardadas
// e compensa o subconjunto confirmado quando um lote é aplicado parcialmente.
type Engine struct {
	store               ProductStore
	recorder            MovementRecorder
	tracer              trace.Tracer
	metrics             *engineMetrics
	compensationTimeout time.Duration
	newID               func() string
	now                 func() time.Time
}

type Option func(*Engine)

// WithRecorder registra cada movimentação confirmada no ledger
func WithRecorder(recorder MovementRecorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

func WithMeter(meter metric.Meter) Option {
	return func(e *Engine) { e.metrics = newEngineMetrics(meter) }
}

func WithCompensationTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.compensationTimeout = d
		}
	}
}

// NewEngine cria uma nova instância de Engine
func NewEngine(store ProductStore, opts ...Option) *Engine {
	e := &Engine{
		store:               store,
		recorder:            noopRecorder{},
		tracer:              otel.Tracer("inventory"),
		compensationTimeout: DefaultCompensationTimeout,
		newID:               uuid.NewString,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = newEngineMetrics(otel.Meter("inventory"))
	}
	return e
}

// ReserveForNewOrder decrementa o estoque de todos os itens de um novo pedido.
// O recibo retornado é a única base para uma compensação posterior.
func (e *Engine) ReserveForNewOrder(ctx context.Context, items []sales.LineItem) (ReservationReceipt, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.ReserveForNewOrder")
	defer span.End()

	// 1. Consolida os itens repetidos
	demand, err := sales.Consolidate(items)
	if err != nil {
		return ReservationReceipt{}, e.fail(ctx, span, opReserve, err)
	}

	deltas := make([]StockDelta, len(demand))
	for i, item := range demand {
		deltas[i] = StockDelta{ProductID: item.ProductID, Delta: -item.Quantity}
	}

	// 2. Pré-validação otimista (uma única leitura)
	writes, _, err := e.precheck(ctx, deltas)
	if err != nil {
		return ReservationReceipt{}, e.fail(ctx, span, opReserve, err)
	}

	// 3. Escrita guardada em lote; a guarda é reavaliada pelo store em cada documento
	ref := e.newID()
	span.SetAttributes(attribute.String("reservation.id", ref), attribute.Int("reservation.items", len(writes)))
	applied, err := e.applyGuarded(ctx, ref, writes)
	if err != nil {
		return ReservationReceipt{}, e.fail(ctx, span, opReserve, err)
	}

	receipt := ReservationReceipt{ID: ref, Items: make([]ReservedItem, len(applied))}
	for i, d := range applied {
		receipt.Items[i] = ReservedItem{ProductID: d.ProductID, Quantity: -d.Delta}
	}

	e.record(ctx, ref, MovementReserved, applied)
	e.metrics.operation(ctx, opReserve, "succeeded")

	zerolog.Ctx(ctx).Info().
		Str("reservationId", ref).
		Int("items", len(receipt.Items)).
		Msg("✅ [RESERVE] estoque reservado")
	return receipt, nil
}

// AdjustForOrderUpdate aplica a diferença líquida entre os itens atuais do pedido e os novos.
// Só é permitido para pedidos Pending.
func (e *Engine) AdjustForOrderUpdate(ctx context.Context, order *sales.Order, newItems []sales.LineItem) (AdjustmentReceipt, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.AdjustForOrderUpdate")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID))

	if err := order.EnsureEditable(); err != nil {
		return AdjustmentReceipt{}, e.fail(ctx, span, opAdjust, err)
	}

	// 1. Consolida os itens novos e os atuais
	next, err := sales.Consolidate(newItems)
	if err != nil {
		return AdjustmentReceipt{}, e.fail(ctx, span, opAdjust, err)
	}

	// 2. Calcula a variação líquida por produto (antigo - novo)
	changes := netChanges(order.Products, next)

	ref := e.newID()
	receipt := AdjustmentReceipt{ID: ref, OrderID: order.ID, Items: next, Changes: []StockDelta{}}
	if len(changes) == 0 {
		e.metrics.operation(ctx, opAdjust, "succeeded")
		return receipt, nil
	}

	// 3. Pré-validação; devoluções para produtos removidos do catálogo são puladas
	writes, unrestored, err := e.precheck(ctx, changes)
	if err != nil {
		return AdjustmentReceipt{}, e.fail(ctx, span, opAdjust, err)
	}
	receipt.Unrestored = unrestored
	if len(unrestored) > 0 {
		zerolog.Ctx(ctx).Warn().
			Str("orderId", order.ID).
			Ints64("productIds", unrestored).
			Msg("⚠️ [ADJUST] produtos inexistentes; estoque não devolvido")
	}

	// 4. Escrita guardada: stock += netChange, guarda stock + netChange >= 0
	applied, err := e.applyGuarded(ctx, ref, writes)
	if err != nil {
		return AdjustmentReceipt{}, e.fail(ctx, span, opAdjust, err)
	}
	receipt.Changes = applied

	e.record(ctx, ref, MovementAdjusted, applied)
	e.metrics.operation(ctx, opAdjust, "succeeded")

	zerolog.Ctx(ctx).Info().
		Str("orderId", order.ID).
		Int("changes", len(applied)).
		Msg("✅ [ADJUST] estoque ajustado")
	return receipt, nil
}

// ReleaseForOrderCancellation devolve ao estoque todos os itens de um pedido Pending.
// Produtos que não existem mais são reportados como unrestored. Uma falha na escrita não é compensada.
func (e *Engine) ReleaseForOrderCancellation(ctx context.Context, order *sales.Order) (ReleaseReceipt, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.ReleaseForOrderCancellation")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", order.ID))
	log := zerolog.Ctx(ctx)

	if err := order.EnsureEditable(); err != nil {
		return ReleaseReceipt{}, e.fail(ctx, span, opRelease, err)
	}

	receipt := ReleaseReceipt{OrderID: order.ID, Restored: []ReservedItem{}, Unrestored: []int64{}}
	if len(order.Products) == 0 {
		e.metrics.operation(ctx, opRelease, "succeeded")
		return receipt, nil
	}

	increments := make([]StockDelta, 0, len(order.Products))
	quantities := sales.Quantities(order.Products)
	for _, item := range order.Products {
		if q, ok := quantities[item.ProductID]; ok {
			increments = append(increments, StockDelta{ProductID: item.ProductID, Delta: q})
			delete(quantities, item.ProductID)
		}
	}

	writes, unrestored, err := e.precheck(ctx, increments)
	if err != nil {
		return ReleaseReceipt{}, e.fail(ctx, span, opRelease, err)
	}
	receipt.Unrestored = append(receipt.Unrestored, unrestored...)

	result, err := e.store.ApplyStockDeltas(ctx, writes, false)
	if err != nil {
		// sem re-decremento: pedido e estoque ficam como estão para inspeção manual
		log.Error().Err(err).
			Str("orderId", order.ID).
			Int("attempted", len(writes)).
			Int("applied", result.AppliedCount()).
			Msg("❌ [RELEASE] falha ao devolver estoque; pedido mantido")
		e.record(ctx, order.ID, MovementReleased, result.Applied)
		werr := &sales.Error{
			Kind:    sales.KindPersistence,
			Message: "failed to restore stock; order was not deleted",
			Details: map[string]any{
				"orderDeleted":      false,
				"restored":          toItems(result.Applied),
				"partiallyRestored": len(result.Applied) > 0,
				"stateUnknown":      isContextErr(err),
			},
			Cause: errors.Wrap(err, "apply stock increments"),
		}
		// estoque já devolvido com o pedido mantido: repetir o cancelamento devolveria de novo
		if len(result.Applied) > 0 || isContextErr(err) {
			werr.Kind = sales.KindCompensationFailed
			werr.Message = "stock was partially restored and the order was kept; manual reconciliation required"
		}
		return ReleaseReceipt{}, e.fail(ctx, span, opRelease, werr)
	}

	receipt.Restored = toItems(result.Applied)
	for _, d := range result.Missed {
		receipt.Unrestored = append(receipt.Unrestored, d.ProductID)
	}

	e.record(ctx, order.ID, MovementReleased, result.Applied)
	e.metrics.operation(ctx, opRelease, "succeeded")

	log.Info().
		Str("orderId", order.ID).
		Int("restored", len(receipt.Restored)).
		Ints64("unrestored", receipt.Unrestored).
		Msg("↩️ [RELEASE] estoque devolvido")
	return receipt, nil
}

// Restock incrementa o estoque de um produto (reposição administrativa)
func (e *Engine) Restock(ctx context.Context, productID int64, quantity int) (StockDelta, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.Restock")
	defer span.End()

	if quantity <= 0 {
		return StockDelta{}, e.fail(ctx, span, opRestock,
			sales.Validation("quantity must be greater than 0", map[string]any{"quantity": quantity}))
	}

	delta := StockDelta{ProductID: productID, Delta: quantity}
	result, err := e.store.ApplyStockDeltas(ctx, []StockDelta{delta}, false)
	if err != nil {
		return StockDelta{}, e.fail(ctx, span, opRestock, sales.Persistence(errors.Wrap(err, "restock"), "failed to restock product"))
	}
	if result.AppliedCount() == 0 {
		return StockDelta{}, e.fail(ctx, span, opRestock, sales.ProductNotFound(productID))
	}

	ref := e.newID()
	e.record(ctx, ref, MovementRestocked, result.Applied)
	e.metrics.operation(ctx, opRestock, "succeeded")
	return delta, nil
}

// CompensateReservation desfaz integralmente uma reserva confirmada.
// Usado quando a gravação do pedido falha depois da reserva.
func (e *Engine) CompensateReservation(ctx context.Context, receipt ReservationReceipt) CompensationOutcome {
	ctx, span := e.tracer.Start(ctx, "inventory.CompensateReservation")
	defer span.End()
	return e.revert(ctx, receipt.ID, receipt.applied())
}

// CompensateAdjustment desfaz as variações aplicadas por um ajuste
func (e *Engine) CompensateAdjustment(ctx context.Context, receipt AdjustmentReceipt) CompensationOutcome {
	ctx, span := e.tracer.Start(ctx, "inventory.CompensateAdjustment")
	defer span.End()
	return e.revert(ctx, receipt.ID, receipt.Changes)
}

// precheck carrega os produtos envolvidos e valida existência e saldo.
// Deltas positivos para produtos inexistentes não falham: são devolvidos em unrestored.
func (e *Engine) precheck(ctx context.Context, deltas []StockDelta) ([]StockDelta, []int64, error) {
	products, err := e.store.FindProductsByIDs(ctx, productIDs(deltas))
	if err != nil {
		return nil, nil, sales.Persistence(errors.Wrap(err, "find products"), "failed to load products")
	}

	stock := make(map[int64]int, len(products))
	for _, p := range products {
		stock[p.ID] = p.Stock
	}

	writes := make([]StockDelta, 0, len(deltas))
	var unrestored []int64
	for _, d := range deltas {
		have, ok := stock[d.ProductID]
		switch {
		case !ok && d.Delta < 0:
			return nil, nil, sales.ProductNotFound(d.ProductID)
		case !ok:
			unrestored = append(unrestored, d.ProductID)
			continue
		case d.Delta < 0 && have < -d.Delta:
			return nil, nil, sales.InsufficientStock(d.ProductID, have, -d.Delta)
		}
		writes = append(writes, d)
	}
	return writes, unrestored, nil
}

// applyGuarded executa o lote guardado e, se nem todas as escritas forem confirmadas,
// reverte exatamente o subconjunto confirmado antes de retornar o erro.
func (e *Engine) applyGuarded(ctx context.Context, ref string, writes []StockDelta) ([]StockDelta, error) {
	if len(writes) == 0 {
		return []StockDelta{}, nil
	}

	result, err := e.store.ApplyStockDeltas(ctx, writes, true)
	e.metrics.writes(ctx, result)
	if err == nil && result.AppliedCount() == len(writes) {
		return result.Applied, nil
	}
	if result.Attempted == 0 {
		result.Attempted = len(writes)
	}

	zerolog.Ctx(ctx).Warn().Err(err).
		Str("reference", ref).
		Int("attempted", result.Attempted).
		Int("applied", result.AppliedCount()).
		Ints64("missed", productIDs(result.Missed)).
		Msg("⚠️ [GUARDED WRITE] lote aplicado parcialmente; compensando")

	outcome := e.revert(ctx, ref, result.Applied)
	return nil, afterPartialWrite(err, result, outcome)
}

// revert aplica o inverso das escritas confirmadas em um contexto desacoplado da requisição
func (e *Engine) revert(ctx context.Context, ref string, applied []StockDelta) CompensationOutcome {
	outcome := CompensationOutcome{Attempted: len(applied), Reverted: []StockDelta{}}
	if len(applied) == 0 {
		outcome.Succeeded = true
		return outcome
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.compensationTimeout)
	defer cancel()

	inverse := make([]StockDelta, len(applied))
	for i, d := range applied {
		inverse[i] = StockDelta{ProductID: d.ProductID, Delta: -d.Delta}
	}

	// reversões de devoluções também são decrementos; a guarda preserva stock >= 0
	result, err := e.store.ApplyStockDeltas(cctx, inverse, true)
	outcome.Reverted = append(outcome.Reverted, result.Applied...)
	if err == nil && result.AppliedCount() == len(inverse) {
		outcome.Succeeded = true
	} else {
		outcome.Failed = missingFrom(inverse, result.Applied)
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Error = "reversal rejected by stock guard"
		}
		zerolog.Ctx(ctx).Error().Err(err).
			Str("reference", ref).
			Bool("manual_reconciliation", true).
			Interface("failed", outcome.Failed).
			Msg("❌ [COMPENSATE] reversão incompleta; estoque exige reconciliação manual")
	}

	e.record(cctx, ref, MovementCompensated, result.Applied)
	e.metrics.compensation(ctx, outcome)

	if outcome.Succeeded {
		zerolog.Ctx(ctx).Info().
			Str("reference", ref).
			Int("reverted", len(outcome.Reverted)).
			Msg("↩️ [COMPENSATE] estoque revertido")
	}
	return outcome
}

func (e *Engine) record(ctx context.Context, ref string, kind MovementType, applied []StockDelta) {
	if len(applied) == 0 {
		return
	}

	now := e.now().UTC()
	movements := make([]Movement, len(applied))
	for i, d := range applied {
		movements[i] = Movement{
			ID:        e.newID(),
			ProductID: d.ProductID,
			Reference: ref,
			Change:    d.Delta,
			Type:      kind,
			CreatedAt: now,
		}
	}

	// o ledger é auditoria: uma falha aqui não desfaz uma mutação já confirmada
	if err := e.recorder.Record(context.WithoutCancel(ctx), movements); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("reference", ref).
			Str("type", string(kind)).
			Msg("⚠️ [LEDGER] falha ao registrar movimentações")
	}
}

func (e *Engine) fail(ctx context.Context, span trace.Span, op string, err error) error {
	kind := sales.KindOf(err)
	if kind == "" {
		kind = sales.KindPersistence
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
	e.metrics.operation(ctx, op, string(kind))
	return err
}

// netChanges calcula antigo - novo por produto, na ordem de primeira ocorrência, ignorando variações nulas
func netChanges(current, next []sales.LineItem) []StockDelta {
	old := sales.Quantities(current)
	updated := sales.Quantities(next)

	seen := make(map[int64]bool, len(old)+len(updated))
	var changes []StockDelta
	for _, items := range [][]sales.LineItem{current, next} {
		for _, item := range items {
			if seen[item.ProductID] {
				continue
			}
			seen[item.ProductID] = true
			if delta := old[item.ProductID] - updated[item.ProductID]; delta != 0 {
				changes = append(changes, StockDelta{ProductID: item.ProductID, Delta: delta})
			}
		}
	}
	return changes
}

func missingFrom(all, applied []StockDelta) []StockDelta {
	done := make(map[int64]bool, len(applied))
	for _, d := range applied {
		done[d.ProductID] = true
	}
	var missing []StockDelta
	for _, d := range all {
		if !done[d.ProductID] {
			missing = append(missing, d)
		}
	}
	return missing
}

func toItems(deltas []StockDelta) []ReservedItem {
	items := make([]ReservedItem, len(deltas))
	for i, d := range deltas {
		items[i] = ReservedItem{ProductID: d.ProductID, Quantity: d.Delta}
	}
	return items
}
