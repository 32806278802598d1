package orders

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/matheusmosca/sales-orders/internal/events"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, order *sales.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*sales.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockRepository) ReplacePending(ctx context.Context, order *sales.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockRepository) DeletePending(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, next sales.OrderStatus, forbiddenFrom []sales.OrderStatus, at time.Time) (*sales.Order, error) {
	args := m.Called(ctx, id, next, forbiddenFrom, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter Filter, page sales.PageRequest) ([]sales.Order, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]sales.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Summary(ctx context.Context, sellerID int64) ([]StatusSummary, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]StatusSummary), args.Error(1)
}

type MockClients struct {
	mock.Mock
}

func (m *MockClients) FindByTaxID(ctx context.Context, taxID string) (*sales.Client, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Client), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ctx context.Context, event events.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishReconciliation(ctx context.Context, alert events.Reconciliation) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// MockOrderUseCase é usado nos testes dos handlers
type MockOrderUseCase struct {
	mock.Mock
}

func (m *MockOrderUseCase) CreateOrder(ctx context.Context, actor sales.Actor, input CreateOrderInput) (CreateResult, error) {
	args := m.Called(ctx, actor, input)
	return args.Get(0).(CreateResult), args.Error(1)
}

func (m *MockOrderUseCase) UpdateOrder(ctx context.Context, actor sales.Actor, id string, input UpdateOrderInput) (UpdateResult, error) {
	args := m.Called(ctx, actor, id, input)
	return args.Get(0).(UpdateResult), args.Error(1)
}

func (m *MockOrderUseCase) DeleteOrder(ctx context.Context, actor sales.Actor, id string) (DeletionInfo, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(DeletionInfo), args.Error(1)
}

func (m *MockOrderUseCase) GetOrder(ctx context.Context, actor sales.Actor, id string) (*sales.Order, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockOrderUseCase) ListOrders(ctx context.Context, actor sales.Actor, filter Filter, page sales.PageRequest) (sales.Page[sales.Order], error) {
	args := m.Called(ctx, actor, filter, page)
	return args.Get(0).(sales.Page[sales.Order]), args.Error(1)
}

func (m *MockOrderUseCase) ChangeStatus(ctx context.Context, actor sales.Actor, id string, next sales.OrderStatus) (*sales.Order, error) {
	args := m.Called(ctx, actor, id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Order), args.Error(1)
}

func (m *MockOrderUseCase) Summary(ctx context.Context, actor sales.Actor) ([]StatusSummary, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]StatusSummary), args.Error(1)
}
