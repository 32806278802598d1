package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Insert(ctx context.Context, product *sales.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, search string, page sales.PageRequest) ([]sales.Product, int64, error) {
	args := m.Called(ctx, search, page)
	return args.Get(0).([]sales.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) UpdateDetails(ctx context.Context, id int64, details ProductDetails) (*sales.Product, error) {
	args := m.Called(ctx, id, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Insert(ctx context.Context, client *sales.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) FindByTaxID(ctx context.Context, taxID string) (*sales.Client, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, search string, page sales.PageRequest) ([]sales.Client, int64, error) {
	args := m.Called(ctx, search, page)
	return args.Get(0).([]sales.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) Update(ctx context.Context, client *sales.Client) (*sales.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Client), args.Error(1)
}

func (m *MockClientRepository) SetActive(ctx context.Context, taxID string, active bool) (*sales.Client, error) {
	args := m.Called(ctx, taxID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Client), args.Error(1)
}

type MockMovementReader struct {
	mock.Mock
}

func (m *MockMovementReader) ListByProduct(ctx context.Context, productID int64, limit int) ([]inventory.Movement, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Movement), args.Error(1)
}
