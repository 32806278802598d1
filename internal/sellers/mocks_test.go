package sellers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/matheusmosca/sales-orders/internal/mailer"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, seller *sales.Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

func (m *MockRepository) FindByNationalID(ctx context.Context, nationalID int64) (*sales.Seller, error) {
	args := m.Called(ctx, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Seller), args.Error(1)
}

func (m *MockRepository) FindByUsername(ctx context.Context, username string) (*sales.Seller, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Seller), args.Error(1)
}

func (m *MockRepository) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) ConfirmEmail(ctx context.Context, token string) (*sales.Seller, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Seller), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, page sales.PageRequest) ([]sales.Seller, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]sales.Seller), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) SetActive(ctx context.Context, nationalID int64, active bool) (*sales.Seller, error) {
	args := m.Called(ctx, nationalID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Seller), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type fakeTokens struct{}

func (fakeTokens) Issue(seller *sales.Seller) (string, time.Time, error) {
	return "token-" + seller.Username, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}
