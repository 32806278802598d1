package sales

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	// Arrange
	items := []LineItem{{ProductID: 10, Quantity: 2}}
	terms := OrderTerms{DiscountApplied: 5, NetTotal: 100, TotalWithTax: 119, Comment: "entregar pela manhã"}

	// Act
	order := NewOrder("order-123", "900123456", 1020, items, terms)

	// Assert
	assert.Equal(t, "order-123", order.ID)
	assert.Equal(t, "900123456", order.Customer)
	assert.Equal(t, int64(1020), order.SellerID)
	assert.Equal(t, items, order.Products)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, 119.0, order.TotalWithTax)
	assert.True(t, order.IsEditable())

	now := time.Now()
	assert.WithinDuration(t, now, order.RegistrationDate, time.Second)
	assert.Equal(t, order.RegistrationDate, order.LastUpdate)
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	all := []OrderStatus{OrderStatusPending, OrderStatusInProgress, OrderStatusShipped, OrderStatusCancelled}

	for _, from := range all {
		for _, to := range all {
			want := !(from == OrderStatusShipped && to == OrderStatusPending)
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrder_ChangeStatus(t *testing.T) {
	t.Run("shipped back to pending is rejected and the order is unchanged", func(t *testing.T) {
		order := NewOrder("o-1", "c", 1, []LineItem{{ProductID: 1, Quantity: 1}}, OrderTerms{})
		order.Status = OrderStatusShipped
		before := *order

		err := order.ChangeStatus(OrderStatusPending)

		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidTransition))
		assert.Equal(t, before, *order)
	})

	t.Run("unknown status", func(t *testing.T) {
		order := NewOrder("o-1", "c", 1, nil, OrderTerms{})

		err := order.ChangeStatus(OrderStatus("Lost"))

		assert.True(t, IsKind(err, KindValidation))
		assert.Equal(t, OrderStatusPending, order.Status)
	})

	t.Run("pending to shipped", func(t *testing.T) {
		order := NewOrder("o-1", "c", 1, nil, OrderTerms{})

		require.NoError(t, order.ChangeStatus(OrderStatusShipped))
		assert.Equal(t, OrderStatusShipped, order.Status)
		assert.False(t, order.IsEditable())
		assert.True(t, IsKind(order.EnsureEditable(), KindOrderNotEditable))
	})
}

func TestSellerPasswordHashIsNotSerialized(t *testing.T) {
	seller := Seller{NationalID: 1, Username: "ana.gomez", PasswordHash: "$2a$10$hash", ConfirmationToken: "tok"}

	data, err := json.Marshal(seller)

	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "tok")
}

func TestActor_CanAccess(t *testing.T) {
	order := NewOrder("o-1", "c", 1020, nil, OrderTerms{})

	assert.True(t, Actor{SellerID: 1020, Role: RoleSeller}.CanAccess(order))
	assert.False(t, Actor{SellerID: 7, Role: RoleSeller}.CanAccess(order))
	assert.True(t, Actor{SellerID: 7, Role: RoleAdmin}.CanAccess(order))
}
