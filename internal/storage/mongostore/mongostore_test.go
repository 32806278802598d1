package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/orders"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

func updated(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func TestProductRepository_ApplyStockDeltas(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("guard misses are reported per product", func(mt *mtest.T) {
		// Arrange
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(updated(1), updated(0), updated(1))
		deltas := []inventory.StockDelta{
			{ProductID: 1, Delta: -2},
			{ProductID: 2, Delta: -5},
			{ProductID: 3, Delta: -1},
		}

		// Act
		result, err := repo.ApplyStockDeltas(context.Background(), deltas, true)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, result.Attempted)
		assert.Equal(t, []inventory.StockDelta{deltas[0], deltas[2]}, result.Applied)
		assert.Equal(t, []inventory.StockDelta{deltas[1]}, result.Missed)
	})

	mt.Run("write errors do not stop the remaining operations", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(
			updated(1),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad update"}),
			updated(1),
		)
		deltas := []inventory.StockDelta{{ProductID: 1, Delta: 1}, {ProductID: 2, Delta: 1}, {ProductID: 3, Delta: 1}}

		result, err := repo.ApplyStockDeltas(context.Background(), deltas, false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "product 2")
		assert.Equal(t, []inventory.StockDelta{deltas[0], deltas[2]}, result.Applied)
		assert.Empty(t, result.Missed)
	})

	mt.Run("guarded decrement filters on available stock", func(mt *mtest.T) {
		// Arrange
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(updated(1))

		// Act
		_, err := repo.ApplyStockDeltas(context.Background(), []inventory.StockDelta{{ProductID: 1, Delta: -2}}, true)

		// Assert
		require.NoError(t, err)
		query := sentQuery(t, mt)
		assert.Equal(t, int64(1), query.Lookup("id").AsInt64())
		assert.Equal(t, int64(2), query.Lookup("stock", "$gte").AsInt64())
	})

	mt.Run("unguarded increment matches on id only", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(updated(1))

		_, err := repo.ApplyStockDeltas(context.Background(), []inventory.StockDelta{{ProductID: 1, Delta: 2}}, false)

		require.NoError(t, err)
		query := sentQuery(t, mt)
		_, lookupErr := query.LookupErr("stock")
		assert.Error(t, lookupErr)
		assert.Equal(t, int64(1), query.Lookup("id").AsInt64())
	})

	mt.Run("empty batch does not touch the database", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, 4)

		result, err := repo.ApplyStockDeltas(context.Background(), nil, true)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Attempted)
	})
}

// sentQuery devolve o filtro do primeiro update enviado ao servidor
func sentQuery(t *testing.T, mt *mtest.T) bson.Raw {
	t.Helper()
	started := mt.GetStartedEvent()
	require.NotNil(t, started)
	require.Equal(t, "update", started.CommandName)
	query, ok := started.Command.Lookup("updates", "0", "q").DocumentOK()
	require.True(t, ok)
	return query
}

func TestProductRepository_Errors(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate id is a conflict", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		err := repo.Insert(context.Background(), &sales.Product{ID: 7})

		assert.Equal(t, sales.KindConflict, sales.KindOf(err))
	})

	mt.Run("missing product is not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sales.products", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), 7)

		assert.Equal(t, sales.KindNotFound, sales.KindOf(err))
	})

	mt.Run("find decodes the product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB, 1)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "sales.products", mtest.FirstBatch,
			bson.D{{Key: "id", Value: int64(7)}, {Key: "name", Value: "Caneta"}, {Key: "stock", Value: 12}}))

		product, err := repo.FindByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "Caneta", product.Name)
		assert.Equal(t, 12, product.Stock)
	})
}

func TestOrderRepository_Guards(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replace of a non pending order", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.ReplacePending(context.Background(), &sales.Order{ID: "order-1"})

		assert.ErrorIs(t, err, orders.ErrOrderChanged)
	})

	mt.Run("replace of a pending order", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(updated(1))

		assert.NoError(t, repo.ReplacePending(context.Background(), &sales.Order{ID: "order-1"}))
	})

	mt.Run("delete of a non pending order", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeletePending(context.Background(), "order-1")

		assert.ErrorIs(t, err, orders.ErrOrderChanged)
	})

	mt.Run("status update losing the guard", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateStatus(context.Background(), "order-1", sales.OrderStatusPending,
			[]sales.OrderStatus{sales.OrderStatusShipped}, time.Now())

		assert.ErrorIs(t, err, orders.ErrOrderChanged)
	})
}

func TestSearchFilter(t *testing.T) {
	assert.Empty(t, searchFilter("", "name"))

	filter := searchFilter("a.b", "name", "reference")
	or := filter["$or"].(bson.A)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"name": bson.M{"$regex": `a\.b`, "$options": "i"}}, or[0])
}
