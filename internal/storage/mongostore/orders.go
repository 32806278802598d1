package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matheusmosca/sales-orders/internal/orders"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

// OrderRepository implementa orders.Repository. Escritas em pedidos existentes são guardadas pelo status.
type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Insert(ctx context.Context, order *sales.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	return mapError(err, "order", order.ID)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*sales.Order, error) {
	var order sales.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, mapError(err, "order", id)
	}
	return &order, nil
}

// ReplacePending grava o pedido somente se ele ainda estiver Pending
func (r *OrderRepository) ReplacePending(ctx context.Context, order *sales.Order) error {
	filter := bson.M{"_id": order.ID, "status": sales.OrderStatusPending}
	res, err := r.collection.ReplaceOne(ctx, filter, order)
	if err != nil {
		return errors.Wrapf(err, "replace order %s", order.ID)
	}
	if res.MatchedCount == 0 {
		return orders.ErrOrderChanged
	}
	return nil
}

// DeletePending remove o pedido somente se ele ainda estiver Pending
func (r *OrderRepository) DeletePending(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "status": sales.OrderStatusPending})
	if err != nil {
		return errors.Wrapf(err, "delete order %s", id)
	}
	if res.DeletedCount == 0 {
		return orders.ErrOrderChanged
	}
	return nil
}

// UpdateStatus aplica o status somente se o status atual não estiver em forbiddenFrom
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, next sales.OrderStatus, forbiddenFrom []sales.OrderStatus, at time.Time) (*sales.Order, error) {
	filter := bson.M{"_id": id}
	if len(forbiddenFrom) > 0 {
		filter["status"] = bson.M{"$nin": forbiddenFrom}
	}
	update := bson.M{"$set": bson.M{"status": next, "lastUpdate": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order sales.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, orders.ErrOrderChanged
	}
	if err != nil {
		return nil, errors.Wrapf(err, "update status of order %s", id)
	}
	return &order, nil
}

// List retorna os pedidos mais recentes primeiro
func (r *OrderRepository) List(ctx context.Context, filter orders.Filter, page sales.PageRequest) ([]sales.Order, int64, error) {
	query := bson.M{}
	if filter.SellerID != 0 {
		query["seller"] = filter.SellerID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Customer != "" {
		query["customer"] = filter.Customer
	}
	return findPage[sales.Order](ctx, r.collection, query, page, bson.D{{Key: "registrationDate", Value: -1}})
}

// Summary agrega quantidade e total com impostos por status. sellerID 0 agrega todos os vendedores.
func (r *OrderRepository) Summary(ctx context.Context, sellerID int64) ([]orders.StatusSummary, error) {
	pipeline := mongo.Pipeline{}
	if sellerID != 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"seller": sellerID}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":          "$status",
			"count":        bson.M{"$sum": 1},
			"totalWithTax": bson.M{"$sum": "$totalWithTax"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate order summary")
	}
	summary := []orders.StatusSummary{}
	if err := cursor.All(ctx, &summary); err != nil {
		return nil, errors.Wrap(err, "decode order summary")
	}
	return summary, nil
}
