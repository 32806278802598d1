package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// ClientRepository implementa catalog.ClientRepository e orders.ClientDirectory
type ClientRepository struct {
	collection *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{collection: db.Collection(clientsCollection)}
}

func (r *ClientRepository) Insert(ctx context.Context, client *sales.Client) error {
	_, err := r.collection.InsertOne(ctx, client)
	return mapError(err, "client", client.TaxID)
}

func (r *ClientRepository) FindByTaxID(ctx context.Context, taxID string) (*sales.Client, error) {
	var client sales.Client
	if err := r.collection.FindOne(ctx, bson.M{"taxId": taxID}).Decode(&client); err != nil {
		return nil, mapError(err, "client", taxID)
	}
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context, search string, page sales.PageRequest) ([]sales.Client, int64, error) {
	return findPage[sales.Client](ctx, r.collection, searchFilter(search, "name", "taxId"), page, bson.D{{Key: "name", Value: 1}})
}

func (r *ClientRepository) Update(ctx context.Context, client *sales.Client) (*sales.Client, error) {
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var updated sales.Client
	if err := r.collection.FindOneAndReplace(ctx, bson.M{"taxId": client.TaxID}, client, opts).Decode(&updated); err != nil {
		return nil, mapError(err, "client", client.TaxID)
	}
	return &updated, nil
}

func (r *ClientRepository) SetActive(ctx context.Context, taxID string, active bool) (*sales.Client, error) {
	update := bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var client sales.Client
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"taxId": taxID}, update, opts).Decode(&client); err != nil {
		return nil, mapError(err, "client", taxID)
	}
	return &client, nil
}
