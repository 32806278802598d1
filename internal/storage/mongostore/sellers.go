package mongostore

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matheusmosca/sales-orders/internal/sales"
)

// SellerRepository implementa sellers.Repository
type SellerRepository struct {
	collection *mongo.Collection
}

func NewSellerRepository(db *mongo.Database) *SellerRepository {
	return &SellerRepository{collection: db.Collection(sellersCollection)}
}

func (r *SellerRepository) Insert(ctx context.Context, seller *sales.Seller) error {
	_, err := r.collection.InsertOne(ctx, seller)
	return mapError(err, "seller", seller.Username)
}

func (r *SellerRepository) FindByNationalID(ctx context.Context, nationalID int64) (*sales.Seller, error) {
	return r.findOne(ctx, bson.M{"nationalId": nationalID}, nationalID)
}

func (r *SellerRepository) FindByUsername(ctx context.Context, username string) (*sales.Seller, error) {
	return r.findOne(ctx, bson.M{"username": username}, username)
}

func (r *SellerRepository) findOne(ctx context.Context, filter bson.M, key any) (*sales.Seller, error) {
	var seller sales.Seller
	if err := r.collection.FindOne(ctx, filter).Decode(&seller); err != nil {
		return nil, mapError(err, "seller", key)
	}
	return &seller, nil
}

func (r *SellerRepository) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"username": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	opts := options.Find().SetProjection(bson.M{"username": 1, "_id": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find usernames")
	}
	var rows []struct {
		Username string `bson:"username"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode usernames")
	}

	usernames := make([]string, len(rows))
	for i, row := range rows {
		usernames[i] = row.Username
	}
	return usernames, nil
}

// ConfirmEmail consome o token: ele é removido para não poder ser usado de novo
func (r *SellerRepository) ConfirmEmail(ctx context.Context, token string) (*sales.Seller, error) {
	update := bson.M{
		"$set":   bson.M{"emailConfirmed": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"confirmationToken": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var seller sales.Seller
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"confirmationToken": token}, update, opts).Decode(&seller); err != nil {
		return nil, mapError(err, "confirmation token", token)
	}
	return &seller, nil
}

func (r *SellerRepository) List(ctx context.Context, page sales.PageRequest) ([]sales.Seller, int64, error) {
	return findPage[sales.Seller](ctx, r.collection, bson.M{}, page, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *SellerRepository) SetActive(ctx context.Context, nationalID int64, active bool) (*sales.Seller, error) {
	update := bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var seller sales.Seller
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"nationalId": nationalID}, update, opts).Decode(&seller); err != nil {
		return nil, mapError(err, "seller", nationalID)
	}
	return &seller, nil
}
