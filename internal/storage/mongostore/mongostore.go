// Package mongostore implementa os repositórios do serviço sobre o MongoDB.
package mongostore

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
	clientsCollection  = "clients"
	sellersCollection  = "sellers"
)

// Connect conecta ao MongoDB e valida a conexão com um ping
func Connect(ctx context.Context, cfg config.Mongo) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	zerolog.Ctx(ctx).Info().Str("database", cfg.Database).Msg("✅ Successfully connected to MongoDB")
	return client, nil
}

// EnsureIndexes cria os índices únicos que sustentam as regras de unicidade
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		productsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "registrationDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		clientsCollection: {
			{Keys: bson.D{{Key: "taxId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		sellersCollection: {
			{Keys: bson.D{{Key: "nationalId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "confirmationToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}

// mapError converte erros do driver para a taxonomia do domínio
func mapError(err error, entity string, key any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return sales.NotFound(entity, key)
	case mongo.IsDuplicateKeyError(err):
		return sales.Conflict(entity+" already exists", map[string]any{"key": key})
	default:
		return errors.Wrapf(err, "%s %v", entity, key)
	}
}

// searchFilter busca, sem diferenciar maiúsculas, o termo em qualquer um dos campos
func searchFilter(search string, fields ...string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	or := make(bson.A, len(fields))
	for i, f := range fields {
		or[i] = bson.M{f: pattern}
	}
	return bson.M{"$or": or}
}

func pageOptions(page sales.PageRequest, sort bson.D) *options.FindOptions {
	return options.Find().
		SetSort(sort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
}

// findPage executa a consulta paginada e a contagem total
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, page sales.PageRequest, sort bson.D) ([]T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "count %s", coll.Name())
	}

	cursor, err := coll.Find(ctx, filter, pageOptions(page, sort))
	if err != nil {
		return nil, 0, errors.Wrapf(err, "find %s", coll.Name())
	}
	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, errors.Wrapf(err, "decode %s", coll.Name())
	}
	return items, total, nil
}
