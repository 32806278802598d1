package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/matheusmosca/sales-orders/internal/catalog"
	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

const defaultWriteConcurrency = 8

// ProductRepository guarda o catálogo e aplica as escritas de estoque do motor de reservas
type ProductRepository struct {
	collection  *mongo.Collection
	concurrency int
	now         func() time.Time
}

func NewProductRepository(db *mongo.Database, writeConcurrency int) *ProductRepository {
	if writeConcurrency <= 0 {
		writeConcurrency = defaultWriteConcurrency
	}
	return &ProductRepository{
		collection:  db.Collection(productsCollection),
		concurrency: writeConcurrency,
		now:         time.Now,
	}
}

// FindProductsByIDs carrega os produtos existentes entre ids em uma única consulta
func (r *ProductRepository) FindProductsByIDs(ctx context.Context, ids []int64) ([]sales.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find products by ids")
	}
	products := []sales.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

// ApplyStockDeltas aplica cada variação como um UpdateOne independente e atômico no documento.
// Com guarded, o filtro exige stock + delta >= 0; um filtro que não casa é uma escrita não aplicada.
// Todas as operações são tentadas mesmo quando alguma falha, para que o resultado de cada uma seja conhecido.
func (r *ProductRepository) ApplyStockDeltas(ctx context.Context, deltas []inventory.StockDelta, guarded bool) (inventory.WriteResult, error) {
	result := inventory.WriteResult{Attempted: len(deltas)}
	if len(deltas) == 0 {
		return result, nil
	}

	applied := make([]bool, len(deltas))
	failures := make([]error, len(deltas))
	now := r.now().UTC()

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, d := range deltas {
		g.Go(func() error {
			filter := bson.M{"id": d.ProductID}
			if guarded {
				filter["stock"] = bson.M{"$gte": -d.Delta}
			}
			update := bson.M{
				"$inc": bson.M{"stock": d.Delta},
				"$set": bson.M{"updatedAt": now},
			}

			res, err := r.collection.UpdateOne(ctx, filter, update)
			if err != nil {
				failures[i] = errors.Wrapf(err, "update stock of product %d", d.ProductID)
				return nil
			}
			applied[i] = res.MatchedCount == 1
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	for i, d := range deltas {
		switch {
		case failures[i] != nil:
			if firstErr == nil {
				firstErr = failures[i]
			}
		case applied[i]:
			result.Applied = append(result.Applied, d)
		default:
			result.Missed = append(result.Missed, d)
		}
	}
	return result, firstErr
}

func (r *ProductRepository) Insert(ctx context.Context, product *sales.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return mapError(err, "product", product.ID)
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	var product sales.Product
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&product)
	if err != nil {
		return nil, mapError(err, "product", id)
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, search string, page sales.PageRequest) ([]sales.Product, int64, error) {
	return findPage[sales.Product](ctx, r.collection, searchFilter(search, "name", "reference"), page, bson.D{{Key: "id", Value: 1}})
}

// UpdateDetails altera os campos editáveis; o estoque nunca é tocado aqui
func (r *ProductRepository) UpdateDetails(ctx context.Context, id int64, details catalog.ProductDetails) (*sales.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":        details.Name,
		"reference":   details.Reference,
		"description": details.Description,
		"price":       details.Price,
		"imageUrl":    details.ImageURL,
		"updatedAt":   r.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product sales.Product
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&product); err != nil {
		return nil, mapError(err, "product", id)
	}
	return &product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return mapError(err, "product", id)
	}
	if res.DeletedCount == 0 {
		return sales.NotFound("product", id)
	}
	return nil
}
