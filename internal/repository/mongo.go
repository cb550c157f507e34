package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/talkincode/productapi/internal/domain"
)

// Connect opens a client to uri and verifies it with a ping within timeout
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}
	return client, nil
}

// MongoProductRepository is the MongoDB implementation of ProductRepository
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository over the products collection of db
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(domain.Product{}.CollectionName())}
}

var _ ProductRepository = (*MongoProductRepository)(nil)

// EnsureIndexes creates the secondary indexes used by lookups on name
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	return errors.Wrap(err, "create product indexes")
}

func (r *MongoProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	products := make([]domain.Product, 0)
	if err := cur.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := storageNow()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		p.ID = primitive.NilObjectID
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, fields domain.ProductFields) (*domain.Product, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	set := bson.D{}
	if fields.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *fields.Name})
	}
	if fields.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *fields.Price})
	}
	if fields.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *fields.Image})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: storageNow()})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p domain.Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "update product %s", id.Hex())
	}
	return &p, nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "delete product %s", id.Hex())
	}
	return &p, nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.EstimatedDocumentCount(ctx)
	return n, errors.Wrap(err, "count products")
}

// storageNow matches the millisecond precision of BSON datetimes
func storageNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
