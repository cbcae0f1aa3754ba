package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/munaray/idealo/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository keeps one document per product URL.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo connects, pings and makes sure productUrl is uniquely indexed.
func ConnectMongo(ctx context.Context, uri, dbName, collName string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	repo := &MongoRepository{client: client, coll: client.Database(dbName).Collection(collName)}
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return repo, nil
}

func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "productUrl", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure productUrl index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Upsert is a single-document update, so concurrent writers of one URL never
// interleave. Two writers racing to insert the same new URL can trip the
// unique index; the loser retries once as an update.
func (r *MongoRepository) Upsert(ctx context.Context, productURL string, offers []models.Offer) (UpsertResult, error) {
	now := time.Now().UTC()
	filter := bson.M{"productUrl": productURL}
	update := bson.M{
		"$set":         bson.M{"offers": nonNil(offers), "lastUpdated": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		res, err = r.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return 0, storeErr("upsert", productURL, err)
	}
	if res.UpsertedCount > 0 {
		return Created, nil
	}
	return Updated, nil
}

func (r *MongoRepository) Get(ctx context.Context, productURL string) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, bson.M{"productUrl": productURL}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", productURL, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("get", productURL, err)
	}
	return &p, nil
}

func (r *MongoRepository) List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}, {Key: "_id", Value: 1}})
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit))
		if filters.Offset > 0 {
			opts.SetSkip(int64(filters.Offset))
		}
	}

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storeErr("list", "", err)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, storeErr("list", "", err)
	}
	return products, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, storeErr("count", "", err)
	}
	return int(n), nil
}
