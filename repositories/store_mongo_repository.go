package repositories

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"storefinder/models"
	"storefinder/utils/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StoreMongoRepository struct {
	stores  *mongo.Collection
	reviews *mongo.Collection
}

func NewStoreMongoRepository(db *mongo.Database) *StoreMongoRepository {
	stores := db.Collection("stores")

	// Text index over name+description and 2dsphere on location
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "slug", Value: 1}},
		},
	}
	_, err := stores.Indexes().CreateMany(context.Background(), indexes)
	if err != nil {
		log.Printf("Failed to create indexes on stores: %v", err)
	}

	return &StoreMongoRepository{
		stores:  stores,
		reviews: db.Collection("reviews"),
	}
}

func (r *StoreMongoRepository) Create(ctx context.Context, store *models.Store) (string, error) {
	result, err := r.stores.InsertOne(ctx, store)
	if err != nil {
		return "", errors.Wrap(err, "DB_ERROR", "failed to create store in database", errors.ErrInternal.Status)
	}
	store.ID = result.InsertedID.(primitive.ObjectID)
	return store.ID.Hex(), nil
}

func (r *StoreMongoRepository) Update(ctx context.Context, id string, store *models.Store) (*models.Store, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"name":        store.Name,
			"slug":        store.Slug,
			"description": store.Description,
			"tags":        store.Tags,
			"location":    store.Location,
			"photo":       store.Photo,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Store
	err = r.stores.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "DB_ERROR", "failed to update store", errors.ErrInternal.Status)
	}
	return &updated, nil
}

func (r *StoreMongoRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	var store models.Store
	err = r.stores.FindOne(ctx, bson.M{"_id": objID}).Decode(&store)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	return &store, nil
}

func (r *StoreMongoRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.stores.FindOne(ctx, bson.M{"slug": slug}).Decode(&store)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	return &store, nil
}

func (r *StoreMongoRepository) Page(ctx context.Context, skip, limit int64) ([]models.Store, error) {
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created", Value: -1}})
	cursor, err := r.stores.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to list stores", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var stores []models.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode stores", errors.ErrInternal.Status)
	}
	return stores, nil
}

func (r *StoreMongoRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.stores.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "DB_ERROR", "failed to count stores", errors.ErrInternal.Status)
	}
	return count, nil
}

func (r *StoreMongoRepository) CountSlugLike(ctx context.Context, base string) (int64, error) {
	pattern := fmt.Sprintf("^(%s)(-[0-9]*)?$", regexp.QuoteMeta(base))
	filter := bson.M{"slug": primitive.Regex{Pattern: pattern, Options: "i"}}
	count, err := r.stores.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "DB_ERROR", "failed to count slugs", errors.ErrInternal.Status)
	}
	return count, nil
}

func (r *StoreMongoRepository) ByTag(ctx context.Context, tag string) ([]models.Store, error) {
	var tagQuery any = tag
	if tag == "" {
		// "any": every store that carries at least one tag
		tagQuery = bson.M{"$exists": true, "$not": bson.M{"$size": 0}}
	}
	cursor, err := r.stores.Find(ctx, bson.M{"tags": tagQuery})
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to query stores by tag", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var stores []models.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode stores", errors.ErrInternal.Status)
	}
	return stores, nil
}

func (r *StoreMongoRepository) ByIDs(ctx context.Context, ids []string) ([]models.Store, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	cursor, err := r.stores.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to query stores by ids", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var stores []models.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode stores", errors.ErrInternal.Status)
	}
	return stores, nil
}

func (r *StoreMongoRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.stores.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to aggregate tags", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var tags []models.TagCount
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode tag counts", errors.ErrInternal.Status)
	}
	return tags, nil
}

func (r *StoreMongoRepository) Search(ctx context.Context, query string, limit int64) ([]models.Store, error) {
	filter := bson.M{"$text": bson.M{"$search": query}}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(limit)
	cursor, err := r.stores.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to search stores", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var stores []models.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode search results", errors.ErrInternal.Status)
	}
	return stores, nil
}

func (r *StoreMongoRepository) Near(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int64) ([]models.StoreSummary, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": maxDistanceMeters,
			},
		},
	}
	opts := options.Find().
		SetProjection(bson.M{"slug": 1, "name": 1, "description": 1, "location": 1, "photo": 1}).
		SetLimit(limit)
	cursor, err := r.stores.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to query nearby stores", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var stores []models.StoreSummary
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode nearby stores", errors.ErrInternal.Status)
	}
	return stores, nil
}

func (r *StoreMongoRepository) TopRated(ctx context.Context, minReviews, limit int) ([]models.RatedStore, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "reviews",
			"localField":   "_id",
			"foreignField": "store",
			"as":           "reviews",
		}}},
		// reviews.<n-1> exists means the store has at least n reviews
		{{Key: "$match", Value: bson.M{
			"reviews." + strconv.Itoa(minReviews-1): bson.M{"$exists": true},
		}}},
		{{Key: "$project", Value: bson.M{
			"name":           "$$ROOT.name",
			"slug":           "$$ROOT.slug",
			"photo":          "$$ROOT.photo",
			"review_count":   bson.M{"$size": "$reviews"},
			"average_rating": bson.M{"$avg": "$reviews.rating"},
		}}},
		{{Key: "$sort", Value: bson.M{"average_rating": 1}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.stores.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to aggregate top stores", errors.ErrInternal.Status)
	}
	defer cursor.Close(ctx)
	var rated []models.RatedStore
	if err := cursor.All(ctx, &rated); err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to decode top stores", errors.ErrInternal.Status)
	}
	return rated, nil
}

func (r *StoreMongoRepository) AddReview(ctx context.Context, review *models.Review) error {
	result, err := r.reviews.InsertOne(ctx, review)
	if err != nil {
		return errors.Wrap(err, "DB_ERROR", "failed to create review", errors.ErrInternal.Status)
	}
	review.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}
