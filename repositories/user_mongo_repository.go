package repositories

import (
	"context"
	"log"
	"time"

	"storefinder/models"
	"storefinder/utils/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserMongoRepository struct {
	collection *mongo.Collection
}

func NewUserMongoRepository(db *mongo.Database) *UserMongoRepository {
	collection := db.Collection("users")

	// Ensure unique index on email
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.Background(), indexModel)
	if err != nil {
		log.Printf("Failed to create unique index on users: %v", err)
	}

	return &UserMongoRepository{collection: collection}
}

func (r *UserMongoRepository) Create(ctx context.Context, user *models.User) (string, error) {
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errors.ErrConflict
		}
		return "", errors.Wrap(err, "DB_ERROR", "failed to create user in database", errors.ErrInternal.Status)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return user.ID.Hex(), nil
}

func (r *UserMongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	return &user, nil
}

func (r *UserMongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	return &user, nil
}

func (r *UserMongoRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{
		"reset_token":  token,
		"reset_expiry": bson.M{"$gt": now},
	}).Decode(&user)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	return &user, nil
}

func (r *UserMongoRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.ErrNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"reset_token":  token,
			"reset_expiry": expiry,
		},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		log.Printf("Failed to set reset token for user %s: %v", id, err)
		return errors.ErrPersistenceFailed
	}
	return nil
}

func (r *UserMongoRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.ErrNotFound
	}
	// New hash and reset-state cleanup land in a single update so a consumed
	// token can never be replayed against the old record.
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash},
		"$unset": bson.M{"reset_token": "", "reset_expiry": ""},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		log.Printf("Failed to update password for user %s: %v", id, err)
		return errors.ErrPersistenceFailed
	}
	return nil
}

func (r *UserMongoRepository) UpdateAccount(ctx context.Context, id, name, email string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	update := bson.M{
		"$set": bson.M{"name": name, "email": email},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.ErrConflict
		}
		return nil, errors.Wrap(err, "DB_ERROR", "failed to update account", errors.ErrInternal.Status)
	}
	return &user, nil
}

func (r *UserMongoRepository) ToggleHeart(ctx context.Context, id, storeID string, add bool) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	operator := "$pull"
	if add {
		operator = "$addToSet"
	}
	update := bson.M{
		operator: bson.M{"hearts": storeID},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&user)
	if err != nil {
		return nil, errors.Wrap(err, "DB_ERROR", "failed to toggle heart", errors.ErrInternal.Status)
	}
	return &user, nil
}
