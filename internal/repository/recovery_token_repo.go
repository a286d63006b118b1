package repository

import (
	"context"
	"errors"
	"time"

	"seva-health/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type RecoveryTokenRepo struct {
	collection *mongo.Collection
}

func NewRecoveryTokenRepo(db *mongo.Database) *RecoveryTokenRepo {
	return &RecoveryTokenRepo{
		collection: db.Collection("recovery_tokens"),
	}
}

func (r *RecoveryTokenRepo) Create(ctx context.Context, token *models.RecoveryToken) error {
	token.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, token)
	return wrapWriteErr(err)
}

func (r *RecoveryTokenRepo) FindByToken(ctx context.Context, token string) (*models.RecoveryToken, error) {
	var rt models.RecoveryToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&rt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

func (r *RecoveryTokenRepo) MarkUsed(ctx context.Context, token string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"token": token}, bson.M{
		"$set": bson.M{"is_used": true},
	})
	return err
}

// CountRecentByEmail counts how many tokens were created for an email in the given duration.
// Used for rate limiting.
func (r *RecoveryTokenRepo) CountRecentByEmail(ctx context.Context, email string, duration time.Duration) (int64, error) {
	since := time.Now().Add(-duration)
	return r.collection.CountDocuments(ctx, bson.M{
		"email":      email,
		"created_at": bson.M{"$gte": since},
	})
}

// EnsureIndexes creates necessary indexes for the recovery_tokens collection
func (r *RecoveryTokenRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
