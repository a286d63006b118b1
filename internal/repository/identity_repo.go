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

type IdentityRepo struct {
	collection *mongo.Collection
}

func NewIdentityRepo(db *mongo.Database) *IdentityRepo {
	return &IdentityRepo{
		collection: db.Collection("identities"),
	}
}

func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *IdentityRepo) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *IdentityRepo) findOne(ctx context.Context, filter bson.M) (*models.Identity, error) {
	var ident models.Identity
	err := r.collection.FindOne(ctx, filter).Decode(&ident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &ident, nil
}

func (r *IdentityRepo) Create(ctx context.Context, ident *models.Identity) error {
	ident.CreatedAt = time.Now()
	ident.UpdatedAt = ident.CreatedAt
	_, err := r.collection.InsertOne(ctx, ident)
	return wrapWriteErr(err)
}

func (r *IdentityRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_hash": hash,
			"updated_at":    time.Now(),
		},
	})
	return err
}

func (r *IdentityRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates necessary indexes for the identities collection
func (r *IdentityRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
