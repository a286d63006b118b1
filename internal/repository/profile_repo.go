package repository

import (
	"context"
	"errors"
	"time"

	"seva-health/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ProfileRepo stores profile documents keyed by identity id, so _id uniqueness
// is the one-profile-per-user constraint.
type ProfileRepo struct {
	collection *mongo.Collection
}

func NewProfileRepo(db *mongo.Database) *ProfileRepo {
	return &ProfileRepo{
		collection: db.Collection("profiles"),
	}
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.collection.InsertOne(ctx, p)
	return wrapWriteErr(err)
}

func (r *ProfileRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
