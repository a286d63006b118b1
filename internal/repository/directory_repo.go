package repository

import (
	"context"
	"errors"

	"seva-health/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DirectoryRepo reads the specialization and doctor collections.
type DirectoryRepo struct {
	specializations *mongo.Collection
	doctors         *mongo.Collection
}

func NewDirectoryRepo(db *mongo.Database) *DirectoryRepo {
	return &DirectoryRepo{
		specializations: db.Collection("specializations"),
		doctors:         db.Collection("doctors"),
	}
}

func (r *DirectoryRepo) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	cur, err := r.specializations.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]models.Specialization, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DirectoryRepo) FindSpecialization(ctx context.Context, id string) (*models.Specialization, error) {
	var s models.Specialization
	err := r.specializations.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *DirectoryRepo) ListDoctors(ctx context.Context, specializationID string) ([]models.Doctor, error) {
	cur, err := r.doctors.Find(ctx, bson.M{"specialization_id": specializationID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]models.Doctor, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DirectoryRepo) FindDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var d models.Doctor
	err := r.doctors.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Seed inserts the given directory when the specializations collection is empty.
func (r *DirectoryRepo) Seed(ctx context.Context, specs []models.Specialization, doctors []models.Doctor) (bool, error) {
	n, err := r.specializations.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if len(specs) > 0 {
		if _, err := r.specializations.InsertMany(ctx, specs); err != nil {
			return false, wrapWriteErr(err)
		}
	}
	if len(doctors) > 0 {
		if _, err := r.doctors.InsertMany(ctx, doctors); err != nil {
			return false, wrapWriteErr(err)
		}
	}
	return true, nil
}

// EnsureIndexes creates necessary indexes for the doctors collection
func (r *DirectoryRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.doctors.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "specialization_id", Value: 1}},
	})
	return err
}
