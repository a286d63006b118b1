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

type AppointmentRepo struct {
	collection *mongo.Collection
}

func NewAppointmentRepo(db *mongo.Database) *AppointmentRepo {
	return &AppointmentRepo{
		collection: db.Collection("appointments"),
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	a.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, a)
	return wrapWriteErr(err)
}

// FindByIdempotencyKey checks if this patient already booked with the key (duplicate prevention)
func (r *AppointmentRepo) FindByIdempotencyKey(ctx context.Context, patientID, key string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.collection.FindOne(ctx, bson.M{"patient_id": patientID, "idempotency_key": key}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "slot", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]models.Appointment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes for the appointments collection
func (r *AppointmentRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "date", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
