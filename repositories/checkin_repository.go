package repository

import (
	"context"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CheckInRepository interface {
	Create(ctx context.Context, checkin *models.CheckIn) error
	FindLatestByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (*models.CheckIn, error)
	FindByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) ([]models.CheckIn, error)
	CountByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int64, error)
	CountLateByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int64, error)
}

type checkInRepository struct {
	collection *mongo.Collection
}

func NewCheckInRepository(db *mongo.Database) CheckInRepository {
	return &checkInRepository{
		collection: db.Collection("check_ins"),
	}
}

func (r *checkInRepository) Create(ctx context.Context, checkin *models.CheckIn) error {
	checkin.ID = primitive.NewObjectID()

	_, err := r.collection.InsertOne(ctx, checkin)
	return err
}

// FindLatestByKeyResult returns the most recent check-in for the key result,
// or mongo.ErrNoDocuments when none exists yet.
func (r *checkInRepository) FindLatestByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (*models.CheckIn, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "submitted_at", Value: -1}})

	var checkin models.CheckIn
	err := r.collection.FindOne(ctx, bson.M{"key_result_id": keyResultID}, opts).Decode(&checkin)
	if err != nil {
		return nil, err
	}

	return &checkin, nil
}

func (r *checkInRepository) FindByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) ([]models.CheckIn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"key_result_id": keyResultID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checkins []models.CheckIn
	if err = cursor.All(ctx, &checkins); err != nil {
		return nil, err
	}

	return checkins, nil
}

func (r *checkInRepository) CountByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"key_result_id": keyResultID})
}

func (r *checkInRepository) CountLateByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"key_result_id": keyResultID, "is_late": true})
}
