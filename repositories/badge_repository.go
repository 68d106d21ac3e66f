package repository

import (
	"context"
	"time"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BadgeRepository interface {
	HasBadge(ctx context.Context, userID primitive.ObjectID, name models.BadgeName) (bool, error)
	Award(ctx context.Context, badge *models.UserBadge) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserBadge, error)
}

type badgeRepository struct {
	collection *mongo.Collection
}

func NewBadgeRepository(db *mongo.Database) BadgeRepository {
	return &badgeRepository{
		collection: db.Collection("user_badges"),
	}
}

func (r *badgeRepository) HasBadge(ctx context.Context, userID primitive.ObjectID, name models.BadgeName) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "name": name})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *badgeRepository) Award(ctx context.Context, badge *models.UserBadge) error {
	badge.ID = primitive.NewObjectID()
	badge.EarnedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, badge)
	return err
}

func (r *badgeRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserBadge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "earned_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var badges []models.UserBadge
	if err = cursor.All(ctx, &badges); err != nil {
		return nil, err
	}

	return badges, nil
}
