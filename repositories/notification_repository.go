package repository

import (
	"context"
	"fmt"
	"time"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{
		collection: db.Collection("notifications"),
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead is scoped to the recipient so one user cannot mark another
// user's notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no notification found with id %s for this user", id.Hex())
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"user_id": userID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}
