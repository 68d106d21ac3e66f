package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BadgeName string

const (
	BadgeTeamPlayer BadgeName = "team-player"
	BadgeLeader     BadgeName = "leader"
)

type UserBadge struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	Name        BadgeName          `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	EarnedAt    time.Time          `json:"earned_at" bson:"earned_at"`
}
