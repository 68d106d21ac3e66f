package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KeyResult progress and confidence are always re-derived from the numeric
// bounds by the progress service, never hand-edited.
type KeyResult struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ObjectiveID   primitive.ObjectID `json:"objective_id" bson:"objective_id" validate:"required"`
	Title         string             `json:"title" bson:"title" validate:"required"`
	OwnerID       primitive.ObjectID `json:"owner_id" bson:"owner_id"`
	StartingValue float64            `json:"starting_value" bson:"starting_value"`
	TargetValue   float64            `json:"target_value" bson:"target_value"`
	CurrentValue  float64            `json:"current_value" bson:"current_value"`
	Unit          string             `json:"unit" bson:"unit"`
	Progress      int                `json:"progress" bson:"progress"`
	Confidence    Confidence         `json:"confidence" bson:"confidence"`
	LastCheckinAt *time.Time         `json:"last_checkin_at,omitempty" bson:"last_checkin_at,omitempty"`
	IsDeleted     bool               `json:"is_deleted" bson:"is_deleted"`
	Metadata      Metadata           `json:"metadata" bson:"metadata"`
}
