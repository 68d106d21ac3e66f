package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckIn rows are append-only: a new check-in never mutates past check-ins,
// it only updates the snapshot fields on its parent key result.
type CheckIn struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	KeyResultID   primitive.ObjectID `json:"key_result_id" bson:"key_result_id"`
	SubmittedByID primitive.ObjectID `json:"submitted_by_id" bson:"submitted_by_id"`
	CurrentValue  float64            `json:"current_value" bson:"current_value"`
	Progress      int                `json:"progress" bson:"progress"`
	Confidence    Confidence         `json:"confidence" bson:"confidence" validate:"omitempty,oneof=on-track at-risk off-track"`
	Note          string             `json:"note" bson:"note"`
	IsLate        bool               `json:"is_late" bson:"is_late"`
	SubmittedAt   time.Time          `json:"submitted_at" bson:"submitted_at"`
}

// CheckInStats summarizes the check-in history of one key result.
type CheckInStats struct {
	Total          int     `json:"total"`
	Late           int     `json:"late"`
	ComplianceRate int     `json:"compliance_rate"`
	MeanValue      float64 `json:"mean_value"`
	MinValue       float64 `json:"min_value"`
	MaxValue       float64 `json:"max_value"`
}
