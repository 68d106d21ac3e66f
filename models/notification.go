package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

type NotificationActionType string

const (
	ActionOKRCreated          NotificationActionType = "okr_created"
	ActionOKRUpdated          NotificationActionType = "okr_updated"
	ActionOKRDeleted          NotificationActionType = "okr_deleted"
	ActionCheckInSubmitted    NotificationActionType = "checkin_submitted"
	ActionBadgeEarned         NotificationActionType = "badge_earned"
	ActionTeamAssignment      NotificationActionType = "team_assignment"
	ActionDeadlineApproaching NotificationActionType = "deadline_approaching"
)

type Notification struct {
	ID           primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID     `json:"user_id" bson:"user_id"`
	Type         NotificationActionType `json:"type" bson:"type"`
	Title        string                 `json:"title" bson:"title"`
	Message      string                 `json:"message" bson:"message"`
	RelatedID    *primitive.ObjectID    `json:"related_id,omitempty" bson:"related_id,omitempty"`
	RelatedModel string                 `json:"related_model,omitempty" bson:"related_model,omitempty"`
	ActionURL    string                 `json:"action_url" bson:"action_url"`
	Priority     NotificationPriority   `json:"priority" bson:"priority"`
	IsRead       bool                   `json:"is_read" bson:"is_read"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
}
