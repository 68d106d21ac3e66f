package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Team struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name         string              `json:"name" bson:"name" validate:"required"` // unique, see database indexes
	DepartmentID primitive.ObjectID  `json:"department_id" bson:"department_id" validate:"required"`
	LeaderID     *primitive.ObjectID `json:"leader_id,omitempty" bson:"leader_id,omitempty"`
	MemberCount  int                 `json:"member_count" bson:"member_count"` // derived from users.team_ids
	IsActive     bool                `json:"is_active" bson:"is_active"`
}
