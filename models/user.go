package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleTeamLead UserRole = "team_lead"
	RoleMember   UserRole = "member"
)

type User struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name          string               `json:"name" bson:"name" validate:"required"`
	Email         string               `json:"email" bson:"email" validate:"required,email"`
	Role          UserRole             `json:"role" bson:"role" validate:"required,oneof=admin manager team_lead member"`
	DepartmentIDs []primitive.ObjectID `json:"department_ids" bson:"department_ids"`
	TeamIDs       []primitive.ObjectID `json:"team_ids" bson:"team_ids"`
	IsActive      bool                 `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
}
