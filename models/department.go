package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Department struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name               string              `json:"name" bson:"name" validate:"required"`
	Code               string              `json:"code" bson:"code" validate:"required"` // unique, see database indexes
	HeadOfDepartmentID *primitive.ObjectID `json:"head_of_department_id,omitempty" bson:"head_of_department_id,omitempty"`
	IsActive           bool                `json:"is_active" bson:"is_active"`
}
