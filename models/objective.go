package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ObjectiveType string

const (
	ObjectiveCompany    ObjectiveType = "company"
	ObjectiveDepartment ObjectiveType = "department"
	ObjectiveTeam       ObjectiveType = "team"
	ObjectiveIndividual ObjectiveType = "individual"
)

type Confidence string

const (
	ConfidenceOnTrack  Confidence = "on-track"
	ConfidenceAtRisk   Confidence = "at-risk"
	ConfidenceOffTrack Confidence = "off-track"
)

type ObjectiveStatus string

const (
	StatusDraft     ObjectiveStatus = "draft"
	StatusActive    ObjectiveStatus = "active"
	StatusCompleted ObjectiveStatus = "completed"
	StatusArchived  ObjectiveStatus = "archived"
)

type Objective struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title        string              `json:"title" bson:"title" validate:"required"`
	Description  string              `json:"description" bson:"description"`
	Type         ObjectiveType       `json:"type" bson:"type" validate:"required,oneof=company department team individual"`
	OwnerID      primitive.ObjectID  `json:"owner_id" bson:"owner_id"`
	DepartmentID *primitive.ObjectID `json:"department_id,omitempty" bson:"department_id,omitempty"`
	TeamID       *primitive.ObjectID `json:"team_id,omitempty" bson:"team_id,omitempty"`
	AlignedToID  *primitive.ObjectID `json:"aligned_to_id,omitempty" bson:"aligned_to_id,omitempty"` // parent objective
	Progress     int                 `json:"progress" bson:"progress" validate:"min=0,max=100"`
	Confidence   Confidence          `json:"confidence" bson:"confidence"`
	Status       ObjectiveStatus     `json:"status" bson:"status"`
	DueDate      time.Time           `json:"due_date" bson:"due_date"`
	Attachments  []Attachment        `json:"attachments" bson:"attachments"`
	IsDeleted    bool                `json:"is_deleted" bson:"is_deleted"`
	Metadata     Metadata            `json:"metadata" bson:"metadata"`
}

type Attachment struct {
	FileID   primitive.ObjectID `bson:"file_id" json:"file_id"`   // GridFS file ID
	Filename string             `bson:"filename" json:"filename"` // Original filename
}

type Metadata struct {
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
