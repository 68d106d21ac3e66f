package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateOKRIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	objectiveIndexes := []mongo.IndexModel{
		// BADGES: team objectives owned per user
		// Used by: CountTeamObjectivesOwned
		{
			Keys: bson.D{
				{Key: "is_deleted", Value: 1},
				{Key: "type", Value: 1},
				{Key: "owner_id", Value: 1},
			},
			Options: options.Index().SetName("idx_is_deleted_type_owner"),
		},

		// UPDATE OPERATIONS: _id + is_deleted combination
		// Used by: SoftDelete, rollup writes, attachment operations
		{
			Keys: bson.D{
				{Key: "_id", Value: 1},
				{Key: "is_deleted", Value: 1},
			},
			Options: options.Index().SetName("idx_id_is_deleted"),
		},
	}

	if _, err := db.Collection("objectives").Indexes().CreateMany(ctx, objectiveIndexes); err != nil {
		return fmt.Errorf("failed to create objective indexes: %v", err)
	}

	keyResultIndexes := []mongo.IndexModel{
		// ROLLUP: key result lookup by parent objective
		// Used by: RecomputeObjective, FindKeyResultsByObjective
		{
			Keys: bson.D{
				{Key: "objective_id", Value: 1},
				{Key: "is_deleted", Value: 1},
			},
			Options: options.Index().SetName("idx_objective_id_is_deleted"),
		},
	}

	if _, err := db.Collection("key_results").Indexes().CreateMany(ctx, keyResultIndexes); err != nil {
		return fmt.Errorf("failed to create key result indexes: %v", err)
	}

	checkInIndexes := []mongo.IndexModel{
		// LATENESS: newest prior check-in per key result
		// Used by: FindLatestByKeyResult
		{
			Keys: bson.D{
				{Key: "key_result_id", Value: 1},
				{Key: "submitted_at", Value: -1},
			},
			Options: options.Index().SetName("idx_key_result_id_submitted_at"),
		},
	}

	if _, err := db.Collection("check_ins").Indexes().CreateMany(ctx, checkInIndexes); err != nil {
		return fmt.Errorf("failed to create check-in indexes: %v", err)
	}

	notificationIndexes := []mongo.IndexModel{
		// INBOX: per-user listing, unread filter
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_id_is_read_created_at"),
		},
	}

	if _, err := db.Collection("notifications").Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("failed to create notification indexes: %v", err)
	}

	fmt.Println("OKR indexes created successfully")
	return nil
}

func CreateOrgIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		// FAN-OUT: active users by role
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().SetName("idx_role_is_active"),
		},

		// FAN-OUT: team membership lookups
		{
			Keys: bson.D{
				{Key: "team_ids", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().SetName("idx_team_ids_is_active"),
		},

		// FAN-OUT: department head lookups
		{
			Keys: bson.D{
				{Key: "department_ids", Value: 1},
				{Key: "role", Value: 1},
			},
			Options: options.Index().SetName("idx_department_ids_role"),
		},
	}

	if _, err := db.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	teamIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_name_unique").SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "department_id", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().SetName("idx_department_id_is_active"),
		},
	}

	if _, err := db.Collection("teams").Indexes().CreateMany(ctx, teamIndexes); err != nil {
		return fmt.Errorf("failed to create team indexes: %v", err)
	}

	departmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("idx_code_unique").SetUnique(true),
		},
	}

	if _, err := db.Collection("departments").Indexes().CreateMany(ctx, departmentIndexes); err != nil {
		return fmt.Errorf("failed to create department indexes: %v", err)
	}

	fmt.Println("Org indexes created successfully")
	return nil
}
