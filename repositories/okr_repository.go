package repository

import (
	"context"
	"fmt"
	"io"
	"time"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OKRRepository interface {
	// Objective methods
	CreateObjective(ctx context.Context, objective *models.Objective) error
	GetObjectiveByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error)
	GetAllObjectives(ctx context.Context) ([]models.Objective, error)
	UpdateObjective(ctx context.Context, id primitive.ObjectID, objective *models.Objective) error
	SoftDeleteObjective(ctx context.Context, id primitive.ObjectID, updatedBy string) error
	SaveObjectiveRollup(ctx context.Context, id primitive.ObjectID, progress int, confidence models.Confidence) error
	CountTeamObjectivesOwned(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	// KeyResult methods
	CreateKeyResult(ctx context.Context, kr *models.KeyResult) error
	GetKeyResultByID(ctx context.Context, id primitive.ObjectID) (*models.KeyResult, error)
	FindKeyResultsByObjective(ctx context.Context, objectiveID primitive.ObjectID) ([]models.KeyResult, error)
	UpdateKeyResultValues(ctx context.Context, id primitive.ObjectID, starting, target, current float64, updatedBy string) error
	SaveKeyResultRollup(ctx context.Context, id primitive.ObjectID, progress int, confidence models.Confidence) error
	SaveKeyResultSnapshot(ctx context.Context, id primitive.ObjectID, current float64, progress int, confidence models.Confidence, checkinAt time.Time) error
	SoftDeleteKeyResult(ctx context.Context, id primitive.ObjectID, updatedBy string) error
	GetClient() *mongo.Client
	// GridFS methods
	UploadFile(ctx context.Context, filename string, fileData io.Reader, uploadedBy string, contentType string) (primitive.ObjectID, error)
	DownloadFile(ctx context.Context, fileID primitive.ObjectID) (*gridfs.DownloadStream, error)
	DeleteFile(ctx context.Context, fileID primitive.ObjectID) error
	// Attachment methods
	AddAttachment(ctx context.Context, objectiveID primitive.ObjectID, attachment models.Attachment, updatedBy string) error
	RemoveAttachment(ctx context.Context, objectiveID primitive.ObjectID, fileID primitive.ObjectID, updatedBy string) error
	// Analytics methods
	GetObjectivePerformanceStats(ctx context.Context) ([]bson.M, error)
}

type okrRepository struct {
	objectives *mongo.Collection
	keyResults *mongo.Collection
	bucket     *gridfs.Bucket
}

func NewOKRRepository(db *mongo.Database) OKRRepository {
	// Create GridFS bucket for objective attachments
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		panic(fmt.Sprintf("Failed to create GridFS bucket: %v", err))
	}

	return &okrRepository{
		objectives: db.Collection("objectives"),
		keyResults: db.Collection("key_results"),
		bucket:     bucket,
	}
}

func (r *okrRepository) CreateObjective(ctx context.Context, objective *models.Objective) error {
	objective.ID = primitive.NewObjectID()

	_, err := r.objectives.InsertOne(ctx, objective)
	return err
}

func (r *okrRepository) GetObjectiveByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error) {
	var objective models.Objective
	err := r.objectives.FindOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}).Decode(&objective)
	if err != nil {
		return nil, err
	}

	return &objective, nil
}

func (r *okrRepository) GetAllObjectives(ctx context.Context) ([]models.Objective, error) {
	cursor, err := r.objectives.Find(ctx, bson.M{"is_deleted": bson.M{"$ne": true}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var objectives []models.Objective
	if err = cursor.All(ctx, &objectives); err != nil {
		return nil, err
	}

	return objectives, nil
}

func (r *okrRepository) UpdateObjective(ctx context.Context, id primitive.ObjectID, objective *models.Objective) error {
	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.objectives.UpdateOne(ctx, filter, bson.M{"$set": objective})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no objective found with id %s", id.Hex())
	}

	return nil
}

func (r *okrRepository) SoftDeleteObjective(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"is_deleted":          true,
			"status":              models.StatusArchived,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.objectives.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no objective found with id %s or already deleted", id.Hex())
	}

	return nil
}

// SaveObjectiveRollup writes only the derived progress/confidence pair so a
// rollup never clobbers concurrent edits to the rest of the document.
func (r *okrRepository) SaveObjectiveRollup(ctx context.Context, id primitive.ObjectID, progress int, confidence models.Confidence) error {
	update := bson.M{
		"$set": bson.M{
			"progress":            progress,
			"confidence":          confidence,
			"metadata.updated_at": time.Now(),
		},
	}

	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.objectives.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no objective found with id %s", id.Hex())
	}

	return nil
}

func (r *okrRepository) CountTeamObjectivesOwned(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"type":       models.ObjectiveTeam,
		"owner_id":   ownerID,
		"is_deleted": bson.M{"$ne": true},
	}

	return r.objectives.CountDocuments(ctx, filter)
}

func (r *okrRepository) CreateKeyResult(ctx context.Context, kr *models.KeyResult) error {
	kr.ID = primitive.NewObjectID()

	_, err := r.keyResults.InsertOne(ctx, kr)
	return err
}

func (r *okrRepository) GetKeyResultByID(ctx context.Context, id primitive.ObjectID) (*models.KeyResult, error) {
	var kr models.KeyResult
	err := r.keyResults.FindOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}).Decode(&kr)
	if err != nil {
		return nil, err
	}

	return &kr, nil
}

func (r *okrRepository) FindKeyResultsByObjective(ctx context.Context, objectiveID primitive.ObjectID) ([]models.KeyResult, error) {
	cursor, err := r.keyResults.Find(ctx, bson.M{"objective_id": objectiveID, "is_deleted": bson.M{"$ne": true}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var keyResults []models.KeyResult
	if err = cursor.All(ctx, &keyResults); err != nil {
		return nil, err
	}

	return keyResults, nil
}

func (r *okrRepository) UpdateKeyResultValues(ctx context.Context, id primitive.ObjectID, starting, target, current float64, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"starting_value":      starting,
			"target_value":        target,
			"current_value":       current,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.keyResults.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no key result found with id %s", id.Hex())
	}

	return nil
}

func (r *okrRepository) SaveKeyResultRollup(ctx context.Context, id primitive.ObjectID, progress int, confidence models.Confidence) error {
	update := bson.M{
		"$set": bson.M{
			"progress":            progress,
			"confidence":          confidence,
			"metadata.updated_at": time.Now(),
		},
	}

	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.keyResults.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no key result found with id %s", id.Hex())
	}

	return nil
}

// SaveKeyResultSnapshot persists the fields a check-in mutates on its parent
// key result in one write.
func (r *okrRepository) SaveKeyResultSnapshot(ctx context.Context, id primitive.ObjectID, current float64, progress int, confidence models.Confidence, checkinAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"current_value":       current,
			"progress":            progress,
			"confidence":          confidence,
			"last_checkin_at":     checkinAt,
			"metadata.updated_at": time.Now(),
		},
	}

	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.keyResults.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no key result found with id %s", id.Hex())
	}

	return nil
}

func (r *okrRepository) SoftDeleteKeyResult(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"is_deleted":          true,
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	filter := bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}
	result, err := r.keyResults.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no key result found with id %s or already deleted", id.Hex())
	}

	return nil
}

func (r *okrRepository) GetClient() *mongo.Client {
	return r.objectives.Database().Client()
}

// GridFS methods
func (r *okrRepository) UploadFile(ctx context.Context, filename string, fileData io.Reader, uploadedBy string, contentType string) (primitive.ObjectID, error) {
	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"uploadedBy":  uploadedBy,
		"uploadedAt":  time.Now(),
		"contentType": contentType,
	})

	fileID, err := r.bucket.UploadFromStream(filename, fileData, uploadOpts)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to upload file to GridFS: %v", err)
	}

	return fileID, nil
}

func (r *okrRepository) DownloadFile(ctx context.Context, fileID primitive.ObjectID) (*gridfs.DownloadStream, error) {
	downloadStream, err := r.bucket.OpenDownloadStream(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to download file from GridFS: %v", err)
	}

	return downloadStream, nil
}

func (r *okrRepository) DeleteFile(ctx context.Context, fileID primitive.ObjectID) error {
	err := r.bucket.Delete(fileID)
	if err != nil {
		return err
	}

	return nil
}

func (r *okrRepository) AddAttachment(ctx context.Context, objectiveID primitive.ObjectID, attachment models.Attachment, updatedBy string) error {
	filter := bson.M{"_id": objectiveID, "is_deleted": bson.M{"$ne": true}}
	update := bson.M{
		"$push": bson.M{
			"attachments": attachment,
		},
		"$set": bson.M{
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.objectives.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no objective found with id %s", objectiveID.Hex())
	}

	return nil
}

// Get objective statistics grouped by confidence
func (r *okrRepository) GetObjectivePerformanceStats(ctx context.Context) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		// Match non-deleted objectives
		bson.D{{Key: "$match", Value: bson.M{"is_deleted": bson.M{"$ne": true}}}},

		// Add computed fields
		bson.D{{Key: "$addFields", Value: bson.M{
			"days_until_due": bson.M{
				"$divide": []interface{}{
					bson.M{"$subtract": []interface{}{"$due_date", "$$NOW"}},
					1000 * 60 * 60 * 24, // Convert milliseconds to days
				},
			},
			"attachments_count": bson.M{
				"$cond": bson.M{
					"if":   bson.M{"$isArray": "$attachments"},
					"then": bson.M{"$size": "$attachments"},
					"else": 0,
				},
			},
		}}},

		// Group by confidence
		bson.D{{Key: "$group", Value: bson.M{
			"_id":                "$confidence",
			"count":              bson.M{"$sum": 1},
			"avg_progress":       bson.M{"$avg": "$progress"},
			"total_attachments":  bson.M{"$sum": "$attachments_count"},
			"avg_days_until_due": bson.M{"$avg": "$days_until_due"},
		}}},

		// Sort by count descending
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := r.objectives.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *okrRepository) RemoveAttachment(ctx context.Context, objectiveID primitive.ObjectID, fileID primitive.ObjectID, updatedBy string) error {
	filter := bson.M{"_id": objectiveID, "is_deleted": bson.M{"$ne": true}}
	update := bson.M{
		"$pull": bson.M{
			"attachments": bson.M{"file_id": fileID},
		},
		"$set": bson.M{
			"metadata.updated_at": time.Now(),
			"metadata.updated_by": updatedBy,
		},
	}

	result, err := r.objectives.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no objective found with id %s", objectiveID.Hex())
	}

	return nil
}
