package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"okrproject/models"
	repository "okrproject/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

type OKRService interface {
	CreateObjective(ctx context.Context, actorID primitive.ObjectID, objective *models.Objective) (*models.Objective, error)
	GetObjectiveByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error)
	GetAllObjectives(ctx context.Context) ([]models.Objective, error)
	UpdateObjective(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID, objective *models.Objective) (*models.Objective, error)
	SoftDeleteObjective(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID) error
	// Key result methods
	CreateKeyResult(ctx context.Context, actorID primitive.ObjectID, kr *models.KeyResult) (*models.KeyResult, error)
	UpdateKeyResultValues(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID, starting, target, current float64) (*models.KeyResult, error)
	SoftDeleteKeyResult(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID) error
	// File attachment methods
	UploadAttachment(ctx context.Context, objectiveID primitive.ObjectID, filename string, fileData io.Reader, updatedBy string, contentType string) (*models.Attachment, error)
	DownloadAttachment(ctx context.Context, fileID primitive.ObjectID) (*gridfs.DownloadStream, error)
	DeleteAttachment(ctx context.Context, objectiveID, fileID primitive.ObjectID, updatedBy string) error
	TransferAttachmentBetweenObjectives(ctx context.Context, fromObjectiveID, toObjectiveID, fileID primitive.ObjectID, updatedBy string) error
	// Analytics methods
	GetObjectivePerformanceStats(ctx context.Context) ([]bson.M, error)
}

type okrService struct {
	okrRepo         repository.OKRRepository
	progressService ProgressService
	notifications   NotificationService
	badges          BadgeService
}

func NewOKRService(okrRepo repository.OKRRepository, progressService ProgressService, notifications NotificationService, badges BadgeService) OKRService {
	return &okrService{
		okrRepo:         okrRepo,
		progressService: progressService,
		notifications:   notifications,
		badges:          badges,
	}
}

func (s *okrService) CreateObjective(ctx context.Context, actorID primitive.ObjectID, objective *models.Objective) (*models.Objective, error) {
	now := time.Now()
	objective.Metadata.CreatedBy = actorID.Hex()
	objective.Metadata.UpdatedBy = actorID.Hex()
	objective.Metadata.CreatedAt = now
	objective.Metadata.UpdatedAt = now
	objective.IsDeleted = false

	// A fresh objective has no measurable children yet.
	objective.Progress = 0
	objective.Confidence = models.ConfidenceOnTrack
	if objective.Status == "" {
		objective.Status = models.StatusActive
	}
	if objective.OwnerID.IsZero() {
		objective.OwnerID = actorID
	}
	if objective.Attachments == nil {
		objective.Attachments = []models.Attachment{}
	}

	if err := s.okrRepo.CreateObjective(ctx, objective); err != nil {
		return nil, err
	}

	// Fan-out and badge evaluation never fail the create.
	s.notifications.NotifyObjectiveEvent(ctx, objective, models.ActionOKRCreated, actorID)
	s.badges.EvaluateObjectiveBadges(ctx, objective.OwnerID)

	return objective, nil
}

func (s *okrService) GetObjectiveByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error) {
	return s.okrRepo.GetObjectiveByID(ctx, id)
}

func (s *okrService) GetAllObjectives(ctx context.Context) ([]models.Objective, error) {
	return s.okrRepo.GetAllObjectives(ctx)
}

func (s *okrService) UpdateObjective(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID, objective *models.Objective) (*models.Objective, error) {
	existing, err := s.okrRepo.GetObjectiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update fields if provided; progress and confidence stay derived.
	if objective.Title != "" {
		existing.Title = objective.Title
	}
	if objective.Description != "" {
		existing.Description = objective.Description
	}
	if !objective.DueDate.IsZero() {
		existing.DueDate = objective.DueDate
	}
	if objective.Status != "" {
		existing.Status = objective.Status
	}
	if objective.AlignedToID != nil {
		existing.AlignedToID = objective.AlignedToID
	}
	existing.Metadata.UpdatedBy = actorID.Hex()
	existing.Metadata.UpdatedAt = time.Now()

	if err := s.okrRepo.UpdateObjective(ctx, id, existing); err != nil {
		return nil, err
	}

	s.notifications.NotifyObjectiveEvent(ctx, existing, models.ActionOKRUpdated, actorID)

	return existing, nil
}

func (s *okrService) SoftDeleteObjective(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID) error {
	// Fetch before deleting so fan-out still sees the hierarchy fields.
	objective, err := s.okrRepo.GetObjectiveByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.okrRepo.SoftDeleteObjective(ctx, id, actorID.Hex()); err != nil {
		return err
	}

	s.notifications.NotifyObjectiveEvent(ctx, objective, models.ActionOKRDeleted, actorID)

	return nil
}

func (s *okrService) CreateKeyResult(ctx context.Context, actorID primitive.ObjectID, kr *models.KeyResult) (*models.KeyResult, error) {
	if _, err := s.okrRepo.GetObjectiveByID(ctx, kr.ObjectiveID); err != nil {
		return nil, fmt.Errorf("objective not found: %w", err)
	}

	now := time.Now()
	kr.Metadata.CreatedBy = actorID.Hex()
	kr.Metadata.UpdatedBy = actorID.Hex()
	kr.Metadata.CreatedAt = now
	kr.Metadata.UpdatedAt = now
	kr.IsDeleted = false
	if kr.OwnerID.IsZero() {
		kr.OwnerID = actorID
	}

	// The current value starts at the starting value, which yields progress
	// 0 unless the metric is degenerate.
	kr.CurrentValue = kr.StartingValue
	kr.Progress, kr.Confidence = ComputeKeyResultRollup(kr.StartingValue, kr.TargetValue, kr.CurrentValue)

	if err := s.okrRepo.CreateKeyResult(ctx, kr); err != nil {
		return nil, err
	}

	if _, _, err := s.progressService.RecomputeObjective(ctx, kr.ObjectiveID); err != nil {
		logrus.WithError(err).WithField("objective_id", kr.ObjectiveID.Hex()).
			Error("CreateKeyResult: objective rollup failed")
	}

	return kr, nil
}

// UpdateKeyResultValues persists new numeric bounds, then recomputes the key
// result rollup and only afterwards the parent objective, because the
// objective rollup reads the already-persisted key result rows.
func (s *okrService) UpdateKeyResultValues(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID, starting, target, current float64) (*models.KeyResult, error) {
	kr, err := s.okrRepo.GetKeyResultByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.okrRepo.UpdateKeyResultValues(ctx, id, starting, target, current, actorID.Hex()); err != nil {
		return nil, err
	}

	if _, _, err := s.progressService.RecomputeKeyResult(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to recompute key result: %w", err)
	}

	if _, _, err := s.progressService.RecomputeObjective(ctx, kr.ObjectiveID); err != nil {
		logrus.WithError(err).WithField("objective_id", kr.ObjectiveID.Hex()).
			Error("UpdateKeyResultValues: objective rollup failed")
	}

	return s.okrRepo.GetKeyResultByID(ctx, id)
}

func (s *okrService) SoftDeleteKeyResult(ctx context.Context, actorID primitive.ObjectID, id primitive.ObjectID) error {
	kr, err := s.okrRepo.GetKeyResultByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.okrRepo.SoftDeleteKeyResult(ctx, id, actorID.Hex()); err != nil {
		return err
	}

	if _, _, err := s.progressService.RecomputeObjective(ctx, kr.ObjectiveID); err != nil {
		logrus.WithError(err).WithField("objective_id", kr.ObjectiveID.Hex()).
			Error("SoftDeleteKeyResult: objective rollup failed")
	}

	return nil
}

func (s *okrService) UploadAttachment(ctx context.Context, objectiveID primitive.ObjectID, filename string, fileData io.Reader, updatedBy string, contentType string) (*models.Attachment, error) {
	// First: Verify that the objective exists
	_, err := s.okrRepo.GetObjectiveByID(ctx, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("objective not found: %v", err)
	}

	// Second: Upload file to GridFS
	fileID, err := s.okrRepo.UploadFile(ctx, filename, fileData, updatedBy, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %v", err)
	}

	attachment := models.Attachment{
		FileID:   fileID,
		Filename: filename,
	}

	// Third: Add attachment to objective document
	err = s.okrRepo.AddAttachment(ctx, objectiveID, attachment, updatedBy)
	if err != nil {
		// CLEANUP: Delete the uploaded file since adding attachment failed
		if cleanupErr := s.okrRepo.DeleteFile(context.Background(), fileID); cleanupErr != nil {
			logrus.WithError(cleanupErr).WithField("file_id", fileID.Hex()).
				Error("UploadAttachment: failed to clean up uploaded file")
		}

		return nil, fmt.Errorf("failed to add attachment to objective: %v", err)
	}

	return &attachment, nil
}

func (s *okrService) DownloadAttachment(ctx context.Context, fileID primitive.ObjectID) (*gridfs.DownloadStream, error) {
	return s.okrRepo.DownloadFile(ctx, fileID)
}

func (s *okrService) DeleteAttachment(ctx context.Context, objectiveID, fileID primitive.ObjectID, updatedBy string) error {
	// First: Verify that the objective exists and has the attachment
	objective, err := s.okrRepo.GetObjectiveByID(ctx, objectiveID)
	if err != nil {
		return fmt.Errorf("objective not found: %v", err)
	}

	var attachmentExists bool
	var attachmentFilename string
	for _, attachment := range objective.Attachments {
		if attachment.FileID == fileID {
			attachmentExists = true
			attachmentFilename = attachment.Filename
			break
		}
	}

	if !attachmentExists {
		return fmt.Errorf("attachment with file_id %s not found in objective %s", fileID.Hex(), objectiveID.Hex())
	}

	// Second: Remove attachment from objective document first
	err = s.okrRepo.RemoveAttachment(ctx, objectiveID, fileID, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to remove attachment from objective: %v", err)
	}

	// Third: Delete file from GridFS
	err = s.okrRepo.DeleteFile(ctx, fileID)
	if err != nil {
		// ROLLBACK: Re-add attachment to objective since file deletion failed
		attachment := models.Attachment{
			FileID:   fileID,
			Filename: attachmentFilename,
		}
		if rollbackErr := s.okrRepo.AddAttachment(ctx, objectiveID, attachment, updatedBy); rollbackErr != nil {
			return fmt.Errorf("failed to delete file from GridFS and rollback failed: %v (original error: %v)", rollbackErr, err)
		}

		return fmt.Errorf("failed to delete file from GridFS: %v", err)
	}

	return nil
}

func (s *okrService) TransferAttachmentBetweenObjectives(ctx context.Context, fromObjectiveID, toObjectiveID, fileID primitive.ObjectID, updatedBy string) error {
	// Create transaction context with timeout
	transactionCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := s.okrRepo.GetClient()

	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(transactionCtx)

	sessionCtx := mongo.NewSessionContext(transactionCtx, session)

	if err := session.StartTransaction(); err != nil {
		return fmt.Errorf("failed to start transaction: %v", err)
	}

	// Step 1: Verify both objectives exist
	fromObjective, err := s.okrRepo.GetObjectiveByID(sessionCtx, fromObjectiveID)
	if err != nil {
		session.AbortTransaction(sessionCtx)
		return fmt.Errorf("source objective not found: %v", err)
	}

	if _, err := s.okrRepo.GetObjectiveByID(sessionCtx, toObjectiveID); err != nil {
		session.AbortTransaction(sessionCtx)
		return fmt.Errorf("destination objective not found: %v", err)
	}

	// Step 2: Find the attachment in the source objective
	var attachmentToTransfer *models.Attachment
	for _, attachment := range fromObjective.Attachments {
		if attachment.FileID == fileID {
			attachmentToTransfer = &attachment
			break
		}
	}

	if attachmentToTransfer == nil {
		session.AbortTransaction(sessionCtx)
		return fmt.Errorf("attachment with file_id %s not found in source objective", fileID.Hex())
	}

	// Step 3: Remove attachment from source objective
	err = s.okrRepo.RemoveAttachment(sessionCtx, fromObjectiveID, fileID, updatedBy)
	if err != nil {
		session.AbortTransaction(sessionCtx)
		return fmt.Errorf("failed to remove attachment from source objective: %v", err)
	}

	// Step 4: Add attachment to destination objective
	err = s.okrRepo.AddAttachment(sessionCtx, toObjectiveID, *attachmentToTransfer, updatedBy)
	if err != nil {
		session.AbortTransaction(sessionCtx)
		return fmt.Errorf("failed to add attachment to destination objective: %v", err)
	}

	// Step 5: Commit transaction
	if err := session.CommitTransaction(sessionCtx); err != nil {
		session.AbortTransaction(sessionCtx)
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (s *okrService) GetObjectivePerformanceStats(ctx context.Context) ([]bson.M, error) {
	return s.okrRepo.GetObjectivePerformanceStats(ctx)
}
