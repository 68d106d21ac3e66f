package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	middleware "okrproject/middlewares"
	"okrproject/models"
	service "okrproject/services"
	"okrproject/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OKRHandler struct {
	service service.OKRService
}

func NewOKRHandler(service service.OKRService) *OKRHandler {
	return &OKRHandler{
		service: service,
	}
}

func (h *OKRHandler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	var objective models.Objective
	if err := utils.DecodeAndValidate(w, r, &objective); err != nil {
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := h.service.CreateObjective(ctx, actorID, &objective)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Objective created successfully", created, http.StatusCreated)
}

func (h *OKRHandler) GetObjectiveByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid objective ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	objective, err := h.service.GetObjectiveByID(ctx, objectID)
	if err != nil {
		utils.HandleMessageResponse(w, "Objective not found", http.StatusNotFound)
		return
	}

	utils.HandleDataResponse(w, "Objective retrieved successfully", objective, http.StatusOK)
}

func (h *OKRHandler) GetAllObjectives(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	objectives, err := h.service.GetAllObjectives(ctx)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Objectives retrieved successfully", objectives, http.StatusOK)
}

func (h *OKRHandler) UpdateObjective(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid objective ID format", http.StatusBadRequest)
		return
	}

	var objective models.Objective
	if err := utils.DecodeAndValidate(w, r, &objective); err != nil {
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.service.UpdateObjective(ctx, actorID, objectID, &objective)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Objective updated successfully", updated, http.StatusOK)
}

func (h *OKRHandler) DeleteObjective(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid objective ID format", http.StatusBadRequest)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err = h.service.SoftDeleteObjective(ctx, actorID, objectID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleMessageResponse(w, "Objective deleted successfully", http.StatusOK)
}

func (h *OKRHandler) CreateKeyResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	objectiveID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid objective ID format", http.StatusBadRequest)
		return
	}

	// Seed the objective id from the URL so validation passes even when the
	// body omits it; the path parameter always wins.
	var kr models.KeyResult
	kr.ObjectiveID = objectiveID
	if err := utils.DecodeAndValidate(w, r, &kr); err != nil {
		return
	}
	kr.ObjectiveID = objectiveID

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	created, err := h.service.CreateKeyResult(ctx, actorID, &kr)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Key result created successfully", created, http.StatusCreated)
}

func (h *OKRHandler) UpdateKeyResultValues(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	krID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid key result ID format", http.StatusBadRequest)
		return
	}

	var valuesRequest struct {
		StartingValue float64 `json:"starting_value"`
		TargetValue   float64 `json:"target_value"`
		CurrentValue  float64 `json:"current_value"`
	}

	if err := utils.DecodeAndValidate(w, r, &valuesRequest); err != nil {
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.service.UpdateKeyResultValues(ctx, actorID, krID, valuesRequest.StartingValue, valuesRequest.TargetValue, valuesRequest.CurrentValue)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Key result updated successfully", updated, http.StatusOK)
}

func (h *OKRHandler) DeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	krID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid key result ID format", http.StatusBadRequest)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err = h.service.SoftDeleteKeyResult(ctx, actorID, krID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleMessageResponse(w, "Key result deleted successfully", http.StatusOK)
}

func (h *OKRHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	// Parse the multipart form
	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	objectiveID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid objective ID format", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > 10<<20 { // 10 MB
		utils.HandleMessageResponse(w, "File size too large (max 10MB)", http.StatusBadRequest)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	attachment, err := h.service.UploadAttachment(ctx, objectiveID, header.Filename, file, actorID.Hex(), contentType)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "File uploaded successfully", attachment, http.StatusOK)
}

func (h *OKRHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	fileIDStr := r.PathValue("fileId")
	fileID, err := primitive.ObjectIDFromHex(fileIDStr)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid file ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	downloadStream, err := h.service.DownloadAttachment(ctx, fileID)
	if err != nil {
		utils.HandleMessageResponse(w, "File not found", http.StatusNotFound)
		return
	}
	defer downloadStream.Close()

	fileInfo := downloadStream.GetFile()

	// Get content type from metadata, default to application/octet-stream
	contentType := "application/octet-stream"
	if fileInfo.Metadata != nil && len(fileInfo.Metadata) > 0 {
		var metaMap map[string]interface{}
		if err := bson.Unmarshal(fileInfo.Metadata, &metaMap); err == nil {
			if ctRaw, exists := metaMap["contentType"]; exists {
				if contentTypeStr, ok := ctRaw.(string); ok && contentTypeStr != "" {
					contentType = contentTypeStr
				}
			}
		}
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileInfo.Name))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(fileInfo.Length, 10))

	_, err = io.Copy(w, downloadStream)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to download file", http.StatusInternalServerError)
		return
	}
}

func (h *OKRHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	objectiveIDStr := r.PathValue("id")
	objectiveID, err := primitive.ObjectIDFromHex(objectiveIDStr)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid objective ID format", http.StatusBadRequest)
		return
	}

	fileIDStr := r.PathValue("fileId")
	fileID, err := primitive.ObjectIDFromHex(fileIDStr)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid file ID format", http.StatusBadRequest)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	err = h.service.DeleteAttachment(ctx, objectiveID, fileID, actorID.Hex())
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleMessageResponse(w, "Attachment deleted successfully", http.StatusOK)
}

func (h *OKRHandler) TransferAttachment(w http.ResponseWriter, r *http.Request) {
	var transferRequest struct {
		FromObjectiveID string `json:"from_objective_id" validate:"required"`
		ToObjectiveID   string `json:"to_objective_id" validate:"required"`
		FileID          string `json:"file_id" validate:"required"`
	}

	if err := utils.DecodeAndValidate(w, r, &transferRequest); err != nil {
		return
	}

	fromObjectiveID, err := primitive.ObjectIDFromHex(transferRequest.FromObjectiveID)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid from_objective_id format", http.StatusBadRequest)
		return
	}

	toObjectiveID, err := primitive.ObjectIDFromHex(transferRequest.ToObjectiveID)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid to_objective_id format", http.StatusBadRequest)
		return
	}

	fileID, err := primitive.ObjectIDFromHex(transferRequest.FileID)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid file_id format", http.StatusBadRequest)
		return
	}

	if fromObjectiveID == toObjectiveID {
		utils.HandleMessageResponse(w, "Source and destination objective cannot be the same", http.StatusBadRequest)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	err = h.service.TransferAttachmentBetweenObjectives(ctx, fromObjectiveID, toObjectiveID, fileID, actorID.Hex())
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responseData := map[string]interface{}{
		"from_objective_id": fromObjectiveID.Hex(),
		"to_objective_id":   toObjectiveID.Hex(),
		"file_id":           fileID.Hex(),
		"transferred_at":    time.Now(),
	}

	utils.HandleDataResponse(w, "Attachment transferred successfully", responseData, http.StatusOK)
}

func (h *OKRHandler) GetObjectivePerformanceStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	stats, err := h.service.GetObjectivePerformanceStats(ctx)
	if err != nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("Failed to get objective performance stats: %v", err), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Objective performance statistics retrieved successfully", stats, http.StatusOK)
}
