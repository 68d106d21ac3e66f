package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "okrproject/middlewares"
	"okrproject/models"
	service "okrproject/services"
	"okrproject/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CheckInHandler struct {
	service service.CheckInService
}

func NewCheckInHandler(service service.CheckInService) *CheckInHandler {
	return &CheckInHandler{
		service: service,
	}
}

func (h *CheckInHandler) SubmitCheckIn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	krID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid key result ID format", http.StatusBadRequest)
		return
	}

	var input models.CheckIn
	if err := utils.DecodeAndValidate(w, r, &input); err != nil {
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checkin, err := h.service.SubmitCheckIn(ctx, actorID, krID, &input)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Check-in submitted successfully", checkin, http.StatusCreated)
}

func (h *CheckInHandler) GetCheckIns(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	krID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid key result ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checkins, err := h.service.GetCheckIns(ctx, krID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Check-ins retrieved successfully", checkins, http.StatusOK)
}

func (h *CheckInHandler) GetCheckInStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	krID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid key result ID format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.service.GetCheckInStats(ctx, krID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Check-in statistics retrieved successfully", stats, http.StatusOK)
}
