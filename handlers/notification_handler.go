package handlers

import (
	"context"
	"net/http"
	"time"

	middleware "okrproject/middlewares"
	repository "okrproject/repositories"
	service "okrproject/services"
	"okrproject/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
	badgeService     service.BadgeService
}

func NewNotificationHandler(notificationRepo repository.NotificationRepository, badgeService service.BadgeService) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		badgeService:     badgeService,
	}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	notifications, err := h.notificationRepo.FindByUser(ctx, actorID, unreadOnly)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Notifications retrieved successfully", notifications, http.StatusOK)
}

func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := h.notificationRepo.CountUnread(ctx, actorID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleCountResponse(w, count, http.StatusOK)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	notificationID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.HandleMessageResponse(w, "Invalid notification ID format", http.StatusBadRequest)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.notificationRepo.MarkRead(ctx, notificationID, actorID); err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.HandleMessageResponse(w, "Notification marked as read", http.StatusOK)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	modified, err := h.notificationRepo.MarkAllRead(ctx, actorID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleCountResponse(w, modified, http.StatusOK)
}

func (h *NotificationHandler) GetMyBadges(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetActorIDFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "Invalid user in token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	badges, err := h.badgeService.GetUserBadges(ctx, actorID)
	if err != nil {
		utils.HandleMessageResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.HandleDataResponse(w, "Badges retrieved successfully", badges, http.StatusOK)
}
