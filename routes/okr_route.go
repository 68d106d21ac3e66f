package routes

import (
	"net/http"

	"okrproject/handlers"
	"okrproject/middlewares"
)

func SetupOKRRoutes(okrHandler *handlers.OKRHandler, checkInHandler *handlers.CheckInHandler, notificationHandler *handlers.NotificationHandler, jwtSecret string) *http.ServeMux {
	mux := http.NewServeMux()

	// Apply JWT middleware to all routes
	jwtMiddleware := middlewares.JWTMiddleware(jwtSecret)

	// Objective routes with JWT protection
	mux.Handle("POST /api/okr", jwtMiddleware(http.HandlerFunc(okrHandler.CreateObjective)))
	mux.Handle("GET /api/okr", jwtMiddleware(http.HandlerFunc(okrHandler.GetAllObjectives)))
	mux.Handle("GET /api/okr/{id}", jwtMiddleware(http.HandlerFunc(okrHandler.GetObjectiveByID)))
	mux.Handle("PUT /api/okr/{id}", jwtMiddleware(http.HandlerFunc(okrHandler.UpdateObjective)))
	mux.Handle("DELETE /api/okr/{id}", jwtMiddleware(http.HandlerFunc(okrHandler.DeleteObjective)))
	// Key result routes
	mux.Handle("POST /api/okr/{id}/key-results", jwtMiddleware(http.HandlerFunc(okrHandler.CreateKeyResult)))
	mux.Handle("PUT /api/okr/key-results/{id}", jwtMiddleware(http.HandlerFunc(okrHandler.UpdateKeyResultValues)))
	mux.Handle("DELETE /api/okr/key-results/{id}", jwtMiddleware(http.HandlerFunc(okrHandler.DeleteKeyResult)))
	// Check-in routes
	mux.Handle("POST /api/okr/key-results/{id}/checkins", jwtMiddleware(http.HandlerFunc(checkInHandler.SubmitCheckIn)))
	mux.Handle("GET /api/okr/key-results/{id}/checkins", jwtMiddleware(http.HandlerFunc(checkInHandler.GetCheckIns)))
	mux.Handle("GET /api/okr/key-results/{id}/checkins/stats", jwtMiddleware(http.HandlerFunc(checkInHandler.GetCheckInStats)))
	// File attachment routes
	mux.Handle("POST /api/okr/{id}/attachments", jwtMiddleware(http.HandlerFunc(okrHandler.UploadAttachment)))
	mux.Handle("GET /api/okr/attachments/{fileId}/download", jwtMiddleware(http.HandlerFunc(okrHandler.DownloadAttachment)))
	mux.Handle("DELETE /api/okr/{id}/attachments/{fileId}", jwtMiddleware(http.HandlerFunc(okrHandler.DeleteAttachment)))
	// File transfer with transaction
	mux.Handle("POST /api/okr/attachments/transfer", jwtMiddleware(http.HandlerFunc(okrHandler.TransferAttachment)))
	// Analytics routes
	mux.Handle("GET /api/okr/analytics/performance", jwtMiddleware(http.HandlerFunc(okrHandler.GetObjectivePerformanceStats)))
	// Notification routes
	mux.Handle("GET /api/notifications", jwtMiddleware(http.HandlerFunc(notificationHandler.GetNotifications)))
	mux.Handle("GET /api/notifications/unread-count", jwtMiddleware(http.HandlerFunc(notificationHandler.GetUnreadCount)))
	mux.Handle("PUT /api/notifications/{id}/read", jwtMiddleware(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("PUT /api/notifications/read-all", jwtMiddleware(http.HandlerFunc(notificationHandler.MarkAllRead)))
	// Badge routes
	mux.Handle("GET /api/profile/badges", jwtMiddleware(http.HandlerFunc(notificationHandler.GetMyBadges)))

	return mux
}
