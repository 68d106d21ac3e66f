package services

import (
	"context"

	"okrproject/models"
	repository "okrproject/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thresholds on the number of team-type objectives a user owns. Both badges
// are computed from the same ownership count with different thresholds.
const (
	teamPlayerThreshold = 5
	leaderThreshold     = 10
)

type BadgeService interface {
	EvaluateObjectiveBadges(ctx context.Context, userID primitive.ObjectID)
	GetUserBadges(ctx context.Context, userID primitive.ObjectID) ([]models.UserBadge, error)
}

type badgeService struct {
	badgeRepo     repository.BadgeRepository
	okrRepo       repository.OKRRepository
	notifications NotificationService
}

func NewBadgeService(badgeRepo repository.BadgeRepository, okrRepo repository.OKRRepository, notifications NotificationService) BadgeService {
	return &badgeService{
		badgeRepo:     badgeRepo,
		okrRepo:       okrRepo,
		notifications: notifications,
	}
}

// EvaluateObjectiveBadges awards the team-objective badges a user newly
// qualifies for. Award failures are logged and never propagate to the write
// that triggered the evaluation.
func (s *badgeService) EvaluateObjectiveBadges(ctx context.Context, userID primitive.ObjectID) {
	count, err := s.okrRepo.CountTeamObjectivesOwned(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).
			Warn("EvaluateObjectiveBadges: failed to count team objectives")
		return
	}

	if count >= teamPlayerThreshold {
		s.award(ctx, userID, models.BadgeTeamPlayer, "Aligned to 5+ team objectives")
	}
	if count >= leaderThreshold {
		s.award(ctx, userID, models.BadgeLeader, "Owns 10+ team objectives")
	}
}

func (s *badgeService) award(ctx context.Context, userID primitive.ObjectID, name models.BadgeName, description string) {
	has, err := s.badgeRepo.HasBadge(ctx, userID, name)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).
			Warn("award: failed to check existing badge")
		return
	}
	if has {
		return
	}

	badge := &models.UserBadge{
		UserID:      userID,
		Name:        name,
		Description: description,
	}

	if err := s.badgeRepo.Award(ctx, badge); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID.Hex(),
			"badge":   name,
		}).Error("award: failed to persist badge")
		return
	}

	s.notifications.NotifyBadgeEarned(ctx, badge)
}

func (s *badgeService) GetUserBadges(ctx context.Context, userID primitive.ObjectID) ([]models.UserBadge, error) {
	return s.badgeRepo.FindByUser(ctx, userID)
}
