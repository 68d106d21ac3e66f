package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"okrproject/models"
	repository "okrproject/repositories"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LateThreshold is the calendar-time gap after which a check-in counts as
// late relative to the previous one.
const LateThreshold = 7 * 24 * time.Hour

type CheckInService interface {
	SubmitCheckIn(ctx context.Context, actorID primitive.ObjectID, keyResultID primitive.ObjectID, input *models.CheckIn) (*models.CheckIn, error)
	IsLate(ctx context.Context, keyResultID primitive.ObjectID, submittedAt time.Time) bool
	GetCheckIns(ctx context.Context, keyResultID primitive.ObjectID) ([]models.CheckIn, error)
	GetCheckInStats(ctx context.Context, keyResultID primitive.ObjectID) (*models.CheckInStats, error)
}

type checkInService struct {
	checkInRepo     repository.CheckInRepository
	okrRepo         repository.OKRRepository
	progressService ProgressService
	notifications   NotificationService
}

func NewCheckInService(checkInRepo repository.CheckInRepository, okrRepo repository.OKRRepository, progressService ProgressService, notifications NotificationService) CheckInService {
	return &checkInService{
		checkInRepo:     checkInRepo,
		okrRepo:         okrRepo,
		progressService: progressService,
		notifications:   notifications,
	}
}

// IsLate reports whether a check-in submitted at the given time is late. The
// first check-in for a key result is never late; after that, late means more
// than seven days since the previous one (strictly greater).
func (s *checkInService) IsLate(ctx context.Context, keyResultID primitive.ObjectID, submittedAt time.Time) bool {
	prior, err := s.checkInRepo.FindLatestByKeyResult(ctx, keyResultID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logrus.WithError(err).WithField("key_result_id", keyResultID.Hex()).
				Warn("IsLate: failed to fetch prior check-in, treating as on time")
		}
		return false
	}

	return submittedAt.Sub(prior.SubmittedAt) > LateThreshold
}

// SubmitCheckIn appends a check-in row, updates the parent key result's
// snapshot fields, and recomputes the objective rollup before fan-out. Only
// the persistence writes can fail the operation; notification failures are
// logged and swallowed.
func (s *checkInService) SubmitCheckIn(ctx context.Context, actorID primitive.ObjectID, keyResultID primitive.ObjectID, input *models.CheckIn) (*models.CheckIn, error) {
	kr, err := s.okrRepo.GetKeyResultByID(ctx, keyResultID)
	if err != nil {
		return nil, fmt.Errorf("key result not found: %w", err)
	}

	submittedAt := time.Now()
	progress, derivedConfidence := ComputeKeyResultRollup(kr.StartingValue, kr.TargetValue, input.CurrentValue)

	confidence := input.Confidence
	if confidence == "" {
		confidence = derivedConfidence
	}

	checkin := &models.CheckIn{
		KeyResultID:   keyResultID,
		SubmittedByID: actorID,
		CurrentValue:  input.CurrentValue,
		Progress:      progress,
		Confidence:    confidence,
		Note:          input.Note,
		IsLate:        s.IsLate(ctx, keyResultID, submittedAt),
		SubmittedAt:   submittedAt,
	}

	if err := s.checkInRepo.Create(ctx, checkin); err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	// The key result snapshot must be persisted before the objective rollup
	// is recomputed, because the rollup reads the stored key result rows.
	if err := s.okrRepo.SaveKeyResultSnapshot(ctx, keyResultID, input.CurrentValue, progress, derivedConfidence, submittedAt); err != nil {
		return nil, fmt.Errorf("failed to update key result snapshot: %w", err)
	}

	if _, _, err := s.progressService.RecomputeObjective(ctx, kr.ObjectiveID); err != nil {
		logrus.WithError(err).WithField("objective_id", kr.ObjectiveID.Hex()).
			Error("SubmitCheckIn: objective rollup failed")
	}

	objective, err := s.okrRepo.GetObjectiveByID(ctx, kr.ObjectiveID)
	if err != nil {
		logrus.WithError(err).WithField("objective_id", kr.ObjectiveID.Hex()).
			Error("SubmitCheckIn: failed to load objective, skipping fan-out")
		return checkin, nil
	}

	s.notifications.NotifyCheckInEvent(ctx, checkin, kr, objective, actorID)

	return checkin, nil
}

func (s *checkInService) GetCheckIns(ctx context.Context, keyResultID primitive.ObjectID) ([]models.CheckIn, error) {
	return s.checkInRepo.FindByKeyResult(ctx, keyResultID)
}

// GetCheckInStats computes the compliance rate and reported-value summary
// for one key result's check-in history.
func (s *checkInService) GetCheckInStats(ctx context.Context, keyResultID primitive.ObjectID) (*models.CheckInStats, error) {
	checkins, err := s.checkInRepo.FindByKeyResult(ctx, keyResultID)
	if err != nil {
		return nil, err
	}

	result := &models.CheckInStats{
		Total:          len(checkins),
		ComplianceRate: 100, // no check-ins means nothing was late
	}
	if len(checkins) == 0 {
		return result, nil
	}

	values := make([]float64, len(checkins))
	for i, c := range checkins {
		values[i] = c.CurrentValue
		if c.IsLate {
			result.Late++
		}
	}

	result.ComplianceRate = ComplianceRate(result.Total, result.Late)

	if mean, err := stats.Mean(values); err == nil {
		result.MeanValue = mean
	}
	if min, err := stats.Min(values); err == nil {
		result.MinValue = min
	}
	if max, err := stats.Max(values); err == nil {
		result.MaxValue = max
	}

	return result, nil
}

// ComplianceRate is the share of on-time check-ins, 100 when there are none.
func ComplianceRate(total, late int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(total-late) / float64(total)))
}
