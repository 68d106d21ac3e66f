package services

import (
	"context"
	"math"

	"okrproject/models"
	repository "okrproject/repositories"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressService keeps the derived progress/confidence rollups on key
// results and objectives consistent with the leaf-level numeric data.
type ProgressService interface {
	RecomputeKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int, models.Confidence, error)
	RecomputeObjective(ctx context.Context, objectiveID primitive.ObjectID) (int, models.Confidence, error)
}

type progressService struct {
	okrRepo repository.OKRRepository
}

func NewProgressService(okrRepo repository.OKRRepository) ProgressService {
	return &progressService{
		okrRepo: okrRepo,
	}
}

// ComputeKeyResultRollup derives progress and confidence from a key result's
// numeric bounds. A degenerate metric (target == start) counts as 100%.
func ComputeKeyResultRollup(starting, target, current float64) (int, models.Confidence) {
	var progress int
	if target == starting {
		progress = 100
	} else {
		raw := math.Round(100 * (current - starting) / (target - starting))
		progress = int(math.Min(math.Max(raw, 0), 100))
	}

	return progress, ConfidenceForProgress(progress)
}

// ConfidenceForProgress maps a progress percentage to the three-level
// health signal.
func ConfidenceForProgress(progress int) models.Confidence {
	switch {
	case progress >= 70:
		return models.ConfidenceOnTrack
	case progress >= 40:
		return models.ConfidenceAtRisk
	default:
		return models.ConfidenceOffTrack
	}
}

// ComputeObjectiveRollup derives an objective's progress/confidence from its
// direct key results only. An objective with no measurable children is
// healthy by default: progress 0, on-track.
func ComputeObjectiveRollup(keyResults []models.KeyResult) (int, models.Confidence) {
	if len(keyResults) == 0 {
		return 0, models.ConfidenceOnTrack
	}

	values := make([]float64, len(keyResults))
	var offTrack, atRisk int
	for i, kr := range keyResults {
		values[i] = float64(kr.Progress)
		switch kr.Confidence {
		case models.ConfidenceOffTrack:
			offTrack++
		case models.ConfidenceAtRisk:
			atRisk++
		}
	}

	mean, err := stats.Mean(values)
	if err != nil {
		// Cannot happen with a non-empty slice, but keep the zero value sane.
		mean = 0
	}
	progress := int(math.Round(mean))

	n := float64(len(keyResults))
	var confidence models.Confidence
	switch {
	// Exactly half off-track already triggers (non-strict, real division).
	case float64(offTrack) >= n/2:
		confidence = models.ConfidenceOffTrack
	case offTrack > 0 || float64(atRisk) >= n/2:
		confidence = models.ConfidenceAtRisk
	default:
		confidence = models.ConfidenceOnTrack
	}

	return progress, confidence
}

// RecomputeKeyResult re-derives and persists the rollup for one key result.
// Must complete before the parent objective is recomputed, because the
// objective rollup reads the persisted key result rows.
func (s *progressService) RecomputeKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int, models.Confidence, error) {
	kr, err := s.okrRepo.GetKeyResultByID(ctx, keyResultID)
	if err != nil {
		return 0, "", err
	}

	progress, confidence := ComputeKeyResultRollup(kr.StartingValue, kr.TargetValue, kr.CurrentValue)

	if err := s.okrRepo.SaveKeyResultRollup(ctx, keyResultID, progress, confidence); err != nil {
		return 0, "", err
	}

	return progress, confidence, nil
}

// RecomputeObjective re-derives and persists the rollup for one objective. A
// fetch failure is logged and the rollup is skipped for this cycle; no
// partial write happens.
func (s *progressService) RecomputeObjective(ctx context.Context, objectiveID primitive.ObjectID) (int, models.Confidence, error) {
	keyResults, err := s.okrRepo.FindKeyResultsByObjective(ctx, objectiveID)
	if err != nil {
		logrus.WithError(err).WithField("objective_id", objectiveID.Hex()).
			Warn("RecomputeObjective: failed to fetch key results, skipping rollup")
		return 0, "", nil
	}

	progress, confidence := ComputeObjectiveRollup(keyResults)

	if err := s.okrRepo.SaveObjectiveRollup(ctx, objectiveID, progress, confidence); err != nil {
		return 0, "", err
	}

	return progress, confidence, nil
}
