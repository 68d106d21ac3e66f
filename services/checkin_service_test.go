package services

import (
	"context"
	"testing"
	"time"

	"okrproject/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCheckInFixture() (*fakeCheckInRepo, *fakeOKRRepo, *fakeDispatcher, CheckInService) {
	checkInRepo := &fakeCheckInRepo{}
	okrRepo := newFakeOKRRepo()
	orgRepo := newFakeOrgRepo()
	dispatcher := &fakeDispatcher{}

	notifications := NewNotificationService(orgRepo, okrRepo, dispatcher)
	progress := NewProgressService(okrRepo)
	svc := NewCheckInService(checkInRepo, okrRepo, progress, notifications)

	return checkInRepo, okrRepo, dispatcher, svc
}

func TestIsLate(t *testing.T) {
	checkInRepo, _, _, svc := newCheckInFixture()
	krID := primitive.NewObjectID()
	now := time.Now()

	t.Run("first check-in is never late", func(t *testing.T) {
		assert.False(t, svc.IsLate(context.Background(), krID, now))
	})

	checkInRepo.checkins = append(checkInRepo.checkins, models.CheckIn{
		ID:          primitive.NewObjectID(),
		KeyResultID: krID,
		SubmittedAt: now,
	})

	t.Run("eight days after the prior one is late", func(t *testing.T) {
		assert.True(t, svc.IsLate(context.Background(), krID, now.Add(8*24*time.Hour)))
	})

	t.Run("exactly seven days is on time", func(t *testing.T) {
		assert.False(t, svc.IsLate(context.Background(), krID, now.Add(7*24*time.Hour)))
	})

	t.Run("just over seven days is late", func(t *testing.T) {
		assert.True(t, svc.IsLate(context.Background(), krID, now.Add(7*24*time.Hour+time.Second)))
	})
}

func TestIsLateUsesMostRecentPrior(t *testing.T) {
	checkInRepo, _, _, svc := newCheckInFixture()
	krID := primitive.NewObjectID()
	now := time.Now()

	// An old check-in followed by a recent one: lateness is measured against
	// the recent one.
	checkInRepo.checkins = []models.CheckIn{
		{ID: primitive.NewObjectID(), KeyResultID: krID, SubmittedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: primitive.NewObjectID(), KeyResultID: krID, SubmittedAt: now.Add(-2 * 24 * time.Hour)},
	}

	assert.False(t, svc.IsLate(context.Background(), krID, now))
}

func TestSubmitCheckIn(t *testing.T) {
	checkInRepo, okrRepo, dispatcher, svc := newCheckInFixture()

	objective := &models.Objective{Type: models.ObjectiveIndividual}
	require.NoError(t, okrRepo.CreateObjective(context.Background(), objective))

	owner := primitive.NewObjectID()
	kr := &models.KeyResult{
		ObjectiveID:   objective.ID,
		OwnerID:       owner,
		StartingValue: 0,
		TargetValue:   100,
		CurrentValue:  0,
	}
	require.NoError(t, okrRepo.CreateKeyResult(context.Background(), kr))

	actor := primitive.NewObjectID()
	checkin, err := svc.SubmitCheckIn(context.Background(), actor, kr.ID, &models.CheckIn{
		CurrentValue: 75,
		Note:         "ahead of plan",
	})
	require.NoError(t, err)

	assert.Equal(t, 75, checkin.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, checkin.Confidence)
	assert.False(t, checkin.IsLate)
	assert.Equal(t, actor, checkin.SubmittedByID)
	require.Len(t, checkInRepo.checkins, 1)

	// Snapshot fields on the parent key result are updated in place.
	stored, err := okrRepo.GetKeyResultByID(context.Background(), kr.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, stored.CurrentValue)
	assert.Equal(t, 75, stored.Progress)
	require.NotNil(t, stored.LastCheckinAt)

	// The objective rollup follows the persisted key result rows.
	storedObjective, err := okrRepo.GetObjectiveByID(context.Background(), objective.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, storedObjective.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, storedObjective.Confidence)

	// Fan-out reached the key result owner but not the actor.
	require.Len(t, dispatcher.delivered, 1)
	assert.Equal(t, owner, dispatcher.delivered[0].UserID)
	assert.Equal(t, models.ActionCheckInSubmitted, dispatcher.delivered[0].Type)
}

func TestSubmitCheckInExplicitConfidenceWins(t *testing.T) {
	_, okrRepo, _, svc := newCheckInFixture()

	objective := &models.Objective{Type: models.ObjectiveIndividual}
	require.NoError(t, okrRepo.CreateObjective(context.Background(), objective))

	kr := &models.KeyResult{ObjectiveID: objective.ID, StartingValue: 0, TargetValue: 100}
	require.NoError(t, okrRepo.CreateKeyResult(context.Background(), kr))

	checkin, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), kr.ID, &models.CheckIn{
		CurrentValue: 90,
		Confidence:   models.ConfidenceAtRisk,
	})
	require.NoError(t, err)

	// The check-in row keeps the submitter's stated confidence; the key
	// result snapshot stays derived.
	assert.Equal(t, models.ConfidenceAtRisk, checkin.Confidence)

	stored, err := okrRepo.GetKeyResultByID(context.Background(), kr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceOnTrack, stored.Confidence)
}

func TestSubmitCheckInDispatchFailureDoesNotFailWrite(t *testing.T) {
	checkInRepo, okrRepo, dispatcher, svc := newCheckInFixture()
	dispatcher.err = assert.AnError

	objective := &models.Objective{Type: models.ObjectiveIndividual}
	require.NoError(t, okrRepo.CreateObjective(context.Background(), objective))

	kr := &models.KeyResult{
		ObjectiveID: objective.ID,
		OwnerID:     primitive.NewObjectID(),
		TargetValue: 100,
	}
	require.NoError(t, okrRepo.CreateKeyResult(context.Background(), kr))

	_, err := svc.SubmitCheckIn(context.Background(), primitive.NewObjectID(), kr.ID, &models.CheckIn{CurrentValue: 10})
	assert.NoError(t, err)
	assert.Len(t, checkInRepo.checkins, 1)
}

func TestComplianceRate(t *testing.T) {
	assert.Equal(t, 100, ComplianceRate(0, 0), "no check-ins means full compliance")
	assert.Equal(t, 100, ComplianceRate(4, 0))
	assert.Equal(t, 75, ComplianceRate(4, 1))
	assert.Equal(t, 67, ComplianceRate(3, 1))
	assert.Equal(t, 0, ComplianceRate(2, 2))
}

func TestGetCheckInStats(t *testing.T) {
	checkInRepo, _, _, svc := newCheckInFixture()
	krID := primitive.NewObjectID()
	now := time.Now()

	checkInRepo.checkins = []models.CheckIn{
		{KeyResultID: krID, CurrentValue: 10, SubmittedAt: now.Add(-48 * time.Hour)},
		{KeyResultID: krID, CurrentValue: 30, IsLate: true, SubmittedAt: now.Add(-24 * time.Hour)},
		{KeyResultID: krID, CurrentValue: 50, SubmittedAt: now},
	}

	stats, err := svc.GetCheckInStats(context.Background(), krID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 67, stats.ComplianceRate)
	assert.Equal(t, 30.0, stats.MeanValue)
	assert.Equal(t, 10.0, stats.MinValue)
	assert.Equal(t, 50.0, stats.MaxValue)
}

func TestGetCheckInStatsEmptyHistory(t *testing.T) {
	_, _, _, svc := newCheckInFixture()

	stats, err := svc.GetCheckInStats(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 100, stats.ComplianceRate)
}
