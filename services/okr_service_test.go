package services

import (
	"context"
	"testing"

	"okrproject/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newOKRFixture() (*fakeOKRRepo, *fakeOrgRepo, *fakeDispatcher, OKRService) {
	okrRepo := newFakeOKRRepo()
	orgRepo := newFakeOrgRepo()
	dispatcher := &fakeDispatcher{}

	notifications := NewNotificationService(orgRepo, okrRepo, dispatcher)
	progress := NewProgressService(okrRepo)
	badges := NewBadgeService(newFakeBadgeRepo(), okrRepo, notifications)
	svc := NewOKRService(okrRepo, progress, notifications, badges)

	return okrRepo, orgRepo, dispatcher, svc
}

func TestCreateObjectiveDefaults(t *testing.T) {
	_, _, _, svc := newOKRFixture()
	actor := primitive.NewObjectID()

	created, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Improve onboarding",
		Type:  models.ObjectiveIndividual,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, created.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, created.Confidence)
	assert.Equal(t, models.StatusActive, created.Status)
	assert.Equal(t, actor, created.OwnerID, "owner defaults to the actor")
	assert.Equal(t, actor.Hex(), created.Metadata.CreatedBy)
	assert.NotNil(t, created.Attachments)
}

func TestCreateObjectiveFansOutWithoutActor(t *testing.T) {
	_, orgRepo, dispatcher, svc := newOKRFixture()

	actingAdmin := orgRepo.addUser(&models.User{Role: models.RoleAdmin, IsActive: true})
	other := orgRepo.addUser(&models.User{Role: models.RoleAdmin, IsActive: true})

	_, err := svc.CreateObjective(context.Background(), actingAdmin.ID, &models.Objective{
		Title: "Company bet",
		Type:  models.ObjectiveCompany,
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.delivered, 1)
	assert.Equal(t, other.ID, dispatcher.delivered[0].UserID)
}

func TestCreateKeyResultInitializesCurrentToStart(t *testing.T) {
	okrRepo, _, _, svc := newOKRFixture()
	actor := primitive.NewObjectID()

	objective, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Latency",
		Type:  models.ObjectiveTeam,
	})
	require.NoError(t, err)

	kr, err := svc.CreateKeyResult(context.Background(), actor, &models.KeyResult{
		ObjectiveID:   objective.ID,
		Title:         "p99 under 200ms",
		StartingValue: 500,
		TargetValue:   200,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, kr.CurrentValue)
	assert.Equal(t, 0, kr.Progress)
	assert.Equal(t, models.ConfidenceOffTrack, kr.Confidence)

	// The parent rollup ran after the key result was persisted.
	stored, err := okrRepo.GetObjectiveByID(context.Background(), objective.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Progress)
	assert.Equal(t, models.ConfidenceOffTrack, stored.Confidence)
}

func TestCreateKeyResultDegenerateMetric(t *testing.T) {
	_, _, _, svc := newOKRFixture()
	actor := primitive.NewObjectID()

	objective, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Keep uptime",
		Type:  models.ObjectiveTeam,
	})
	require.NoError(t, err)

	kr, err := svc.CreateKeyResult(context.Background(), actor, &models.KeyResult{
		ObjectiveID:   objective.ID,
		Title:         "hold at 10",
		StartingValue: 10,
		TargetValue:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, 100, kr.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, kr.Confidence)
}

func TestUpdateKeyResultValuesRecomputesInOrder(t *testing.T) {
	okrRepo, _, _, svc := newOKRFixture()
	actor := primitive.NewObjectID()

	objective, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Adoption",
		Type:  models.ObjectiveTeam,
	})
	require.NoError(t, err)

	kr, err := svc.CreateKeyResult(context.Background(), actor, &models.KeyResult{
		ObjectiveID: objective.ID,
		Title:       "active users",
		TargetValue: 100,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateKeyResultValues(context.Background(), actor, kr.ID, 0, 100, 80)
	require.NoError(t, err)

	assert.Equal(t, 80, updated.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, updated.Confidence)

	// The key result rollup was persisted before the objective rollup read
	// the rows back.
	stored, err := okrRepo.GetObjectiveByID(context.Background(), objective.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, stored.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, stored.Confidence)
}

func TestSoftDeleteKeyResultRecomputesObjective(t *testing.T) {
	okrRepo, _, _, svc := newOKRFixture()
	actor := primitive.NewObjectID()

	objective, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Quality",
		Type:  models.ObjectiveTeam,
	})
	require.NoError(t, err)

	good, err := svc.CreateKeyResult(context.Background(), actor, &models.KeyResult{
		ObjectiveID: objective.ID, Title: "a", TargetValue: 100,
	})
	require.NoError(t, err)
	bad, err := svc.CreateKeyResult(context.Background(), actor, &models.KeyResult{
		ObjectiveID: objective.ID, Title: "b", TargetValue: 100,
	})
	require.NoError(t, err)

	_, err = svc.UpdateKeyResultValues(context.Background(), actor, good.ID, 0, 100, 90)
	require.NoError(t, err)

	require.NoError(t, svc.SoftDeleteKeyResult(context.Background(), actor, bad.ID))

	// Only the remaining child feeds the rollup.
	stored, err := okrRepo.GetObjectiveByID(context.Background(), objective.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, stored.Confidence)
}

func TestSoftDeleteObjectiveNotifiesResolvedRecipients(t *testing.T) {
	_, orgRepo, dispatcher, svc := newOKRFixture()

	admin := orgRepo.addUser(&models.User{Role: models.RoleAdmin, IsActive: true})
	actor := primitive.NewObjectID()

	objective, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Retire legacy stack",
		Type:  models.ObjectiveCompany,
	})
	require.NoError(t, err)
	dispatcher.delivered = nil

	require.NoError(t, svc.SoftDeleteObjective(context.Background(), actor, objective.ID))

	require.Len(t, dispatcher.delivered, 1)
	assert.Equal(t, admin.ID, dispatcher.delivered[0].UserID)
	assert.Equal(t, models.ActionOKRDeleted, dispatcher.delivered[0].Type)
}

func TestUpdateObjectiveKeepsDerivedFields(t *testing.T) {
	_, _, _, svc := newOKRFixture()
	actor := primitive.NewObjectID()

	objective, err := svc.CreateObjective(context.Background(), actor, &models.Objective{
		Title: "Original title",
		Type:  models.ObjectiveTeam,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateObjective(context.Background(), actor, objective.ID, &models.Objective{
		Title:    "New title",
		Progress: 55, // hand-edited progress is ignored
	})
	require.NoError(t, err)

	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, 0, updated.Progress)
	assert.Equal(t, models.ConfidenceOnTrack, updated.Confidence)
}
