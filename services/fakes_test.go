package services

import (
	"context"
	"io"
	"sort"
	"time"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// In-memory repository fakes for service tests.

type savedRollup struct {
	id         primitive.ObjectID
	progress   int
	confidence models.Confidence
}

type fakeOKRRepo struct {
	objectives map[primitive.ObjectID]*models.Objective
	keyResults map[primitive.ObjectID]*models.KeyResult

	objectiveRollups []savedRollup
	keyResultRollups []savedRollup

	findKeyResultsErr   error
	saveObjectiveErr    error
	teamObjectivesOwned int64
}

func newFakeOKRRepo() *fakeOKRRepo {
	return &fakeOKRRepo{
		objectives: make(map[primitive.ObjectID]*models.Objective),
		keyResults: make(map[primitive.ObjectID]*models.KeyResult),
	}
}

func (f *fakeOKRRepo) CreateObjective(ctx context.Context, objective *models.Objective) error {
	objective.ID = primitive.NewObjectID()
	f.objectives[objective.ID] = objective
	return nil
}

func (f *fakeOKRRepo) GetObjectiveByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error) {
	objective, ok := f.objectives[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *objective
	return &copied, nil
}

func (f *fakeOKRRepo) GetAllObjectives(ctx context.Context) ([]models.Objective, error) {
	var out []models.Objective
	for _, o := range f.objectives {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOKRRepo) UpdateObjective(ctx context.Context, id primitive.ObjectID, objective *models.Objective) error {
	f.objectives[id] = objective
	return nil
}

func (f *fakeOKRRepo) SoftDeleteObjective(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	delete(f.objectives, id)
	return nil
}

func (f *fakeOKRRepo) SaveObjectiveRollup(ctx context.Context, id primitive.ObjectID, progress int, confidence models.Confidence) error {
	if f.saveObjectiveErr != nil {
		return f.saveObjectiveErr
	}
	if objective, ok := f.objectives[id]; ok {
		objective.Progress = progress
		objective.Confidence = confidence
	}
	f.objectiveRollups = append(f.objectiveRollups, savedRollup{id, progress, confidence})
	return nil
}

func (f *fakeOKRRepo) CountTeamObjectivesOwned(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return f.teamObjectivesOwned, nil
}

func (f *fakeOKRRepo) CreateKeyResult(ctx context.Context, kr *models.KeyResult) error {
	kr.ID = primitive.NewObjectID()
	f.keyResults[kr.ID] = kr
	return nil
}

func (f *fakeOKRRepo) GetKeyResultByID(ctx context.Context, id primitive.ObjectID) (*models.KeyResult, error) {
	kr, ok := f.keyResults[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *kr
	return &copied, nil
}

func (f *fakeOKRRepo) FindKeyResultsByObjective(ctx context.Context, objectiveID primitive.ObjectID) ([]models.KeyResult, error) {
	if f.findKeyResultsErr != nil {
		return nil, f.findKeyResultsErr
	}
	var out []models.KeyResult
	for _, kr := range f.keyResults {
		if kr.ObjectiveID == objectiveID {
			out = append(out, *kr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (f *fakeOKRRepo) UpdateKeyResultValues(ctx context.Context, id primitive.ObjectID, starting, target, current float64, updatedBy string) error {
	kr, ok := f.keyResults[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kr.StartingValue = starting
	kr.TargetValue = target
	kr.CurrentValue = current
	return nil
}

func (f *fakeOKRRepo) SaveKeyResultRollup(ctx context.Context, id primitive.ObjectID, progress int, confidence models.Confidence) error {
	kr, ok := f.keyResults[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kr.Progress = progress
	kr.Confidence = confidence
	f.keyResultRollups = append(f.keyResultRollups, savedRollup{id, progress, confidence})
	return nil
}

func (f *fakeOKRRepo) SaveKeyResultSnapshot(ctx context.Context, id primitive.ObjectID, current float64, progress int, confidence models.Confidence, checkinAt time.Time) error {
	kr, ok := f.keyResults[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kr.CurrentValue = current
	kr.Progress = progress
	kr.Confidence = confidence
	kr.LastCheckinAt = &checkinAt
	return nil
}

func (f *fakeOKRRepo) SoftDeleteKeyResult(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	delete(f.keyResults, id)
	return nil
}

func (f *fakeOKRRepo) GetClient() *mongo.Client { return nil }

func (f *fakeOKRRepo) UploadFile(ctx context.Context, filename string, fileData io.Reader, uploadedBy string, contentType string) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (f *fakeOKRRepo) DownloadFile(ctx context.Context, fileID primitive.ObjectID) (*gridfs.DownloadStream, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeOKRRepo) DeleteFile(ctx context.Context, fileID primitive.ObjectID) error { return nil }

func (f *fakeOKRRepo) AddAttachment(ctx context.Context, objectiveID primitive.ObjectID, attachment models.Attachment, updatedBy string) error {
	return nil
}

func (f *fakeOKRRepo) RemoveAttachment(ctx context.Context, objectiveID primitive.ObjectID, fileID primitive.ObjectID, updatedBy string) error {
	return nil
}

func (f *fakeOKRRepo) GetObjectivePerformanceStats(ctx context.Context) ([]bson.M, error) {
	return nil, nil
}

type fakeCheckInRepo struct {
	checkins  []models.CheckIn
	createErr error
	findErr   error
}

func (f *fakeCheckInRepo) Create(ctx context.Context, checkin *models.CheckIn) error {
	if f.createErr != nil {
		return f.createErr
	}
	checkin.ID = primitive.NewObjectID()
	f.checkins = append(f.checkins, *checkin)
	return nil
}

func (f *fakeCheckInRepo) FindLatestByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (*models.CheckIn, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var latest *models.CheckIn
	for i := range f.checkins {
		c := &f.checkins[i]
		if c.KeyResultID != keyResultID {
			continue
		}
		if latest == nil || c.SubmittedAt.After(latest.SubmittedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, mongo.ErrNoDocuments
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeCheckInRepo) FindByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) ([]models.CheckIn, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.CheckIn
	for _, c := range f.checkins {
		if c.KeyResultID == keyResultID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckInRepo) CountByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int64, error) {
	checkins, _ := f.FindByKeyResult(ctx, keyResultID)
	return int64(len(checkins)), nil
}

func (f *fakeCheckInRepo) CountLateByKeyResult(ctx context.Context, keyResultID primitive.ObjectID) (int64, error) {
	checkins, _ := f.FindByKeyResult(ctx, keyResultID)
	var late int64
	for _, c := range checkins {
		if c.IsLate {
			late++
		}
	}
	return late, nil
}

type fakeOrgRepo struct {
	users       map[primitive.ObjectID]*models.User
	teams       map[primitive.ObjectID]*models.Team
	departments map[primitive.ObjectID]*models.Department

	failAll error
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{
		users:       make(map[primitive.ObjectID]*models.User),
		teams:       make(map[primitive.ObjectID]*models.Team),
		departments: make(map[primitive.ObjectID]*models.Department),
	}
}

func (f *fakeOrgRepo) addUser(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeOrgRepo) addTeam(team *models.Team) *models.Team {
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	f.teams[team.ID] = team
	return team
}

func (f *fakeOrgRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeOrgRepo) FindActiveUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []models.User
	for _, u := range f.users {
		if u.Role == role && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) FindUsersByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.User, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []models.User
	for _, u := range f.users {
		if !u.IsActive {
			continue
		}
		for _, id := range u.TeamIDs {
			if id == teamID {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) GetTeamByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	team, ok := f.teams[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return team, nil
}

func (f *fakeOrgRepo) FindTeamsByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]models.Team, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []models.Team
	for _, t := range f.teams {
		if t.DepartmentID == departmentID && t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) GetDepartmentByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	department, ok := f.departments[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return department, nil
}

func (f *fakeOrgRepo) FindDepartmentHead(ctx context.Context, departmentID primitive.ObjectID) (*models.User, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	for _, u := range f.users {
		if u.Role != models.RoleManager || !u.IsActive {
			continue
		}
		for _, id := range u.DepartmentIDs {
			if id == departmentID {
				return u, nil
			}
		}
	}
	return nil, mongo.ErrNoDocuments
}

type fakeDispatcher struct {
	delivered []models.Notification
	err       error
}

func (f *fakeDispatcher) Notify(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	notification.ID = primitive.NewObjectID()
	f.delivered = append(f.delivered, *notification)
	return notification, nil
}

type fakeBadgeRepo struct {
	awarded map[models.BadgeName]bool
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{awarded: make(map[models.BadgeName]bool)}
}

func (f *fakeBadgeRepo) HasBadge(ctx context.Context, userID primitive.ObjectID, name models.BadgeName) (bool, error) {
	return f.awarded[name], nil
}

func (f *fakeBadgeRepo) Award(ctx context.Context, badge *models.UserBadge) error {
	badge.ID = primitive.NewObjectID()
	f.awarded[badge.Name] = true
	return nil
}

func (f *fakeBadgeRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserBadge, error) {
	return nil, nil
}
