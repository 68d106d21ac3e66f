package repository

import (
	"context"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrgRepository exposes the read-only slice of the user/team/department
// hierarchy that notification fan-out traverses.
type OrgRepository interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindActiveUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindUsersByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.User, error)
	GetTeamByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
	FindTeamsByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]models.Team, error)
	GetDepartmentByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error)
	FindDepartmentHead(ctx context.Context, departmentID primitive.ObjectID) (*models.User, error)
}

type orgRepository struct {
	users       *mongo.Collection
	teams       *mongo.Collection
	departments *mongo.Collection
}

func NewOrgRepository(db *mongo.Database) OrgRepository {
	return &orgRepository{
		users:       db.Collection("users"),
		teams:       db.Collection("teams"),
		departments: db.Collection("departments"),
	}
}

func (r *orgRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *orgRepository) FindActiveUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"role": role, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *orgRepository) FindUsersByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"team_ids": teamID, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *orgRepository) GetTeamByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var team models.Team
	err := r.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		return nil, err
	}

	return &team, nil
}

func (r *orgRepository) FindTeamsByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]models.Team, error) {
	cursor, err := r.teams.Find(ctx, bson.M{"department_id": departmentID, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var teams []models.Team
	if err = cursor.All(ctx, &teams); err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *orgRepository) GetDepartmentByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	var department models.Department
	err := r.departments.FindOne(ctx, bson.M{"_id": id}).Decode(&department)
	if err != nil {
		return nil, err
	}

	return &department, nil
}

// FindDepartmentHead returns the active manager whose department list
// includes the given department, or mongo.ErrNoDocuments.
func (r *orgRepository) FindDepartmentHead(ctx context.Context, departmentID primitive.ObjectID) (*models.User, error) {
	filter := bson.M{
		"role":           models.RoleManager,
		"department_ids": departmentID,
		"is_active":      true,
	}

	var user models.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
