package services

import (
	"context"
	"errors"
	"fmt"

	"okrproject/models"
	repository "okrproject/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dispatcher turns a resolved (recipient, message) pair into a persisted,
// user-visible notification.
type Dispatcher interface {
	Notify(ctx context.Context, notification *models.Notification) (*models.Notification, error)
}

type repoDispatcher struct {
	notificationRepo repository.NotificationRepository
}

func NewRepoDispatcher(notificationRepo repository.NotificationRepository) Dispatcher {
	return &repoDispatcher{
		notificationRepo: notificationRepo,
	}
}

func (d *repoDispatcher) Notify(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := d.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// NotificationService resolves which users must be alerted for a goal event
// and dispatches one notification per recipient. Fan-out failures are logged
// and swallowed: they must never roll back or block the triggering write.
type NotificationService interface {
	ResolveObjectiveRecipients(ctx context.Context, objective *models.Objective, actorID primitive.ObjectID) []string
	ResolveCheckInRecipients(ctx context.Context, kr *models.KeyResult, objective *models.Objective, actorID primitive.ObjectID) []string
	NotifyObjectiveEvent(ctx context.Context, objective *models.Objective, action models.NotificationActionType, actorID primitive.ObjectID)
	NotifyCheckInEvent(ctx context.Context, checkin *models.CheckIn, kr *models.KeyResult, objective *models.Objective, actorID primitive.ObjectID)
	NotifyBadgeEarned(ctx context.Context, badge *models.UserBadge)
}

type notificationService struct {
	orgRepo    repository.OrgRepository
	okrRepo    repository.OKRRepository
	dispatcher Dispatcher
}

func NewNotificationService(orgRepo repository.OrgRepository, okrRepo repository.OKRRepository, dispatcher Dispatcher) NotificationService {
	return &notificationService{
		orgRepo:    orgRepo,
		okrRepo:    okrRepo,
		dispatcher: dispatcher,
	}
}

// RenderedMessage is the template output for one action type.
type RenderedMessage struct {
	Title    string
	Message  string
	Priority models.NotificationPriority
}

// RenderMessage maps an action type to a {title, message, priority} triple.
// An unknown action falls back to a generic notification rather than failing.
func RenderMessage(action models.NotificationActionType, entityName string, objectiveType models.ObjectiveType) RenderedMessage {
	switch action {
	case models.ActionOKRCreated:
		priority := models.PriorityMedium
		if objectiveType == models.ObjectiveCompany {
			priority = models.PriorityHigh
		}
		return RenderedMessage{
			Title:    "New Objective Created",
			Message:  fmt.Sprintf("A new objective \"%s\" has been created", entityName),
			Priority: priority,
		}
	case models.ActionOKRUpdated:
		return RenderedMessage{
			Title:    "Objective Updated",
			Message:  fmt.Sprintf("The objective \"%s\" has been updated", entityName),
			Priority: models.PriorityMedium,
		}
	case models.ActionOKRDeleted:
		return RenderedMessage{
			Title:    "Objective Deleted",
			Message:  fmt.Sprintf("The objective \"%s\" has been deleted", entityName),
			Priority: models.PriorityMedium,
		}
	case models.ActionCheckInSubmitted:
		return RenderedMessage{
			Title:    "New Check-in",
			Message:  fmt.Sprintf("A new check-in was submitted for \"%s\"", entityName),
			Priority: models.PriorityMedium,
		}
	case models.ActionBadgeEarned:
		return RenderedMessage{
			Title:    "Badge Earned",
			Message:  fmt.Sprintf("You have earned the \"%s\" badge", entityName),
			Priority: models.PriorityLow,
		}
	case models.ActionTeamAssignment:
		return RenderedMessage{
			Title:    "Team Assignment",
			Message:  fmt.Sprintf("You have been assigned to the team \"%s\"", entityName),
			Priority: models.PriorityMedium,
		}
	case models.ActionDeadlineApproaching:
		return RenderedMessage{
			Title:    "Deadline Approaching",
			Message:  fmt.Sprintf("The objective \"%s\" is approaching its due date", entityName),
			Priority: models.PriorityHigh,
		}
	default:
		return RenderedMessage{
			Title:    "Notification",
			Message:  "You have a new notification",
			Priority: models.PriorityMedium,
		}
	}
}

// ActionURL maps a related model to the route a notification links to.
func ActionURL(relatedModel string, relatedID primitive.ObjectID) string {
	switch relatedModel {
	case "Objective", "KeyResult", "CheckIn":
		return "/okr/" + relatedID.Hex()
	case "Badge":
		return "/profile"
	case "Team":
		return "/teams"
	case "User":
		return "/users"
	default:
		return "/"
	}
}

// ResolveObjectiveRecipients walks the org hierarchy for an objective event
// and returns the deduplicated recipient ids, never including the actor. Any
// repository failure is logged and yields an empty set.
func (s *notificationService) ResolveObjectiveRecipients(ctx context.Context, objective *models.Objective, actorID primitive.ObjectID) []string {
	set := NewRecipientSet()

	var err error
	switch objective.Type {
	case models.ObjectiveCompany:
		err = s.addCompanyRecipients(ctx, set)
	case models.ObjectiveDepartment:
		err = s.addDepartmentRecipients(ctx, set, objective.DepartmentID)
	case models.ObjectiveTeam:
		err = s.addTeamRecipients(ctx, set, objective.TeamID)
	case models.ObjectiveIndividual:
		err = s.addIndividualRecipients(ctx, set, actorID)
	}

	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"objective_id":   objective.ID.Hex(),
			"objective_type": objective.Type,
		}).Error("ResolveObjectiveRecipients: hierarchy lookup failed, skipping fan-out")
		return []string{}
	}

	set.Remove(actorID)
	return set.IDs()
}

// company: all active admins and all active managers.
func (s *notificationService) addCompanyRecipients(ctx context.Context, set *RecipientSet) error {
	admins, err := s.orgRepo.FindActiveUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to find admins: %w", err)
	}
	set.AddUsers(admins)

	managers, err := s.orgRepo.FindActiveUsersByRole(ctx, models.RoleManager)
	if err != nil {
		return fmt.Errorf("failed to find managers: %w", err)
	}
	set.AddUsers(managers)

	return nil
}

// department: the department head, the leader of every active team in the
// department, and all active admins.
func (s *notificationService) addDepartmentRecipients(ctx context.Context, set *RecipientSet, departmentID *primitive.ObjectID) error {
	if departmentID == nil {
		logrus.Warn("addDepartmentRecipients: department objective without department id")
		return nil
	}

	head, err := s.orgRepo.FindDepartmentHead(ctx, *departmentID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to find department head: %w", err)
	}
	if head != nil {
		set.Add(head.ID)
	}

	teams, err := s.orgRepo.FindTeamsByDepartment(ctx, *departmentID)
	if err != nil {
		return fmt.Errorf("failed to find department teams: %w", err)
	}
	for _, team := range teams {
		if team.LeaderID != nil {
			set.Add(*team.LeaderID)
		}
	}

	admins, err := s.orgRepo.FindActiveUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to find admins: %w", err)
	}
	set.AddUsers(admins)

	return nil
}

// team: the team leader, every active member of the team, and the head of
// the team's department when it has one.
func (s *notificationService) addTeamRecipients(ctx context.Context, set *RecipientSet, teamID *primitive.ObjectID) error {
	if teamID == nil {
		logrus.Warn("addTeamRecipients: team objective without team id")
		return nil
	}

	team, err := s.orgRepo.GetTeamByID(ctx, *teamID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if team.LeaderID != nil {
		set.Add(*team.LeaderID)
	}

	members, err := s.orgRepo.FindUsersByTeam(ctx, team.ID)
	if err != nil {
		return fmt.Errorf("failed to find team members: %w", err)
	}
	set.AddUsers(members)

	if !team.DepartmentID.IsZero() {
		head, err := s.orgRepo.FindDepartmentHead(ctx, team.DepartmentID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("failed to find department head: %w", err)
		}
		if head != nil {
			set.Add(head.ID)
		}
	}

	return nil
}

// individual: the acting user's own first-team leader and first-department
// head. Note this branch deliberately looks at the actor's hierarchy, not
// the objective owner's.
func (s *notificationService) addIndividualRecipients(ctx context.Context, set *RecipientSet, actorID primitive.ObjectID) error {
	actor, err := s.orgRepo.GetUserByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("failed to find acting user: %w", err)
	}

	if len(actor.TeamIDs) > 0 {
		team, err := s.orgRepo.GetTeamByID(ctx, actor.TeamIDs[0])
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("failed to find actor team: %w", err)
		}
		if team != nil && team.LeaderID != nil {
			set.Add(*team.LeaderID)
		}
	}

	if len(actor.DepartmentIDs) > 0 {
		head, err := s.orgRepo.FindDepartmentHead(ctx, actor.DepartmentIDs[0])
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("failed to find actor department head: %w", err)
		}
		if head != nil {
			set.Add(head.ID)
		}
	}

	return nil
}

// ResolveCheckInRecipients selects the key result owner, the actor's team
// leader, and the parent objective's owner, each skipped when equal to the
// actor.
func (s *notificationService) ResolveCheckInRecipients(ctx context.Context, kr *models.KeyResult, objective *models.Objective, actorID primitive.ObjectID) []string {
	set := NewRecipientSet()

	if kr.OwnerID != actorID {
		set.Add(kr.OwnerID)
	}

	actor, err := s.orgRepo.GetUserByID(ctx, actorID)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logrus.WithError(err).WithField("actor_id", actorID.Hex()).
				Error("ResolveCheckInRecipients: failed to find acting user, skipping fan-out")
			return []string{}
		}
	} else if len(actor.TeamIDs) > 0 {
		team, teamErr := s.orgRepo.GetTeamByID(ctx, actor.TeamIDs[0])
		if teamErr != nil && !errors.Is(teamErr, mongo.ErrNoDocuments) {
			logrus.WithError(teamErr).WithField("actor_id", actorID.Hex()).
				Error("ResolveCheckInRecipients: failed to find actor team, skipping fan-out")
			return []string{}
		}
		if team != nil && team.LeaderID != nil && *team.LeaderID != actorID {
			set.Add(*team.LeaderID)
		}
	}

	if objective.AlignedToID != nil {
		parent, parentErr := s.okrRepo.GetObjectiveByID(ctx, *objective.AlignedToID)
		if parentErr != nil && !errors.Is(parentErr, mongo.ErrNoDocuments) {
			logrus.WithError(parentErr).WithField("objective_id", objective.ID.Hex()).
				Error("ResolveCheckInRecipients: failed to find parent objective, skipping fan-out")
			return []string{}
		}
		if parent != nil && parent.OwnerID != actorID {
			set.Add(parent.OwnerID)
		}
	}

	set.Remove(actorID)
	return set.IDs()
}

// NotifyObjectiveEvent fans one objective event out to every resolved
// recipient. Dispatch failures are logged per recipient and never propagate.
func (s *notificationService) NotifyObjectiveEvent(ctx context.Context, objective *models.Objective, action models.NotificationActionType, actorID primitive.ObjectID) {
	recipients := s.ResolveObjectiveRecipients(ctx, objective, actorID)
	rendered := RenderMessage(action, objective.Title, objective.Type)

	s.dispatch(ctx, recipients, action, rendered, objective.ID, "Objective")
}

// NotifyCheckInEvent fans a submitted check-in out to the interested owners.
func (s *notificationService) NotifyCheckInEvent(ctx context.Context, checkin *models.CheckIn, kr *models.KeyResult, objective *models.Objective, actorID primitive.ObjectID) {
	recipients := s.ResolveCheckInRecipients(ctx, kr, objective, actorID)
	rendered := RenderMessage(models.ActionCheckInSubmitted, kr.Title, objective.Type)

	s.dispatch(ctx, recipients, models.ActionCheckInSubmitted, rendered, checkin.ID, "CheckIn")
}

// NotifyBadgeEarned notifies a single user about their own badge.
func (s *notificationService) NotifyBadgeEarned(ctx context.Context, badge *models.UserBadge) {
	rendered := RenderMessage(models.ActionBadgeEarned, string(badge.Name), "")

	s.dispatch(ctx, []string{badge.UserID.Hex()}, models.ActionBadgeEarned, rendered, badge.ID, "Badge")
}

func (s *notificationService) dispatch(ctx context.Context, recipients []string, action models.NotificationActionType, rendered RenderedMessage, relatedID primitive.ObjectID, relatedModel string) {
	for _, recipient := range recipients {
		userID, err := primitive.ObjectIDFromHex(recipient)
		if err != nil {
			logrus.WithField("recipient", recipient).Warn("dispatch: invalid recipient id")
			continue
		}

		related := relatedID
		notification := &models.Notification{
			UserID:       userID,
			Type:         action,
			Title:        rendered.Title,
			Message:      rendered.Message,
			RelatedID:    &related,
			RelatedModel: relatedModel,
			ActionURL:    ActionURL(relatedModel, relatedID),
			Priority:     rendered.Priority,
		}

		if _, err := s.dispatcher.Notify(ctx, notification); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"recipient": recipient,
				"action":    action,
			}).Error("dispatch: failed to deliver notification")
		}
	}
}
