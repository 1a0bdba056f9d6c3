package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/authz"
	"github.com/yukikurage/project-collab-api/internal/dto"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"github.com/yukikurage/project-collab-api/internal/utils"
	"gorm.io/gorm"
)

// ProjectService handles project and membership business logic
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	activityRepo  repository.ActivityRepository
	activities    *ActivityService
	notifications *NotificationService
	publisher     Publisher
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	activities *ActivityService,
	notifications *NotificationService,
	publisher Publisher,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		activityRepo:  activityRepo,
		activities:    activities,
		notifications: notifications,
		publisher:     publisher,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProjectInput represents input for updating project metadata.
// ExpectedVersion, when set, must match the stored version.
type UpdateProjectInput struct {
	Name            *string
	Description     *string
	StartDate       *time.Time
	EndDate         *time.Time
	ClearStartDate  bool
	ClearEndDate    bool
	ExpectedVersion *int
}

// CreateProject creates a project owned by actor. The owner is its first member.
func (s *ProjectService) CreateProject(ctx context.Context, actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if err := authorize(actor, authz.OpProjectCreate, nil); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		OwnerID:     actor.ID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Version:     1,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, apierrors.Transient("failed to create project", err)
	}

	return loadProject(ctx, s.projectRepo, project.ID)
}

// ListProjects returns the projects visible to actor. Admins see every project.
func (s *ProjectService) ListProjects(ctx context.Context, actor *models.User) ([]models.Project, error) {
	var (
		projects []models.Project
		err      error
	)
	if actor.Role == models.RoleAdmin {
		projects, err = s.projectRepo.ListAll(ctx)
	} else {
		projects, err = s.projectRepo.ListForUser(ctx, actor.ID)
	}
	if err != nil {
		return nil, apierrors.Transient("failed to list projects", err)
	}
	return projects, nil
}

// GetProject returns a project with its members
func (s *ProjectService) GetProject(ctx context.Context, actor *models.User, projectID uuid.UUID) (*models.Project, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpProjectRead, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject changes project metadata and records updated_project
func (s *ProjectService) UpdateProject(ctx context.Context, actor *models.User, projectID uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpProjectUpdate, project); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	name := project.Name
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}

	start, end := project.StartDate, project.EndDate
	if input.ClearStartDate {
		start = nil
		fields["start_date"] = nil
	} else if input.StartDate != nil {
		start = input.StartDate
		fields["start_date"] = *input.StartDate
	}
	if input.ClearEndDate {
		end = nil
		fields["end_date"] = nil
	} else if input.EndDate != nil {
		end = input.EndDate
		fields["end_date"] = *input.EndDate
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return project, nil
	}

	expected := project.Version
	if input.ExpectedVersion != nil {
		expected = *input.ExpectedVersion
	}
	if err := s.projectRepo.UpdateWithVersion(ctx, project.ID, expected, fields); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, ErrVersionConflict
		}
		return nil, apierrors.Transient("failed to update project", err)
	}

	s.activities.Record(ctx, ActivityEntry{
		Action:    models.ActionUpdatedProject,
		Actor:     actor,
		ProjectID: project.ID,
		Details:   fmt.Sprintf("%s updated project \"%s\"", actor.Name, name),
		Metadata:  map[string]interface{}{"fields": fieldNames(fields)},
	})

	return loadProject(ctx, s.projectRepo, project.ID)
}

// DeleteProject removes the project and everything that depends on it,
// then tells subscribers of the project topic and closes it.
func (s *ProjectService) DeleteProject(ctx context.Context, actor *models.User, projectID uuid.UUID) error {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return err
	}
	if err := authorize(actor, authz.OpProjectDelete, project); err != nil {
		return err
	}

	if err := s.projectRepo.DeleteCascade(ctx, project.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return apierrors.Transient("failed to delete project", err)
	}

	s.publisher.Publish(realtime.ProjectTopic(project.ID), realtime.EventProjectDeleted, dto.ProjectDeletedEvent{ProjectID: project.ID})
	s.publisher.LeaveAll(uuid.Nil, realtime.ProjectTopic(project.ID))
	log.Printf("project %s deleted by %s", project.ID, actor.ID)
	return nil
}

// AddMember adds userID to the project and notifies them
func (s *ProjectService) AddMember(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) (*models.Project, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpMemberAdd, project); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Transient("failed to find user", err)
	}
	if project.HasMember(user.ID) {
		return nil, ErrAlreadyMember
	}

	if err := s.projectRepo.AddMember(ctx, &models.ProjectMember{ProjectID: project.ID, UserID: user.ID}); err != nil {
		// lost a race with a concurrent add
		if _, findErr := s.projectRepo.FindMember(ctx, project.ID, user.ID); findErr == nil {
			return nil, ErrAlreadyMember
		}
		return nil, apierrors.Transient("failed to add member", err)
	}

	s.activities.Record(ctx, ActivityEntry{
		Action:    models.ActionAddedMember,
		Actor:     actor,
		ProjectID: project.ID,
		Details:   fmt.Sprintf("%s added %s to the project", actor.Name, user.Name),
		Metadata:  map[string]interface{}{"userId": user.ID.String()},
	})

	if user.ID != actor.ID {
		s.notifications.Notify(ctx, Notice{
			RecipientID: user.ID,
			Type:        models.NotificationMemberAdded,
			Title:       "Added to Project",
			Message:     fmt.Sprintf("%s added you to \"%s\"", actor.Name, project.Name),
			ProjectID:   &project.ID,
		})
	}

	return loadProject(ctx, s.projectRepo, project.ID)
}

// RemoveMember removes userID from the project. The owner cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, actor *models.User, projectID, userID uuid.UUID) (*models.Project, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpMemberRemove, project); err != nil {
		return nil, err
	}

	if userID == project.OwnerID {
		return nil, ErrCannotRemoveOwner
	}
	var removed *models.User
	for i := range project.Members {
		if project.Members[i].UserID == userID {
			removed = &project.Members[i].User
		}
	}
	if removed == nil {
		return nil, ErrNotMember
	}

	if err := s.projectRepo.RemoveMember(ctx, project.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, apierrors.Transient("failed to remove member", err)
	}
	// open sockets keep no access to the project feed
	s.publisher.LeaveAll(userID, realtime.ProjectTopic(project.ID))

	s.activities.Record(ctx, ActivityEntry{
		Action:    models.ActionRemovedMember,
		Actor:     actor,
		ProjectID: project.ID,
		Details:   fmt.Sprintf("%s removed %s from the project", actor.Name, removed.Name),
		Metadata:  map[string]interface{}{"userId": userID.String()},
	})

	if userID != actor.ID {
		s.notifications.Notify(ctx, Notice{
			RecipientID: userID,
			Type:        models.NotificationMemberRemoved,
			Title:       "Removed from Project",
			Message:     fmt.Sprintf("%s removed you from \"%s\"", actor.Name, project.Name),
			ProjectID:   &project.ID,
		})
	}

	return loadProject(ctx, s.projectRepo, project.ID)
}

// ListActivities returns the project's activity feed, newest first
func (s *ProjectService) ListActivities(ctx context.Context, actor *models.User, projectID uuid.UUID, params utils.PaginationParams) ([]models.Activity, int64, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, 0, err
	}
	if err := authorize(actor, authz.OpActivityRead, project); err != nil {
		return nil, 0, err
	}

	activities, total, err := s.activityRepo.ListByProject(ctx, project.ID, params)
	if err != nil {
		return nil, 0, apierrors.Transient("failed to list activities", err)
	}
	return activities, total, nil
}

// CanJoinTopic reports whether actor may subscribe to the project's topic.
func (s *ProjectService) CanJoinTopic(ctx context.Context, actor *models.User, projectID uuid.UUID) bool {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return false
	}
	return authorize(actor, authz.OpTopicJoin, project) == nil
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDateRange
	}
	return nil
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
