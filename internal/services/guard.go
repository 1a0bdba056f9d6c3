package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/authz"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"gorm.io/gorm"
)

// authorize converts a guard decision into a service error.
func authorize(actor *models.User, op authz.Operation, project *models.Project) error {
	decision := authz.Authorize(authz.ActorOf(actor), op, authz.ForProject(project))
	switch decision.Outcome {
	case authz.OutcomeAllowed:
		return nil
	case authz.OutcomeNotFound:
		return ErrProjectNotFound
	default:
		return apierrors.Denied(decision.Reason)
	}
}

// loadProject resolves a project with its members. Existence is always
// established before any authorization decision.
func loadProject(ctx context.Context, repo repository.ProjectRepository, id uuid.UUID) (*models.Project, error) {
	project, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Transient("failed to find project", err)
	}
	return project, nil
}

// loadTask resolves a task together with its project.
func loadTask(ctx context.Context, tasks repository.TaskRepository, projects repository.ProjectRepository, id uuid.UUID) (*models.Task, *models.Project, error) {
	task, err := tasks.FindByID(ctx, id, "Creator", "AssignedTo")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, apierrors.Transient("failed to find task", err)
	}

	project, err := loadProject(ctx, projects, task.ProjectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			// a task whose project is gone is unreachable
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, err
	}
	return task, project, nil
}
