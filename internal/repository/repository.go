package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/utils"
)

// ErrStaleVersion is returned by versioned updates when the row changed
// since it was read.
var ErrStaleVersion = errors.New("repository: stale version")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateRole changes a user's role
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and its owner membership in one transaction
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project with its owner and members preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// ListForUser lists projects the user owns or belongs to
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)

	// ListAll lists every project
	ListAll(ctx context.Context) ([]models.Project, error)

	// UpdateWithVersion applies fields if the stored version still equals expected
	UpdateWithVersion(ctx context.Context, id uuid.UUID, expected int, fields map[string]interface{}) error

	// AddMember adds a member to a project
	AddMember(ctx context.Context, member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error

	// FindMember finds a specific project member
	FindMember(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error)

	// DeleteCascade deletes a project and every record that depends on it
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uuid.UUID, preload ...string) (*models.Task, error)

	// ListByProject lists a project's tasks with optional filters
	ListByProject(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// UpdateWithVersion applies fields if the stored version still equals expected
	UpdateWithVersion(ctx context.Context, id uuid.UUID, expected int, fields map[string]interface{}) error

	// DeleteCascade deletes a task with its comments and notifications
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID    uuid.UUID
	Status       *models.TaskStatus
	AssignedToID *uuid.UUID
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(ctx context.Context, comment *models.Comment) error

	// FindByID finds a comment with its author preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	// ListByTask lists a task's comments oldest first
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error)
}

// ActivityRepository defines the interface for activity data access
type ActivityRepository interface {
	// Create appends an activity
	Create(ctx context.Context, activity *models.Activity) error

	// FindByID finds an activity with its actor preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)

	// ListByProject lists a project's activities newest first
	ListByProject(ctx context.Context, projectID uuid.UUID, params utils.PaginationParams) ([]models.Activity, int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(ctx context.Context, notification *models.Notification) error

	// FindByID finds a notification with its project preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)

	// ListForRecipient lists a user's notifications newest first
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, params utils.PaginationParams) ([]models.Notification, int64, error)

	// CountUnread counts a user's unread notifications
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// MarkRead marks one of the recipient's notifications read
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*models.Notification, error)

	// MarkAllRead marks every unread notification of the recipient read
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}
