package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/authz"
	"github.com/yukikurage/project-collab-api/internal/dto"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/repository"
)

// CommentService handles task comments
type CommentService struct {
	commentRepo   repository.CommentRepository
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	activities    *ActivityService
	notifications *NotificationService
	publisher     Publisher
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	activities *ActivityService,
	notifications *NotificationService,
	publisher Publisher,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		activities:    activities,
		notifications: notifications,
		publisher:     publisher,
	}
}

// CreateComment adds a comment to a task. It pushes new-comment to the
// project topic, records added_comment and notifies the assignee unless
// they wrote the comment.
func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, taskID uuid.UUID, text string) (*models.Comment, error) {
	task, project, err := loadTask(ctx, s.taskRepo, s.projectRepo, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpCommentCreate, project); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}

	comment := &models.Comment{
		Text:   text,
		TaskID: task.ID,
		UserID: actor.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, apierrors.Transient("failed to create comment", err)
	}

	populated, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, apierrors.Transient("failed to reload comment", err)
	}

	s.publisher.Publish(realtime.ProjectTopic(project.ID), realtime.EventNewComment, dto.NewCommentEvent{
		Comment: dto.ToCommentDTO(*populated),
		TaskID:  task.ID,
	})

	s.activities.Record(ctx, ActivityEntry{
		Action:    models.ActionAddedComment,
		Actor:     actor,
		ProjectID: project.ID,
		Details:   fmt.Sprintf("%s commented on \"%s\"", actor.Name, task.Title),
		Metadata: map[string]interface{}{
			"taskId":    task.ID.String(),
			"commentId": populated.ID.String(),
		},
	})

	if task.AssignedToID != nil && *task.AssignedToID != actor.ID {
		s.notifications.Notify(ctx, Notice{
			RecipientID: *task.AssignedToID,
			Type:        models.NotificationCommentAdded,
			Title:       "New Comment",
			Message:     fmt.Sprintf("%s commented on \"%s\"", actor.Name, task.Title),
			ProjectID:   &project.ID,
			TaskID:      &task.ID,
		})
	}

	return populated, nil
}

// ListComments returns a task's comments, oldest first
func (s *CommentService) ListComments(ctx context.Context, actor *models.User, taskID uuid.UUID) ([]models.Comment, error) {
	task, project, err := loadTask(ctx, s.taskRepo, s.projectRepo, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpCommentRead, project); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, apierrors.Transient("failed to list comments", err)
	}
	return comments, nil
}
