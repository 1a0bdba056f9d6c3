package services

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/dto"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/repository"
)

// ActivityService appends audit records and pushes them to the project topic.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	publisher    Publisher
}

func NewActivityService(activityRepo repository.ActivityRepository, publisher Publisher) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		publisher:    publisher,
	}
}

// ActivityEntry describes one audit record.
type ActivityEntry struct {
	Action    models.ActivityAction
	Actor     *models.User
	ProjectID uuid.UUID
	Details   string
	Metadata  map[string]interface{}
}

// Record persists entry, re-reads it with the actor populated and
// publishes it as new-activity. Failures are logged and returned in the
// result; the caller's mutation is unaffected.
func (s *ActivityService) Record(ctx context.Context, entry ActivityEntry) SideEffect[models.Activity] {
	activity := &models.Activity{
		Action:    entry.Action,
		UserID:    entry.Actor.ID,
		ProjectID: entry.ProjectID,
		Details:   entry.Details,
		Metadata:  entry.Metadata,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		log.Printf("activity: failed to record %s on project %s by %s: %v", entry.Action, entry.ProjectID, entry.Actor.ID, err)
		return failed[models.Activity](apierrors.Transient("failed to record activity", err))
	}

	populated, err := s.activityRepo.FindByID(ctx, activity.ID)
	if err != nil {
		log.Printf("activity: failed to reload %s (%s): %v", activity.ID, entry.Action, err)
		return failed[models.Activity](apierrors.Transient("failed to reload activity", err))
	}

	s.publisher.Publish(realtime.ProjectTopic(populated.ProjectID), realtime.EventNewActivity, dto.ToActivityDTO(*populated))
	return succeeded(populated)
}
