package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"github.com/yukikurage/project-collab-api/internal/utils"
)

type publishedEvent struct {
	Topic   realtime.Topic
	Event   string
	Payload interface{}
}

// recordingPublisher captures every publish for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	events    []publishedEvent
	evictions []eviction
}

type eviction struct {
	UserID uuid.UUID
	Topic  realtime.Topic
}

func (p *recordingPublisher) LeaveAll(userID uuid.UUID, topic realtime.Topic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evictions = append(p.evictions, eviction{UserID: userID, Topic: topic})
}

func (p *recordingPublisher) evicted(topic realtime.Topic) []eviction {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []eviction
	for _, e := range p.evictions {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

func (p *recordingPublisher) Publish(topic realtime.Topic, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event, Payload: payload})
}

func (p *recordingPublisher) on(topic realtime.Topic, event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Topic == topic && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

// failingActivityRepo rejects every write.
type failingActivityRepo struct{}

func (failingActivityRepo) Create(context.Context, *models.Activity) error { return errStoreDown }

func (failingActivityRepo) FindByID(context.Context, uuid.UUID) (*models.Activity, error) {
	return nil, errStoreDown
}

func (failingActivityRepo) ListByProject(context.Context, uuid.UUID, utils.PaginationParams) ([]models.Activity, int64, error) {
	return nil, 0, errStoreDown
}

// failingNotificationRepo rejects every write.
type failingNotificationRepo struct {
	repository.NotificationRepository
}

func (failingNotificationRepo) Create(context.Context, *models.Notification) error {
	return errStoreDown
}

// stubGenerator returns canned suggestions.
type stubGenerator struct {
	tasks []GeneratedTask
	err   error
}

func (g stubGenerator) GenerateTasksFromText(context.Context, string, string) ([]GeneratedTask, error) {
	return g.tasks, g.err
}
