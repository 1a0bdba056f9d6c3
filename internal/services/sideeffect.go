package services

import (
	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/realtime"
)

// SideEffect is the outcome of a best-effort step that runs after a
// primary mutation has already succeeded. Callers may inspect or discard
// it; a failure is logged where it happens and never fails the mutation.
type SideEffect[T any] struct {
	Value   *T
	Err     error
	Skipped bool
}

// Done reports whether the step ran and succeeded.
func (r SideEffect[T]) Done() bool {
	return r.Err == nil && !r.Skipped && r.Value != nil
}

func succeeded[T any](v *T) SideEffect[T] {
	return SideEffect[T]{Value: v}
}

func failed[T any](err error) SideEffect[T] {
	return SideEffect[T]{Err: err}
}

func skipped[T any]() SideEffect[T] {
	return SideEffect[T]{Skipped: true}
}

// Publisher pushes an event to every subscriber of a topic. It must not block.
// LeaveAll revokes userID's subscriptions to topic (every subscriber when
// userID is uuid.Nil), ordered after previously published events.
type Publisher interface {
	Publish(topic realtime.Topic, event string, payload interface{})
	LeaveAll(userID uuid.UUID, topic realtime.Topic)
}
