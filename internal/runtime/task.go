package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shepherd-rt/servicecore/internal/session"
)

// TaskWrapper is the internal carrier captured at fork time (spec.md §3):
// the user task's session, a point-in-time snapshot of that session's
// properties, and an ordering key. It has no void/value-returning
// distinction at this layer — Fork and ForkValue both build one, the
// distinction lives in how the task's result is handed back (ForkValue
// completes a Future, Fork returns nothing).
type TaskWrapper struct {
	Session    *session.Context
	Properties map[string]any
	CreatedAt  time.Time
	Tiebreak   string
}

func newTaskWrapper(ctx context.Context) *TaskWrapper {
	sess := session.Current(ctx)
	return &TaskWrapper{
		Session:    sess,
		Properties: session.Snapshot(sess),
		CreatedAt:  time.Now(),
		Tiebreak:   uuid.NewString(),
	}
}

// Less orders TaskWrapper values by creation time descending — newer
// tasks win ties first — with Tiebreak as a stable secondary key so equal
// timestamps never collide (spec.md §5). It is the ordering primitive a
// priority-queue-backed pool would sort on; ants schedules FIFO and does
// not consult it, so it is not wired into Pool.Execute and nothing in this
// module calls it.
func Less(a, b *TaskWrapper) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Tiebreak < b.Tiebreak
}
