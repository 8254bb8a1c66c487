package backup

import (
	"context"
	"time"
)

const (
	EventImported = "imported"
	EventCleared  = "cleared"
	EventArchived = "archived"
)

// Event is published after a backup operation commits.
type Event struct {
	Action  string       `json:"action"`
	Stats   *ImportStats `json:"stats,omitempty"`
	Deleted ClearResult  `json:"deleted,omitempty"`
	Object  string       `json:"object,omitempty"`
	At      string       `json:"at"`
}

// notify publishes ev. Delivery failures are logged and never reach the caller.
func (e *Engine) notify(ctx context.Context, ev Event) {
	if e.events == nil {
		return
	}
	ev.At = e.now().UTC().Format(time.RFC3339)
	if err := e.events.Publish(ctx, ev, map[string]string{"action": ev.Action}); err != nil {
		e.logFields(ctx, "notify").WithError(err).WithField("action", ev.Action).Warn("backup event not published")
	}
}
