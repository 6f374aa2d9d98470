package session

import (
	"context"
	"sync"

	"taskmirror/domain"
)

// DragHandler tracks a single drag gesture across the board. Only one active
// drag is tracked at a time; beginning a new one abandons the previous id.
// The mutation for a finished gesture is issued before a new gesture can
// begin, so the abandoned id never loses an update.
type DragHandler struct {
	session *Session

	mu       sync.Mutex
	activeID string
}

// Begin records the dragged task's id.
func (d *DragHandler) Begin(taskID string) {
	d.mu.Lock()
	d.activeID = taskID
	d.mu.Unlock()
}

// Drop ends the gesture over the given target container. A target that does
// not name a board column, a drop without an active drag, and a drop onto
// the task's current column are all committed no-ops: no remote call, no
// notification, no error. Otherwise a single status update is issued through
// the session, which reports the outcome and applies the fallback reload
// rule. The mirror is never mutated optimistically; the board is re-derived
// from the mirror, so a failed update simply never shows up.
func (d *DragHandler) Drop(ctx context.Context, target string) error {
	d.mu.Lock()
	id := d.activeID
	d.activeID = ""
	d.mu.Unlock()

	if id == "" {
		return nil
	}
	status := domain.TaskStatus(target)
	if !status.Valid() {
		return nil
	}
	for _, t := range d.session.Tasks() {
		if t.ID == id {
			if t.Status == status {
				return nil
			}
			break
		}
	}
	return d.session.UpdateTask(ctx, id, map[string]any{"status": string(status)})
}
