package services

import (
	"sync"
	"time"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// Timeline is the ordered message list of one channel, text or direct
// alike. It is the single owner of that list; every mutation goes through
// one of the Apply methods under the lock.
type Timeline struct {
	mu        sync.Mutex
	channelID string
	messages  []models.Message
}

func NewTimeline(channelID string) *Timeline {
	return &Timeline{channelID: channelID}
}

func (t *Timeline) ChannelID() string {
	return t.channelID
}

// AppendOptimistic inserts a locally minted message at the tail before any
// network confirmation, so the sender sees instant feedback. Same-tick
// sends keep their as-sent order.
func (t *Timeline) AppendOptimistic(message models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, message)
}

// ApplyInbound merges one authoritative message into the list.
//
// A message whose id is already present is a re-delivered event and leaves
// the list untouched. Otherwise at most one optimistic entry matching on
// (user, content, channel) is collapsed — the oldest one, so two identical
// sends in flight each get their own confirmation. The collapsed temp id is
// returned so the outbox can settle its pending record.
func (t *Timeline) ApplyInbound(message models.Message) (collapsed string, applied bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, item := range t.messages {
		if item.ID == message.ID {
			return "", false
		}
	}

	for idx, item := range t.messages {
		if !item.IsPending() {
			continue
		}
		if item.UserID == message.UserID && item.Content == message.Content && item.ChannelID == message.ChannelID {
			collapsed = item.ID
			t.messages = append(t.messages[:idx], t.messages[idx+1:]...)
			break
		}
	}

	t.messages = append(t.messages, message)

	return collapsed, true
}

// ApplyEdit mutates content in place. A missing id means the message
// scrolled out of retained history; silently ignored.
func (t *Timeline) ApplyEdit(id string, content string, editedAt time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for idx := range t.messages {
		if t.messages[idx].ID == id {
			t.messages[idx].Content = content
			t.messages[idx].EditedAt = &editedAt
			return true
		}
	}
	return false
}

func (t *Timeline) ApplyDelete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for idx := range t.messages {
		if t.messages[idx].ID == id {
			t.messages = append(t.messages[:idx], t.messages[idx+1:]...)
			return true
		}
	}
	return false
}

// ApplyReactions replaces the reaction state wholesale; the server is the
// source of truth, no incremental merge is attempted locally.
func (t *Timeline) ApplyReactions(id string, reactions []models.Reaction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for idx := range t.messages {
		if t.messages[idx].ID == id {
			t.messages[idx].Reactions = reactions
			return true
		}
	}
	return false
}

// ResetHistory replaces the list with freshly fetched history while keeping
// any still-pending optimistic entries at the tail. Overlap between push and
// poll delivery is safe because history entries carry authoritative ids.
func (t *Timeline) ResetHistory(history []models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pending []models.Message
	for _, item := range t.messages {
		if item.IsPending() {
			pending = append(pending, item)
		}
	}
	t.messages = append(history, pending...)
}

// Snapshot returns a copy for the view layer to render.
func (t *Timeline) Snapshot() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Reconciler hands out one Timeline per channel.
type Reconciler struct {
	mu        sync.Mutex
	timelines map[string]*Timeline
}

func NewReconciler() *Reconciler {
	return &Reconciler{timelines: make(map[string]*Timeline)}
}

func (r *Reconciler) Timeline(channelID string) *Timeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	if timeline, ok := r.timelines[channelID]; ok {
		return timeline
	}
	timeline := NewTimeline(channelID)
	r.timelines[channelID] = timeline
	return timeline
}

func (r *Reconciler) Drop(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.timelines, channelID)
}

func (r *Reconciler) snapshot() []*Timeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Timeline, 0, len(r.timelines))
	for _, timeline := range r.timelines {
		out = append(out, timeline)
	}
	return out
}

// DeleteEverywhere handles delete events that only carry a message id.
// Ids are unique across channels, so the first hit wins.
func (r *Reconciler) DeleteEverywhere(id string) bool {
	for _, timeline := range r.snapshot() {
		if timeline.ApplyDelete(id) {
			return true
		}
	}
	return false
}

// ApplyReactionsEverywhere resolves a reaction event by message id alone,
// same as DeleteEverywhere.
func (r *Reconciler) ApplyReactionsEverywhere(id string, reactions []models.Reaction) bool {
	for _, timeline := range r.snapshot() {
		if timeline.ApplyReactions(id, reactions) {
			return true
		}
	}
	return false
}
