package services

import (
	"sort"
	"sync"
	"time"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// TypingWindow is how long one typing event keeps a user in the typer set.
// There is no "stopped typing" event on the wire; expiry is purely client
// side.
const TypingWindow = 3000 * time.Millisecond

// TypingTracker keeps the per-channel set of who is typing right now.
// ActiveTypers prunes at read time, so correctness never depends on the
// background sweep firing exactly on schedule.
type TypingTracker struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[string]map[string]models.TypingEntry
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{
		window:  TypingWindow,
		now:     time.Now,
		entries: make(map[string]map[string]models.TypingEntry),
	}
}

// Observe records one inbound typing event. A repeat event for the same
// (channel, user) refreshes the timer instead of duplicating the entry.
func (t *TypingTracker) Observe(channelId string, userId string, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[channelId]; !ok {
		t.entries[channelId] = make(map[string]models.TypingEntry)
	}
	t.entries[channelId][userId] = models.TypingEntry{
		ChannelID: channelId,
		UserID:    userId,
		Username:  username,
		ExpiresAt: t.now().Add(t.window),
	}
}

func (t *TypingTracker) ActiveTypers(channelId string) []models.TypingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var out []models.TypingEntry
	for userId, entry := range t.entries[channelId] {
		if !entry.ExpiresAt.After(now) {
			delete(t.entries[channelId], userId)
			continue
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Username < out[j].Username
	})

	return out
}

// DropUser removes one user's entry, used when their message arrives and
// supersedes the indicator.
func (t *TypingTracker) DropUser(channelId string, userId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if users, ok := t.entries[channelId]; ok {
		delete(users, userId)
	}
}

// DropChannel cancels interest in a channel's entries when the scope goes
// away, so stale timers stop mattering.
func (t *TypingTracker) DropChannel(channelId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, channelId)
}

// Sweep evicts expired entries; wired to the shared cron.
func (t *TypingTracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for channelId, users := range t.entries {
		for userId, entry := range users {
			if !entry.ExpiresAt.After(now) {
				delete(users, userId)
			}
		}
		if len(users) == 0 {
			delete(t.entries, channelId)
		}
	}
}
