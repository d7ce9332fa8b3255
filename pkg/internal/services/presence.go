package services

import (
	"sync"
	"time"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// PresenceRoster applies inbound status changes, last write wins. Users
// never seen default to offline.
type PresenceRoster struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]models.PresenceEntry
}

func NewPresenceRoster() *PresenceRoster {
	return &PresenceRoster{
		now:     time.Now,
		entries: make(map[string]models.PresenceEntry),
	}
}

func (p *PresenceRoster) ApplyStatus(userId string, status models.UserStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[userId] = models.PresenceEntry{
		UserID:    userId,
		Status:    status,
		UpdatedAt: p.now(),
	}
}

func (p *PresenceRoster) Status(userId string) models.UserStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.entries[userId]; ok {
		return entry.Status
	}
	return models.StatusOffline
}

func (p *PresenceRoster) Snapshot() []models.PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PresenceEntry, 0, len(p.entries))
	for _, entry := range p.entries {
		out = append(out, entry)
	}
	return out
}
