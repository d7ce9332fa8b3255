package services

import (
	"sync"

	"github.com/samber/lo"
)

// UnreadAggregator keeps the per-direct-channel unread counters and their
// derived total. Every transition happens under one lock, so the badge can
// never observe a total that disagrees with the per-channel counts.
type UnreadAggregator struct {
	mu     sync.Mutex
	counts map[string]int
	open   string
}

func NewUnreadAggregator() *UnreadAggregator {
	return &UnreadAggregator{counts: make(map[string]int)}
}

// Increment bumps a channel's counter unless that channel is the currently
// open scope.
func (u *UnreadAggregator) Increment(channelId string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if channelId == u.open {
		return
	}
	u.counts[channelId]++
}

// Open marks the channel as the open scope and zeroes its counter in the
// same transition.
func (u *UnreadAggregator) Open(channelId string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.open = channelId
	delete(u.counts, channelId)
}

// Close drops the open scope without touching any counter.
func (u *UnreadAggregator) Close(channelId string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.open == channelId {
		u.open = ""
	}
}

func (u *UnreadAggregator) Clear(channelId string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.counts, channelId)
}

// Load replaces the counters with server-fetched state, keeping the open
// channel at zero.
func (u *UnreadAggregator) Load(counts map[string]int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.counts = make(map[string]int)
	for channelId, count := range counts {
		if channelId == u.open || count <= 0 {
			continue
		}
		u.counts[channelId] = count
	}
}

func (u *UnreadAggregator) Count(channelId string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[channelId]
}

func (u *UnreadAggregator) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return lo.Sum(lo.Values(u.counts))
}

func (u *UnreadAggregator) Snapshot() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]int, len(u.counts))
	for channelId, count := range u.counts {
		out[channelId] = count
	}
	return out
}
