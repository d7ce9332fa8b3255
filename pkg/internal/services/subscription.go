package services

import (
	"sync"

	"github.com/samber/lo"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// ChannelSubscription tracks which channels the session is joined to on
// the stream. At most one text channel at a time; direct channels are an
// independent scope and never interact with the text subscription.
//
// Subscription changes are the only thing allowed to emit join/leave
// commands — nothing here runs per render or per poll.
type ChannelSubscription struct {
	mu         sync.Mutex
	bus        EventBus
	activeText string
	activeDMs  map[string]struct{}
}

func NewChannelSubscription(bus EventBus) *ChannelSubscription {
	return &ChannelSubscription{
		bus:       bus,
		activeDMs: make(map[string]struct{}),
	}
}

// SwitchTextChannel leaves the previous text channel and joins the new one,
// strictly in that order. Same-channel switches are a no-op. When the
// stream is down the desired channel is recorded and Resubscribe replays it
// after reconnect.
func (s *ChannelSubscription) SwitchTextChannel(newId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newId == s.activeText {
		return nil
	}

	// The desired channel is recorded before the emits; when a write fails
	// the stream lags the recorded scope until Resubscribe replays it.
	prev := s.activeText
	s.activeText = newId

	if !s.bus.IsConnected() {
		return nil
	}

	if len(prev) > 0 {
		if err := s.bus.Emit(models.CommandLeaveChannel, models.CommandChannelBody{ChannelID: prev}); err != nil {
			return err
		}
	}
	if len(newId) > 0 {
		if err := s.bus.Emit(models.CommandJoinChannel, models.CommandChannelBody{ChannelID: newId}); err != nil {
			return err
		}
	}

	return nil
}

func (s *ChannelSubscription) ActiveTextChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeText
}

func (s *ChannelSubscription) JoinDM(channelId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeDMs[channelId]; ok {
		return nil
	}
	s.activeDMs[channelId] = struct{}{}

	if !s.bus.IsConnected() {
		return nil
	}
	return s.bus.Emit(models.CommandJoinDMChannel, models.CommandChannelBody{ChannelID: channelId})
}

func (s *ChannelSubscription) LeaveDM(channelId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeDMs[channelId]; !ok {
		return nil
	}
	delete(s.activeDMs, channelId)

	if !s.bus.IsConnected() {
		return nil
	}
	return s.bus.Emit(models.CommandLeaveDMChannel, models.CommandChannelBody{ChannelID: channelId})
}

func (s *ChannelSubscription) ActiveDMChannels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Keys(s.activeDMs)
}

// Resubscribe replays the current subscriptions; wired to the connection
// open hook so a reconnect restores the session's scopes.
func (s *ChannelSubscription) Resubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.activeText) > 0 {
		_ = s.bus.Emit(models.CommandJoinChannel, models.CommandChannelBody{ChannelID: s.activeText})
	}
	for channelId := range s.activeDMs {
		_ = s.bus.Emit(models.CommandJoinDMChannel, models.CommandChannelBody{ChannelID: channelId})
	}
}
