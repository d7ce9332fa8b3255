package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/ripplechat/synccore/pkg/internal/connection"
	"github.com/ripplechat/synccore/pkg/internal/models"
)

const historyPageSize = 50

// Backend is the plain request/response collaborator surface the session
// consumes; rest.Client satisfies it.
type Backend interface {
	ListMessages(channelId string, take int, offset int) ([]models.Message, error)
	ListDirectChannels() ([]models.Channel, error)
	GetUnreadCounts() (map[string]int, error)
	SaveReadingAnchor(channelId string, messageId string) error
}

// Session wires the sync components to the stream. It is the only place
// that registers stream handlers; each component stays the sole owner of
// its state and the session never mutates one component from another's
// handler.
type Session struct {
	Account models.Account

	Reconciler   *Reconciler
	Typing       *TypingTracker
	Unread       *UnreadAggregator
	Presence     *PresenceRoster
	Subscription *ChannelSubscription
	Outbox       *Outbox
	Anchors      *ReadingAnchorQueue

	bus        EventBus
	backend    Backend
	dispatcher *NotificationDispatcher
	visible    func() bool

	mu          sync.Mutex
	openChannel string
	dmChannels  []models.Channel
	refs        []connection.HandlerRef
}

func NewSession(account models.Account, bus EventBus, backend Backend, notifier Notifier, visible func() bool) *Session {
	if visible == nil {
		visible = func() bool { return true }
	}

	rec := NewReconciler()
	s := &Session{
		Account:      account,
		Reconciler:   rec,
		Typing:       NewTypingTracker(),
		Unread:       NewUnreadAggregator(),
		Presence:     NewPresenceRoster(),
		Subscription: NewChannelSubscription(bus),
		Outbox:       NewOutbox(bus, rec, account, DefaultSendTimeout),
		Anchors:      NewReadingAnchorQueue(backend),
		bus:          bus,
		backend:      backend,
		dispatcher:   NewNotificationDispatcher(notifier),
		visible:      visible,
	}

	s.refs = []connection.HandlerRef{
		bus.On(models.EventMessageReceived, s.onMessageReceived),
		bus.On(models.EventDMMessageReceived, s.onDMMessageReceived),
		bus.On(models.EventMessageEdited, s.onMessageEdited),
		bus.On(models.EventMessageDeleted, s.onMessageDeleted),
		bus.On(models.EventReactionUpdated, s.onReactionUpdated),
		bus.On(models.EventTyping, s.onTyping),
		bus.On(models.EventStatusChanged, s.onStatusChanged),
		bus.On(models.EventDMChannelUpdated, s.onDMChannelUpdated),
	}

	bus.OnOpen(func() {
		s.Subscription.Resubscribe()
		s.Outbox.Flush()
	})

	return s
}

// Start seeds server-held state: unread counters and the direct channel
// directory.
func (s *Session) Start() error {
	counts, err := s.backend.GetUnreadCounts()
	if err != nil {
		return err
	}
	s.Unread.Load(counts)

	channels, err := s.backend.ListDirectChannels()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.dmChannels = channels
	s.mu.Unlock()

	return nil
}

// Stop detaches every stream handler.
func (s *Session) Stop() {
	for _, ref := range s.refs {
		s.bus.Off(ref)
	}
	s.refs = nil
}

func (s *Session) OpenChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openChannel
}

func (s *Session) DirectChannels() []models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Channel{}, s.dmChannels...)
}

// SwitchChannel moves the text-channel scope: leave/join on the stream,
// history refetch, open scope update. The fetched page overlaps safely with
// anything pushed meanwhile.
func (s *Session) SwitchChannel(channelId string) error {
	if err := s.Subscription.SwitchTextChannel(channelId); err != nil {
		return err
	}

	// The aggregator's open scope must follow the session's, otherwise a DM
	// left behind keeps swallowing its own increments.
	s.Unread.Open(channelId)

	s.mu.Lock()
	s.openChannel = channelId
	s.mu.Unlock()

	return s.loadHistory(channelId)
}

// OpenDirectChannel brings one DM view into scope without touching the
// text-channel subscription.
func (s *Session) OpenDirectChannel(channelId string) error {
	if err := s.Subscription.JoinDM(channelId); err != nil {
		return err
	}

	s.Unread.Open(channelId)

	s.mu.Lock()
	s.openChannel = channelId
	s.mu.Unlock()

	return s.loadHistory(channelId)
}

func (s *Session) CloseDirectChannel(channelId string) error {
	if err := s.Subscription.LeaveDM(channelId); err != nil {
		return err
	}

	s.Unread.Close(channelId)
	s.Typing.DropChannel(channelId)

	s.mu.Lock()
	if s.openChannel == channelId {
		s.openChannel = s.Subscription.ActiveTextChannel()
	}
	s.mu.Unlock()

	return nil
}

func (s *Session) loadHistory(channelId string) error {
	history, err := s.backend.ListMessages(channelId, historyPageSize, 0)
	if err != nil {
		return err
	}

	// The backend pages newest first; the timeline is chronological.
	s.Reconciler.Timeline(channelId).ResetHistory(lo.Reverse(history))

	if len(history) > 0 {
		s.Anchors.Set(channelId, history[0].ID)
	}

	return nil
}

// SendMessage issues an optimistic send into the open channel.
func (s *Session) SendMessage(content string, replyTo *string, attachments []models.Attachment) (models.Message, error) {
	return s.Outbox.SendMessage(s.OpenChannel(), content, replyTo, attachments)
}

// SendTyping tells the stream the local user is typing in the open channel.
func (s *Session) SendTyping() error {
	channelId := s.OpenChannel()
	if len(channelId) == 0 {
		return nil
	}
	return s.bus.Emit(models.CommandTyping, models.CommandChannelBody{ChannelID: channelId})
}

func (s *Session) onMessageReceived(payload any) {
	var body models.EventMessageReceivedBody
	models.FitStruct(payload, &body)
	s.ingest(body.ChannelID, body.Message, false)
}

func (s *Session) onDMMessageReceived(payload any) {
	var body models.EventMessageReceivedBody
	models.FitStruct(payload, &body)
	s.ingest(body.ChannelID, body.Message, true)
}

func (s *Session) ingest(channelId string, message models.Message, direct bool) {
	if len(channelId) == 0 {
		channelId = message.ChannelID
	}
	if len(channelId) == 0 || len(message.ID) == 0 {
		return
	}
	message.ChannelID = channelId

	collapsed, applied := s.Reconciler.Timeline(channelId).ApplyInbound(message)
	if !applied {
		// Re-delivered event, already absorbed.
		return
	}
	if len(collapsed) > 0 {
		s.Outbox.Resolve(collapsed)
	}

	s.Typing.DropUser(channelId, message.UserID)

	own := message.UserID == s.Account.ID
	open := s.OpenChannel()

	if direct && !own {
		s.Unread.Increment(channelId)
	}
	if open == channelId {
		s.Anchors.Set(channelId, message.ID)
	}

	if ShouldNotify(message, open, s.visible(), own) {
		s.dispatcher.Dispatch(message, s.senderName(message), s.channelFor(channelId, direct))
	}
}

func (s *Session) onMessageEdited(payload any) {
	var body models.EventMessageEditedBody
	models.FitStruct(payload, &body)

	message := body.Message
	if len(message.ID) == 0 || len(message.ChannelID) == 0 {
		return
	}

	editedAt := time.Now()
	if message.EditedAt != nil {
		editedAt = *message.EditedAt
	}

	s.Reconciler.Timeline(message.ChannelID).ApplyEdit(message.ID, message.Content, editedAt)
}

func (s *Session) onMessageDeleted(payload any) {
	var body models.EventMessageDeletedBody
	models.FitStruct(payload, &body)
	if len(body.MessageID) == 0 {
		return
	}
	s.Reconciler.DeleteEverywhere(body.MessageID)
}

func (s *Session) onReactionUpdated(payload any) {
	var body models.EventReactionUpdatedBody
	models.FitStruct(payload, &body)
	if len(body.MessageID) == 0 {
		return
	}
	s.Reconciler.ApplyReactionsEverywhere(body.MessageID, body.Reactions)
}

func (s *Session) onTyping(payload any) {
	var body models.EventTypingBody
	models.FitStruct(payload, &body)
	if body.UserID == s.Account.ID {
		return
	}
	s.Typing.Observe(body.ChannelID, body.UserID, body.Username)
}

func (s *Session) onStatusChanged(payload any) {
	var body models.EventStatusChangedBody
	models.FitStruct(payload, &body)
	s.Presence.ApplyStatus(body.UserID, body.Status)
}

func (s *Session) onDMChannelUpdated(payload any) {
	channels, err := s.backend.ListDirectChannels()
	if err != nil {
		log.Warn().Err(err).Msg("An error occurred when refreshing direct channels.")
		return
	}
	s.mu.Lock()
	s.dmChannels = channels
	s.mu.Unlock()
}

func (s *Session) senderName(message models.Message) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, channel := range s.dmChannels {
		if channel.OtherUserID == message.UserID {
			return channel.OtherUsername
		}
	}
	return message.UserID
}

func (s *Session) channelFor(channelId string, direct bool) models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, channel := range s.dmChannels {
		if channel.ID == channelId {
			return channel
		}
	}
	kind := models.ChannelTypeCommon
	if direct {
		kind = models.ChannelTypeDirect
	}
	return models.Channel{ID: channelId, Name: channelId, Type: kind}
}
