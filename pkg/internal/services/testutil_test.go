package services

import (
	"sync"

	"github.com/ripplechat/synccore/pkg/internal/connection"
	"github.com/ripplechat/synccore/pkg/internal/models"
)

type emitRecord struct {
	Event   string
	Payload any
}

// fakeBus records emits and lets tests fire inbound events by hand.
type fakeBus struct {
	mu        sync.Mutex
	connected bool
	emitErr   error
	emits     []emitRecord
	handlers  map[string][]connection.Handler
	onOpen    []func()
}

func newFakeBus(connected bool) *fakeBus {
	return &fakeBus{
		connected: connected,
		handlers:  make(map[string][]connection.Handler),
	}
}

func (b *fakeBus) On(event string, fn connection.Handler) connection.HandlerRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], fn)
	return connection.HandlerRef{}
}

func (b *fakeBus) Off(ref connection.HandlerRef) {}

func (b *fakeBus) OnOpen(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onOpen = append(b.onOpen, fn)
}

func (b *fakeBus) Emit(event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.emitErr != nil {
		return b.emitErr
	}
	b.emits = append(b.emits, emitRecord{Event: event, Payload: payload})
	return nil
}

func (b *fakeBus) SetEmitErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitErr = err
}

func (b *fakeBus) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *fakeBus) SetConnected(connected bool) {
	b.mu.Lock()
	b.connected = connected
	hooks := append([]func(){}, b.onOpen...)
	b.mu.Unlock()
	if connected {
		for _, fn := range hooks {
			fn()
		}
	}
}

func (b *fakeBus) Fire(event string, payload any) {
	b.mu.Lock()
	entries := append([]connection.Handler{}, b.handlers[event]...)
	b.mu.Unlock()
	for _, fn := range entries {
		fn(payload)
	}
}

func (b *fakeBus) Emits() []emitRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]emitRecord{}, b.emits...)
}

func (b *fakeBus) ResetEmits() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emits = nil
}

// fakeBackend serves canned history and records anchor saves.
type fakeBackend struct {
	mu       sync.Mutex
	history  map[string][]models.Message
	channels []models.Channel
	unreads  map[string]int
	anchors  map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		history: make(map[string][]models.Message),
		unreads: make(map[string]int),
		anchors: make(map[string]string),
	}
}

func (f *fakeBackend) ListMessages(channelId string, take int, offset int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message{}, f.history[channelId]...), nil
}

func (f *fakeBackend) ListDirectChannels() ([]models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Channel{}, f.channels...), nil
}

func (f *fakeBackend) GetUnreadCounts() (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.unreads))
	for channelId, count := range f.unreads {
		out[channelId] = count
	}
	return out, nil
}

func (f *fakeBackend) SaveReadingAnchor(channelId string, messageId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anchors[channelId] = messageId
	return nil
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	entries []string
}

func (n *recordingNotifier) Notify(title string, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, title+": "+body)
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}
