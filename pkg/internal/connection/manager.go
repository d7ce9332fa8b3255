package connection

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// Handler receives the raw payload of one inbound command. Use
// models.FitStruct to coerce it into the action's body type.
type Handler func(payload any)

type HandlerRef struct {
	event string
	id    uint64
}

type handlerEntry struct {
	id uint64
	fn Handler
}

// Manager owns the single stream connection of the session. Inbound packets
// are decoded and dispatched to registered handlers one at a time, from one
// goroutine, so handlers never race each other.
type Manager struct {
	opts Options

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	dialing   bool
	closing   bool

	// The websocket allows one writer at a time; every outbound frame goes
	// through writeMu.
	writeMu sync.Mutex

	nextID   uint64
	handlers map[string][]handlerEntry
	onOpen   []func()
}

func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts,
		handlers: make(map[string][]handlerEntry),
	}
}

// Connect dials the stream gateway and starts the read loop. Safe to call
// again after a Disconnect.
func (m *Manager) Connect() error {
	m.mu.Lock()
	if m.connected || m.dialing {
		m.mu.Unlock()
		return nil
	}
	m.dialing = true
	m.closing = false
	m.mu.Unlock()

	header := http.Header{}
	if len(m.opts.Token) > 0 {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", m.opts.Token))
	}

	conn, _, err := websocket.DefaultDialer.Dial(m.opts.Endpoint, header)
	if err != nil {
		m.mu.Lock()
		m.dialing = false
		m.mu.Unlock()
		return fmt.Errorf("unable to dial stream gateway: %v", err)
	}

	m.mu.Lock()
	m.conn = conn
	m.connected = true
	m.dialing = false
	hooks := append([]func(){}, m.onOpen...)
	m.mu.Unlock()

	log.Info().Str("endpoint", m.opts.Endpoint).Msg("Stream gateway connected.")

	for _, fn := range hooks {
		fn()
	}

	go m.readLoop(conn)

	return nil
}

// Disconnect tears the connection down and suppresses any reconnect attempt.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closing = true
	conn := m.conn
	m.conn = nil
	m.connected = false
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// On registers a handler for one inbound action and returns a ref for Off.
func (m *Manager) On(event string, fn Handler) HandlerRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.handlers[event] = append(m.handlers[event], handlerEntry{id: m.nextID, fn: fn})
	return HandlerRef{event: event, id: m.nextID}
}

func (m *Manager) Off(ref HandlerRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.handlers[ref.event]
	for idx, entry := range entries {
		if entry.id == ref.id {
			m.handlers[ref.event] = append(entries[:idx], entries[idx+1:]...)
			return
		}
	}
}

// OnOpen registers a hook that runs after every successful (re)connect,
// before any inbound packet is dispatched. Used for resubscribe and
// outbox flush.
func (m *Manager) OnOpen(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOpen = append(m.onOpen, fn)
}

// Emit writes one command to the stream. Fails when disconnected; callers
// that need stronger delivery keep their own pending state.
func (m *Manager) Emit(event string, payload any) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.connected
	m.mu.Unlock()

	if !connected || conn == nil {
		return fmt.Errorf("stream gateway is not connected")
	}

	packet := models.UnifiedCommand{
		Action:  event,
		Payload: payload,
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, packet.Marshal())
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, packet, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var task models.UnifiedCommand
		if err := jsoniter.Unmarshal(packet, &task); err != nil {
			log.Warn().Err(err).Msg("An error occurred when decoding inbound packet.")
			continue
		}

		m.dispatch(task)
	}

	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
		m.connected = false
	}
	closing := m.closing
	m.mu.Unlock()

	if !closing {
		log.Warn().Msg("Stream gateway connection lost, reconnecting...")
		go m.reconnect()
	}
}

func (m *Manager) dispatch(task models.UnifiedCommand) {
	m.mu.Lock()
	entries := append([]handlerEntry{}, m.handlers[task.Action]...)
	m.mu.Unlock()

	for _, entry := range entries {
		entry.fn(task.Payload)
	}
}
