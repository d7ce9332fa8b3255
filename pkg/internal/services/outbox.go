package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// DefaultSendTimeout bounds how long a send may sit unconfirmed before the
// outbox marks it failed instead of showing "sending..." forever.
const DefaultSendTimeout = 10 * time.Second

type SendState = uint8

const (
	SendStatePending = SendState(iota)
	SendStateFailed
)

type PendingSend struct {
	Message    models.Message
	State      SendState
	EnqueuedAt time.Time
	Attempts   int

	body models.CommandSendMessageBody
}

// Outbox owns every optimistic send that has not been confirmed by a server
// echo yet. While the stream is down pending sends stay pending, never
// failed; reconnect flushes them, and only the bounded timeout moves one to
// the failed state.
type Outbox struct {
	mu      sync.Mutex
	bus     EventBus
	rec     *Reconciler
	account models.Account
	timeout time.Duration
	now     func() time.Time

	pending map[string]*PendingSend
}

func NewOutbox(bus EventBus, rec *Reconciler, account models.Account, timeout time.Duration) *Outbox {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Outbox{
		bus:     bus,
		rec:     rec,
		account: account,
		timeout: timeout,
		now:     time.Now,
		pending: make(map[string]*PendingSend),
	}
}

// SendMessage appends an optimistic entry to the channel timeline and emits
// the send command when connected. The returned message carries the temp id
// and no timestamp, which the view renders as "still sending".
func (o *Outbox) SendMessage(channelId string, content string, replyTo *string, attachments []models.Attachment) (models.Message, error) {
	if len(content) == 0 && len(attachments) == 0 {
		return models.Message{}, fmt.Errorf("empty message was not allowed")
	}

	message := models.Message{
		ID:          models.TempIDPrefix + uuid.NewString(),
		ChannelID:   channelId,
		UserID:      o.account.ID,
		Content:     content,
		ReplyToID:   replyTo,
		Attachments: attachments,
	}

	o.rec.Timeline(channelId).AppendOptimistic(message)

	entry := &PendingSend{
		Message:    message,
		EnqueuedAt: o.now(),
		body: models.CommandSendMessageBody{
			Uuid:        message.ID,
			ChannelID:   channelId,
			Content:     content,
			ReplyToID:   replyTo,
			Attachments: attachments,
		},
	}

	o.mu.Lock()
	o.pending[message.ID] = entry
	o.mu.Unlock()

	o.tryEmit(entry)

	return message, nil
}

func (o *Outbox) tryEmit(entry *PendingSend) {
	if !o.bus.IsConnected() {
		return
	}
	o.mu.Lock()
	entry.Attempts++
	o.mu.Unlock()
	if err := o.bus.Emit(models.CommandSendMessage, entry.body); err != nil {
		log.Warn().Err(err).Str("uuid", entry.Message.ID).Msg("An error occurred when emitting pending send.")
	}
}

// Resolve settles a pending record once its optimistic entry collapsed into
// the authoritative echo.
func (o *Outbox) Resolve(tempId string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, tempId)
}

// Flush re-emits everything still pending; wired to the connection open
// hook. Duplicate delivery on the far side is absorbed by the reconciler's
// id check, so replaying is safe.
func (o *Outbox) Flush() {
	o.mu.Lock()
	var entries []*PendingSend
	for _, entry := range o.pending {
		if entry.State == SendStatePending {
			entries = append(entries, entry)
		}
	}
	o.mu.Unlock()

	for _, entry := range entries {
		o.tryEmit(entry)
	}
}

// Sweep marks sends older than the timeout as failed; wired to the shared
// cron. The timeline entry stays so the view can offer a retry.
func (o *Outbox) Sweep() {
	o.mu.Lock()
	defer o.mu.Unlock()

	deadline := o.now().Add(-o.timeout)
	for _, entry := range o.pending {
		if entry.State == SendStatePending && entry.EnqueuedAt.Before(deadline) {
			entry.State = SendStateFailed
			log.Warn().Str("uuid", entry.Message.ID).Msg("Pending send timed out without a confirmation.")
		}
	}
}

// Retry re-arms one failed send.
func (o *Outbox) Retry(tempId string) error {
	o.mu.Lock()
	entry, ok := o.pending[tempId]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("no pending send with id %s", tempId)
	}
	entry.State = SendStatePending
	entry.EnqueuedAt = o.now()
	o.mu.Unlock()

	o.tryEmit(entry)
	return nil
}

func (o *Outbox) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Outbox) FailedSends() []models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.Message
	for _, entry := range o.pending {
		if entry.State == SendStateFailed {
			out = append(out, entry.Message)
		}
	}
	return out
}
