package services

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// AnchorSaver is the REST slice the queue flushes through.
type AnchorSaver interface {
	SaveReadingAnchor(channelId string, messageId string) error
}

// ReadingAnchorQueue batches "read up to here" marks and flushes them on
// the shared cron instead of hitting the backend per message.
type ReadingAnchorQueue struct {
	mu    sync.Mutex
	saver AnchorSaver
	queue map[string]string
}

func NewReadingAnchorQueue(saver AnchorSaver) *ReadingAnchorQueue {
	return &ReadingAnchorQueue{
		saver: saver,
		queue: make(map[string]string),
	}
}

func (q *ReadingAnchorQueue) Set(channelId string, messageId string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue[channelId] = messageId
}

func (q *ReadingAnchorQueue) Flush() {
	q.mu.Lock()
	if len(q.queue) == 0 {
		q.mu.Unlock()
		return
	}
	batch := q.queue
	q.queue = make(map[string]string)
	q.mu.Unlock()

	for channelId, messageId := range batch {
		if err := q.saver.SaveReadingAnchor(channelId, messageId); err != nil {
			log.Error().Err(err).Str("channel", channelId).Msg("An error occurred when flushing reading anchor...")
			q.mu.Lock()
			if _, ok := q.queue[channelId]; !ok {
				q.queue[channelId] = messageId
			}
			q.mu.Unlock()
		}
	}
}
