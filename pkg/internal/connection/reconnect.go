package connection

import (
	"time"

	"github.com/rs/zerolog/log"
)

// reconnect retries the dial with exponential backoff until it succeeds or
// Disconnect is called. In-flight optimistic sends stay pending the whole
// time; the outbox resolves them after the OnOpen flush.
func (m *Manager) reconnect() {
	delay := m.opts.ReconnectBase

	for {
		m.mu.Lock()
		closing := m.closing
		m.mu.Unlock()
		if closing {
			return
		}

		time.Sleep(delay)

		if err := m.Connect(); err == nil {
			return
		} else {
			log.Warn().Err(err).Dur("retry_in", delay).Msg("An error occurred when reconnecting to stream gateway.")
		}

		delay *= 2
		if delay > m.opts.ReconnectCeil {
			delay = m.opts.ReconnectCeil
		}
	}
}
