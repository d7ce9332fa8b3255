package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flakySaver struct {
	fail  bool
	saved map[string]string
}

func (f *flakySaver) SaveReadingAnchor(channelId string, messageId string) error {
	if f.fail {
		return fmt.Errorf("backend unavailable")
	}
	f.saved[channelId] = messageId
	return nil
}

func TestReadingAnchorBatchesLatestPerChannel(t *testing.T) {
	saver := &flakySaver{saved: make(map[string]string)}
	queue := NewReadingAnchorQueue(saver)

	queue.Set("c1", "m1")
	queue.Set("c1", "m2")
	queue.Set("c2", "m3")

	queue.Flush()

	assert.Equal(t, map[string]string{"c1": "m2", "c2": "m3"}, saver.saved)
}

func TestReadingAnchorRequeuesOnFailure(t *testing.T) {
	saver := &flakySaver{fail: true, saved: make(map[string]string)}
	queue := NewReadingAnchorQueue(saver)

	queue.Set("c1", "m1")
	queue.Flush()
	assert.Empty(t, saver.saved)

	saver.fail = false
	queue.Flush()
	assert.Equal(t, map[string]string{"c1": "m1"}, saver.saved)
}

func TestReadingAnchorFlushEmptyIsNoOp(t *testing.T) {
	saver := &flakySaver{saved: make(map[string]string)}
	queue := NewReadingAnchorQueue(saver)

	queue.Flush()
	assert.Empty(t, saver.saved)
}
