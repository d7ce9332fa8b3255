package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

func newTestOutbox(bus *fakeBus) (*Outbox, *Reconciler) {
	rec := NewReconciler()
	outbox := NewOutbox(bus, rec, models.Account{ID: "me", Username: "me"}, DefaultSendTimeout)
	return outbox, rec
}

func TestSendMessageAppendsOptimistically(t *testing.T) {
	bus := newFakeBus(true)
	outbox, rec := newTestOutbox(bus)

	message, err := outbox.SendMessage("c1", "hi", nil, nil)
	require.NoError(t, err)

	assert.True(t, message.IsPending())
	assert.Nil(t, message.Timestamp, "no timestamp until the server confirms")
	assert.Equal(t, 1, rec.Timeline("c1").Len())

	emits := bus.Emits()
	require.Len(t, emits, 1)
	assert.Equal(t, models.CommandSendMessage, emits[0].Event)
	body := emits[0].Payload.(models.CommandSendMessageBody)
	assert.Equal(t, message.ID, body.Uuid)
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	bus := newFakeBus(true)
	outbox, _ := newTestOutbox(bus)

	_, err := outbox.SendMessage("c1", "", nil, nil)
	assert.Error(t, err)
}

func TestSendWhileDisconnectedStaysPending(t *testing.T) {
	bus := newFakeBus(false)
	outbox, _ := newTestOutbox(bus)

	_, err := outbox.SendMessage("c1", "hi", nil, nil)
	require.NoError(t, err)

	assert.Empty(t, bus.Emits())
	assert.Equal(t, 1, outbox.PendingCount())
	assert.Empty(t, outbox.FailedSends(), "disconnected sends are pending, not failed")

	bus.SetConnected(true)
	outbox.Flush()

	emits := bus.Emits()
	require.Len(t, emits, 1)
	assert.Equal(t, models.CommandSendMessage, emits[0].Event)
}

func TestResolveSettlesPendingSend(t *testing.T) {
	bus := newFakeBus(true)
	outbox, rec := newTestOutbox(bus)

	message, err := outbox.SendMessage("c1", "hi", nil, nil)
	require.NoError(t, err)

	echo := authoritative("m1", "me", "hi")
	collapsed, applied := rec.Timeline("c1").ApplyInbound(echo)
	require.True(t, applied)
	require.Equal(t, message.ID, collapsed)

	outbox.Resolve(collapsed)
	assert.Equal(t, 0, outbox.PendingCount())
}

func TestSweepMarksTimedOutSendsFailed(t *testing.T) {
	bus := newFakeBus(true)
	outbox, _ := newTestOutbox(bus)

	current := time.Now()
	outbox.now = func() time.Time { return current }

	message, err := outbox.SendMessage("c1", "hi", nil, nil)
	require.NoError(t, err)

	outbox.Sweep()
	assert.Empty(t, outbox.FailedSends())

	current = current.Add(DefaultSendTimeout + time.Second)
	outbox.Sweep()

	failed := outbox.FailedSends()
	require.Len(t, failed, 1)
	assert.Equal(t, message.ID, failed[0].ID)
}

func TestRetryReArmsFailedSend(t *testing.T) {
	bus := newFakeBus(true)
	outbox, _ := newTestOutbox(bus)

	current := time.Now()
	outbox.now = func() time.Time { return current }

	message, err := outbox.SendMessage("c1", "hi", nil, nil)
	require.NoError(t, err)

	current = current.Add(DefaultSendTimeout + time.Second)
	outbox.Sweep()
	require.Len(t, outbox.FailedSends(), 1)
	bus.ResetEmits()

	require.NoError(t, outbox.Retry(message.ID))
	assert.Empty(t, outbox.FailedSends())
	assert.Len(t, bus.Emits(), 1)

	assert.Error(t, outbox.Retry("temp-unknown"))
}

func TestFlushSkipsFailedSends(t *testing.T) {
	bus := newFakeBus(true)
	outbox, _ := newTestOutbox(bus)

	current := time.Now()
	outbox.now = func() time.Time { return current }

	_, err := outbox.SendMessage("c1", "hi", nil, nil)
	require.NoError(t, err)

	current = current.Add(DefaultSendTimeout + time.Second)
	outbox.Sweep()
	bus.ResetEmits()

	outbox.Flush()
	assert.Empty(t, bus.Emits(), "failed sends only go out again via Retry")
}
