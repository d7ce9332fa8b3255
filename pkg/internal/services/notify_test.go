package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

func TestShouldNotifyNeverForOwnMessage(t *testing.T) {
	message := models.Message{ID: "m1", ChannelID: "c1", UserID: "me"}

	assert.False(t, ShouldNotify(message, "c1", true, true))
	assert.False(t, ShouldNotify(message, "c2", true, true))
	assert.False(t, ShouldNotify(message, "c1", false, true))
	assert.False(t, ShouldNotify(message, "", false, true))
}

func TestShouldNotifyForOtherChannel(t *testing.T) {
	message := models.Message{ID: "m1", ChannelID: "c1", UserID: "u2"}

	assert.True(t, ShouldNotify(message, "c2", true, false))
	assert.True(t, ShouldNotify(message, "", true, false))
}

func TestShouldNotifyForBackgroundedTab(t *testing.T) {
	message := models.Message{ID: "m1", ChannelID: "c1", UserID: "u2"}

	// Open channel but the document is hidden.
	assert.True(t, ShouldNotify(message, "c1", false, false))
}

func TestShouldNotifySuppressedForOpenVisibleChannel(t *testing.T) {
	message := models.Message{ID: "m1", ChannelID: "c1", UserID: "u2"}

	assert.False(t, ShouldNotify(message, "c1", true, false))
}

func TestDispatchFallsBackToAttachmentSummary(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := NewNotificationDispatcher(notifier)

	dispatcher.Dispatch(models.Message{
		ID:          "m1",
		ChannelID:   "c1",
		UserID:      "u2",
		Attachments: []models.Attachment{{URL: "a"}, {URL: "b"}},
	}, "bob", models.Channel{ID: "c1", Name: "general"})

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{"bob in general: 2 attachment(s)"}, notifier.entries)
}
