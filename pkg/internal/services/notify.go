package services

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// ShouldNotify decides whether one inbound message warrants a user-facing
// notification. Pure; testable without a transport or a window handle.
//
// Own messages never notify. Everything else notifies when it lands outside
// the open channel, or when the document is backgrounded even if it is the
// open channel.
func ShouldNotify(message models.Message, openChannelId string, documentVisible bool, isOwnMessage bool) bool {
	if isOwnMessage {
		return false
	}
	if message.ChannelID != openChannelId {
		return true
	}
	return !documentVisible
}

// Notifier is whatever the host platform uses to surface a notification.
type Notifier interface {
	Notify(title string, body string)
}

// NotificationDispatcher renders the decision into a concrete notification.
// It only reads its inputs; unread and timeline state belong to their own
// components.
type NotificationDispatcher struct {
	notifier Notifier
}

func NewNotificationDispatcher(notifier Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{notifier: notifier}
}

func (d *NotificationDispatcher) Dispatch(message models.Message, senderName string, channel models.Channel) {
	if d.notifier == nil {
		return
	}

	displayText := message.Content
	if len(displayText) == 0 {
		displayText = fmt.Sprintf("%d attachment(s)", len(message.Attachments))
	}

	d.notifier.Notify(
		fmt.Sprintf("%s in %s", senderName, channel.DisplayText()),
		displayText,
	)
}

// LoggerNotifier surfaces notifications on the console; the default sink
// for headless runs.
type LoggerNotifier struct{}

func (LoggerNotifier) Notify(title string, body string) {
	log.Info().Str("title", title).Str("body", body).Msg("Notification fired.")
}
