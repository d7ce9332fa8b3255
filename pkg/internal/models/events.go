package models

// Actions pushed by the server over the unified stream.
const (
	EventMessageReceived   = "message_received"
	EventMessageEdited     = "message_edited"
	EventMessageDeleted    = "message_deleted"
	EventReactionUpdated   = "reaction_updated"
	EventTyping            = "typing"
	EventDMMessageReceived = "dm_message_received"
	EventDMChannelUpdated  = "dm_channel_updated"
	EventStatusChanged     = "status_changed"
)

// Actions emitted by the client.
const (
	CommandJoinChannel    = "join_channel"
	CommandLeaveChannel   = "leave_channel"
	CommandSendMessage    = "send_message"
	CommandTyping         = "typing"
	CommandJoinDMChannel  = "join_dm_channel"
	CommandLeaveDMChannel = "leave_dm_channel"
)

// Event Payloads

type EventMessageReceivedBody struct {
	ChannelID string  `json:"channel_id"`
	Message   Message `json:"message"`
}

type EventMessageEditedBody struct {
	Message Message `json:"message"`
}

type EventMessageDeletedBody struct {
	MessageID string `json:"message_id"`
}

type EventReactionUpdatedBody struct {
	MessageID string     `json:"message_id"`
	Reactions []Reaction `json:"reactions"`
}

type EventTypingBody struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

type EventStatusChangedBody struct {
	UserID string     `json:"user_id"`
	Status UserStatus `json:"status"`
}

// Command Payloads

type CommandChannelBody struct {
	ChannelID string `json:"channel_id"`
}

type CommandSendMessageBody struct {
	Uuid        string       `json:"uuid"`
	ChannelID   string       `json:"channel_id"`
	Content     string       `json:"content"`
	ReplyToID   *string      `json:"reply_to_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
