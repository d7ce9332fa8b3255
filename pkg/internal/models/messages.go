package models

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// TempIDPrefix marks a locally minted message id that the server has not
// confirmed yet. Once the authoritative echo arrives the optimistic entry
// collapses into it.
const TempIDPrefix = "temp-"

type Attachment struct {
	URL         string `json:"url"`
	MimeType    string `json:"mimetype"`
	Size        int64  `json:"size"`
	DisplayName string `json:"display_name"`
}

// Reaction groups every user who reacted with one emoji. The count is always
// derived from the user set, never stored on its own.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

func (v Reaction) Count() int {
	return len(v.Users)
}

func (v Reaction) HasUser(userId string) bool {
	return lo.Contains(v.Users, userId)
}

type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	UserID      string       `json:"user_id"`
	Content     string       `json:"content"`
	Timestamp   *time.Time   `json:"timestamp,omitempty"`
	EditedAt    *time.Time   `json:"edited_at,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Reactions   []Reaction   `json:"reactions,omitempty"`
	ReplyToID   *string      `json:"reply_to_id,omitempty"`
}

// IsPending reports whether the message is still waiting for its server echo.
// A missing timestamp means the same thing for rendering purposes.
func (v Message) IsPending() bool {
	return strings.HasPrefix(v.ID, TempIDPrefix)
}
