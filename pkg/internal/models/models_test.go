package models

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageIsPending(t *testing.T) {
	assert.True(t, Message{ID: TempIDPrefix + "abc"}.IsPending())
	assert.False(t, Message{ID: "m1"}.IsPending())
}

func TestReactionCountIsDerived(t *testing.T) {
	reaction := Reaction{Emoji: "👍", Users: []string{"u1", "u2"}}
	assert.Equal(t, 2, reaction.Count())
	assert.True(t, reaction.HasUser("u1"))
	assert.False(t, reaction.HasUser("u3"))
}

func TestChannelDisplayText(t *testing.T) {
	assert.Equal(t, "general", Channel{Name: "general"}.DisplayText())
	assert.Equal(t, "bob", Channel{Type: ChannelTypeDirect, OtherUsername: "bob"}.DisplayText())
	assert.Equal(t, "DM", Channel{Type: ChannelTypeDirect}.DisplayText())
}

func TestFitStructCoercesPayloadMaps(t *testing.T) {
	payload := map[string]any{
		"channel_id": "c1",
		"user_id":    "u1",
		"username":   "alice",
	}

	var body EventTypingBody
	FitStruct(payload, &body)

	assert.Equal(t, "c1", body.ChannelID)
	assert.Equal(t, "alice", body.Username)
}

func TestUnifiedCommandEnvelope(t *testing.T) {
	packet := UnifiedCommand{
		Action:  EventMessageReceived,
		Payload: map[string]any{"channel_id": "c1"},
	}.Marshal()

	var decoded UnifiedCommand
	require.NoError(t, jsoniter.Unmarshal(packet, &decoded))
	assert.Equal(t, EventMessageReceived, decoded.Action)
}
