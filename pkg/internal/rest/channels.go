package rest

import (
	"fmt"

	"github.com/ripplechat/synccore/pkg/internal/models"
)

// ListMessages fetches one page of a channel's history, newest last.
func (c *Client) ListMessages(channelId string, take int, offset int) ([]models.Message, error) {
	if take > 100 {
		take = 100
	}

	var out []models.Message
	path := fmt.Sprintf("/api/channels/%s/messages?take=%d&offset=%d", channelId, take, offset)
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDirectChannels() ([]models.Channel, error) {
	var out []models.Channel
	if err := c.get("/api/users/me/channels/dm", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUnreadCounts fetches the server's view of per-channel unread counts,
// used to seed the aggregator at session start.
func (c *Client) GetUnreadCounts() (map[string]int, error) {
	var out map[string]int
	if err := c.get("/api/users/me/unreads", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveReadingAnchor records the newest message the user has read in a
// channel.
func (c *Client) SaveReadingAnchor(channelId string, messageId string) error {
	path := fmt.Sprintf("/api/channels/%s/read", channelId)
	return c.post(path, map[string]any{"message_id": messageId}, nil)
}
