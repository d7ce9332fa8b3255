package models

type ChannelType = uint8

const (
	ChannelTypeCommon = ChannelType(iota)
	ChannelTypeDirect
)

type Channel struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        ChannelType `json:"type"`

	// For direct channels, the account on the other side.
	OtherUserID   string `json:"other_user_id,omitempty"`
	OtherUsername string `json:"other_username,omitempty"`
}

func (v Channel) IsDirect() bool {
	return v.Type == ChannelTypeDirect
}

func (v Channel) DisplayText() string {
	if v.Type == ChannelTypeDirect {
		if len(v.OtherUsername) > 0 {
			return v.OtherUsername
		}
		return "DM"
	}
	return v.Name
}
