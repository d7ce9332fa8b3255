package models

import "time"

type UserStatus = string

const (
	StatusOnline  = UserStatus("online")
	StatusIdle    = UserStatus("idle")
	StatusDnd     = UserStatus("dnd")
	StatusOffline = UserStatus("offline")
)

type PresenceEntry struct {
	UserID    string     `json:"user_id"`
	Status    UserStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}
