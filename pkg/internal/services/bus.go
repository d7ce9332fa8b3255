package services

import "github.com/ripplechat/synccore/pkg/internal/connection"

// EventBus is the slice of the connection manager the sync components
// depend on. Kept as an interface so every component can be exercised
// against a recorded bus in tests.
type EventBus interface {
	On(event string, fn connection.Handler) connection.HandlerRef
	Off(ref connection.HandlerRef)
	OnOpen(fn func())
	Emit(event string, payload any) error
	IsConnected() bool
}
