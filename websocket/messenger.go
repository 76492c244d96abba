// Package websocket: websocket/messenger.go
package websocket

// Broadcaster is what controllers use to push dashboard updates.
type Broadcaster interface {
	Broadcast(action string, payload interface{})
}

// NoopBroadcaster discards every message.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(string, interface{}) {}
