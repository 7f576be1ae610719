// file: websocket/messenger.go
package websocket

import "go-hackhub/logger"

// Messenger is the notification sink used by the service layer.
type Messenger struct {
	hub *Hub
}

// NewMessenger wraps hub.
func NewMessenger(hub *Hub) *Messenger {
	return &Messenger{hub: hub}
}

// NotifyUser delivers event to the private room of username.
func (m *Messenger) NotifyUser(username, event string, payload interface{}) {
	if username == "" {
		logger.Warn.Printf("Messenger: %s without recipient dropped", event)
		return
	}
	m.hub.Publish(username, event, payload)
}

// NotifyOrganizations delivers event to the shared organization room.
func (m *Messenger) NotifyOrganizations(event string, payload interface{}) {
	m.hub.Publish(OrganizationRoom, event, payload)
}
