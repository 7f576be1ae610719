// file: services/notifier.go
package services

// Notifier delivers realtime notifications. Delivery is best effort; callers
// never wait for or check it.
type Notifier interface {
	NotifyUser(username, event string, payload interface{})
	NotifyOrganizations(event string, payload interface{})
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) NotifyUser(string, string, interface{})  {}
func (NoopNotifier) NotifyOrganizations(string, interface{}) {}
