package services

import "github.com/stretchr/testify/mock"

// Ensure MockNotifier implements Notifier
var _ Notifier = (*MockNotifier)(nil)

// MockNotifier is a testify mock of Notifier.
type MockNotifier struct {
	mock.Mock
}

// NotifyUser (Mocked)
func (m *MockNotifier) NotifyUser(username, event string, payload interface{}) {
	m.Called(username, event, payload)
}

// NotifyOrganizations (Mocked)
func (m *MockNotifier) NotifyOrganizations(event string, payload interface{}) {
	m.Called(event, payload)
}
