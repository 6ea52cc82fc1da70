package mocks

import (
	"context"
	"sync"
)

// MockPublisher records published payloads for testing
type MockPublisher struct {
	mu sync.Mutex

	// For tracking calls in tests
	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Topic   string
	Payload any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = append(m.PublishCalls, PublishCall{Topic: topic, Payload: payload})
	return m.PublishErr
}

// Calls returns a snapshot of the recorded calls
func (m *MockPublisher) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]PublishCall(nil), m.PublishCalls...)
}

// Topics returns the topics published to, in call order
func (m *MockPublisher) Topics() []string {
	calls := m.Calls()
	topics := make([]string, len(calls))
	for i, c := range calls {
		topics[i] = c.Topic
	}
	return topics
}

// MockMailer records packing emails for testing
type MockMailer struct {
	mu sync.Mutex

	SendCalls []SendCall
	SendErr   error
}

// SendCall records parameters passed to SendPackingNotification
type SendCall struct {
	To        string
	FirstName string
	OrderID   int64
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendPackingNotification(to, firstName string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SendCalls = append(m.SendCalls, SendCall{To: to, FirstName: firstName, OrderID: orderID})
	return m.SendErr
}

func (m *MockMailer) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]SendCall(nil), m.SendCalls...)
}
