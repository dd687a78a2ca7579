package notification

import "sync"

// MockNotifier records sends instead of delivering them. Intended for
// tests and local development.
type MockNotifier struct {
	mu   sync.Mutex
	sent []NotificationData
}

// NewMockNotifier creates a mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send records the notification.
func (n *MockNotifier) Send(data NotificationData) (SendResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, data)
	return MockSendResult(), nil
}

// Sent returns a copy of all recorded notifications.
func (n *MockNotifier) Sent() []NotificationData {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationData, len(n.sent))
	copy(out, n.sent)
	return out
}
