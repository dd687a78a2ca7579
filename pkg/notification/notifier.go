// Package notification delivers outbound messages to users. Sending
// email leaves the system and cannot be undone, so sends are always
// wrapped by pkg/effectguard.
package notification

// NotificationData carries the content of an outbound message.
type NotificationData struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// SendResult reports a completed delivery.
type SendResult struct {
	MessageID string `json:"message_id"`
	Delivered bool   `json:"delivered"`
}

// Notifier sends a notification to a recipient.
type Notifier interface {
	Send(data NotificationData) (SendResult, error)
}

// MockSendResult builds the deterministic mock value handed to the
// effect guard for sends performed under impersonation.
func MockSendResult() SendResult {
	return SendResult{
		MessageID: "mock",
		Delivered: true,
	}
}
