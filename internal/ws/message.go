// internal/ws/message.go
package ws

import "time"

// Event is one push to a connected admin panel: a settings save, a coupon
// preview result or a payment lifecycle change.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
