package amqp

import (
	"encoding/json"
	"strings"
	"time"
)

// ReloadMessage asks a running server to re-read its record source.
type ReloadMessage struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewReloadMessage creates a reload message stamped with the current time
func NewReloadMessage(reason string) *ReloadMessage {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual"
	}
	return &ReloadMessage{
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReloadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReloadMessageFromJSON creates a message from JSON bytes
func ReloadMessageFromJSON(data []byte) (*ReloadMessage, error) {
	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
