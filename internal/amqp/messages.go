package amqp

import (
	"encoding/json"
	"time"

	"finpal/internal/rules"
)

// RuleChangeMessage is published after every persisted rule mutation.
type RuleChangeMessage struct {
	Kind      string    `json:"kind"`
	Category  string    `json:"category"`
	Keyword   string    `json:"keyword,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRuleChangeMessage builds a message from a store change. A zero change
// time is replaced with now.
func NewRuleChangeMessage(c rules.Change) *RuleChangeMessage {
	at := c.At
	if at.IsZero() {
		at = time.Now()
	}
	return &RuleChangeMessage{
		Kind:      string(c.Kind),
		Category:  c.Category,
		Keyword:   c.Keyword,
		Timestamp: at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RuleChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RuleChangeMessageFromJSON creates a message from JSON bytes
func RuleChangeMessageFromJSON(data []byte) (*RuleChangeMessage, error) {
	var msg RuleChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
