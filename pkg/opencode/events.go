// Package opencode talks to a running opencode server: it consumes the server's
// event stream and drives the TUI through its HTTP endpoints.
package opencode

import (
	"encoding/json"
	"fmt"
)

// EventType is the "type" field of an opencode bus event.
type EventType string

const (
	// EventServerConnected is the first event sent on every stream connection.
	EventServerConnected EventType = "server.connected"
	// EventSessionIdle fires when the assistant finished responding and the
	// session is waiting for user input.
	EventSessionIdle EventType = "session.idle"
)

// Event is an event received from the opencode server.
type Event interface {
	Type() EventType
}

// ServerConnected is sent once per stream connection.
type ServerConnected struct{}

// Type implements Event.
func (ServerConnected) Type() EventType { return EventServerConnected }

// SessionIdle reports that a session is waiting for input.
type SessionIdle struct {
	SessionID string `json:"sessionID"`
}

// Type implements Event.
func (SessionIdle) Type() EventType { return EventSessionIdle }

// Unknown carries any event this package does not model.
type Unknown struct {
	Kind       EventType
	Properties json.RawMessage
}

// Type implements Event.
func (u Unknown) Type() EventType { return u.Kind }

type envelope struct {
	Type       EventType       `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

// DecodeEvent parses a single JSON event payload.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}

	switch env.Type {
	case EventServerConnected:
		return ServerConnected{}, nil
	case EventSessionIdle:
		var ev SessionIdle
		if len(env.Properties) > 0 {
			if err := json.Unmarshal(env.Properties, &ev); err != nil {
				return nil, fmt.Errorf("failed to decode %s properties: %w", env.Type, err)
			}
		}
		return ev, nil
	default:
		return Unknown{Kind: env.Type, Properties: env.Properties}, nil
	}
}
