// Package sdui implements the server-driven UI wire protocol spoken by the
// round-display terminal: the topic+payload envelope, the typed payloads of
// every inbound topic, and the layout tree the server renders for the
// terminal to draw.
package sdui

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Wire topics. Uplink topics are sent by the terminal, downlink topics by
// the gateway.
const (
	TopicHeartbeat = "telemetry/heartbeat"
	TopicClick     = "ui/click"
	TopicAction    = "ui/action"
	TopicVolume    = "ui/volume"
	TopicNewChat   = "ui/new_chat"
	TopicRecord    = "audio/record"
	TopicMotion    = "motion"

	TopicLayout = "ui/layout"
	TopicUpdate = "ui/update"
	TopicPlay   = "audio/play"
)

// ErrUnknownTopic is returned by DecodePayload for topics this gateway does
// not understand. The frame should be dropped, not the connection.
var ErrUnknownTopic = errors.New("sdui: unknown topic")

// Envelope is the wire wrapper around every protocol message. One transport
// frame carries exactly one envelope.
type Envelope struct {
	Topic    string          `json:"topic"`
	DeviceID string          `json:"device_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Decode parses one wire frame into an Envelope. A decode failure is
// non-fatal to the connection.
func Decode(frame []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(frame, &e); err != nil {
		return nil, fmt.Errorf("sdui: decode envelope: %w", err)
	}
	if e.Topic == "" {
		return nil, errors.New("sdui: envelope missing topic")
	}
	return &e, nil
}

// Encode builds one wire frame for the given topic and payload.
func Encode(topic string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sdui: encode %s payload: %w", topic, err)
	}
	return json.Marshal(&Envelope{Topic: topic, Payload: raw})
}
