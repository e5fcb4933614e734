package sdui

import (
	"encoding/json"
	"fmt"
)

// Heartbeat is the periodic telemetry report from the terminal. Field names
// match what the firmware's telemetry task emits.
type Heartbeat struct {
	WifiRSSI         int     `json:"wifi_rssi"`
	IP               string  `json:"ip"`
	Temperature      float64 `json:"temperature"`
	FreeHeapInternal uint32  `json:"free_heap_internal"`
	FreeHeapTotal    uint32  `json:"free_heap_total"`
	UptimeSeconds    uint64  `json:"uptime_s"`
}

// Click reports a widget interaction bound to a server:// action URI.
type Click struct {
	ID string `json:"id"`
}

// Volume reports a slider change.
type Volume struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// Record states of the audio capture sub-protocol.
const (
	RecordStart  = "start"
	RecordStream = "stream"
	RecordStop   = "stop"
)

// Record is one message of the capture sub-protocol. Data carries base64
// PCM and is only present for the stream state.
type Record struct {
	State string `json:"state"`
	Data  string `json:"data,omitempty"`
}

// Motion reports an inertial event such as a shake.
type Motion struct {
	Type      string  `json:"type"`
	Magnitude float64 `json:"magnitude"`
}

// NewChat asks the gateway to reset the conversation. It carries no fields.
type NewChat struct{}

// DecodePayload decodes the raw payload of an inbound envelope into the
// concrete type for its topic. Unknown topics yield ErrUnknownTopic.
func DecodePayload(topic string, raw json.RawMessage) (any, error) {
	var v any
	switch topic {
	case TopicHeartbeat:
		v = &Heartbeat{}
	case TopicClick, TopicAction:
		v = &Click{}
	case TopicVolume:
		v = &Volume{}
	case TopicRecord:
		v = &Record{}
	case TopicMotion:
		v = &Motion{}
	case TopicNewChat:
		return &NewChat{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("sdui: %s: empty payload", topic)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("sdui: %s payload: %w", topic, err)
	}
	return v, nil
}
