package sdui

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr bool
		topic   string
		device  string
	}{
		{
			name:   "heartbeat with device",
			frame:  `{"topic":"telemetry/heartbeat","device_id":"AA:BB:CC:DD:EE:FF","payload":{"wifi_rssi":-51}}`,
			topic:  TopicHeartbeat,
			device: "AA:BB:CC:DD:EE:FF",
		},
		{
			name:  "click without device",
			frame: `{"topic":"ui/click","payload":{"id":"btn_rec"}}`,
			topic: TopicClick,
		},
		{name: "invalid json", frame: `{"topic":`, wantErr: true},
		{name: "missing topic", frame: `{"payload":{}}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Decode([]byte(tc.frame))
			if tc.wantErr {
				if err == nil {
					t.Fatal("Decode succeeded; want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if env.Topic != tc.topic {
				t.Errorf("Topic = %q; want %q", env.Topic, tc.topic)
			}
			if env.DeviceID != tc.device {
				t.Errorf("DeviceID = %q; want %q", env.DeviceID, tc.device)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	frame, err := Encode(TopicUpdate, TextUpdate("status", "ready"))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if env.Topic != TopicUpdate {
		t.Errorf("Topic = %q; want %q", env.Topic, TopicUpdate)
	}
	var u Update
	if err := json.Unmarshal(env.Payload, &u); err != nil {
		t.Fatalf("Unmarshal update: %v", err)
	}
	if u.ID != "status" || u.Props["text"] != "ready" {
		t.Errorf("update = %+v; want id=status text=ready", u)
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		topic string
		raw   string
		check func(t *testing.T, v any)
	}{
		{
			topic: TopicHeartbeat,
			raw:   `{"wifi_rssi":-60,"ip":"10.0.0.7","temperature":41.5,"free_heap_internal":120000,"free_heap_total":250000,"uptime_s":3600}`,
			check: func(t *testing.T, v any) {
				hb := v.(*Heartbeat)
				if hb.WifiRSSI != -60 || hb.IP != "10.0.0.7" || hb.UptimeSeconds != 3600 {
					t.Errorf("heartbeat = %+v", hb)
				}
			},
		},
		{
			topic: TopicRecord,
			raw:   `{"state":"stream","data":"AAEC"}`,
			check: func(t *testing.T, v any) {
				rec := v.(*Record)
				if rec.State != RecordStream || rec.Data != "AAEC" {
					t.Errorf("record = %+v", rec)
				}
			},
		},
		{
			topic: TopicVolume,
			raw:   `{"id":"vol","value":0.8}`,
			check: func(t *testing.T, v any) {
				vol := v.(*Volume)
				if vol.ID != "vol" || vol.Value != 0.8 {
					t.Errorf("volume = %+v", vol)
				}
			},
		},
		{
			topic: TopicMotion,
			raw:   `{"type":"shake","magnitude":12.3}`,
			check: func(t *testing.T, v any) {
				m := v.(*Motion)
				if m.Type != "shake" {
					t.Errorf("motion = %+v", m)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.topic, func(t *testing.T) {
			v, err := DecodePayload(tc.topic, json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("DecodePayload error: %v", err)
			}
			tc.check(t, v)
		})
	}
}

func TestDecodePayload_UnknownTopic(t *testing.T) {
	_, err := DecodePayload("ota/upgrade", json.RawMessage(`{}`))
	if err == nil || !strings.Contains(err.Error(), "unknown topic") {
		t.Errorf("err = %v; want unknown topic", err)
	}
}

func TestNode_FindByID(t *testing.T) {
	tree := &Node{
		Type: TypeContainer,
		Children: []*Node{
			{Type: TypeLabel, ID: "status"},
			{Type: TypeContainer, ID: "chat_list", Children: []*Node{
				{Type: TypeLabel, ID: "msg_0"},
			}},
		},
	}
	if n := tree.FindByID("msg_0"); n == nil || n.Type != TypeLabel {
		t.Errorf("FindByID(msg_0) = %+v", n)
	}
	if n := tree.FindByID("absent"); n != nil {
		t.Errorf("FindByID(absent) = %+v; want nil", n)
	}
}

func TestUpdate_MarshalFlat(t *testing.T) {
	u := NewUpdate("count_label", map[string]any{"text": "Count: 5", "hidden": false})
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	obj := map[string]any{}
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if obj["id"] != "count_label" || obj["text"] != "Count: 5" {
		t.Errorf("flat marshal = %s", data)
	}
	if _, nested := obj["props"]; nested {
		t.Error("props were not flattened")
	}
}

func TestNode_OmitsZeroAttributes(t *testing.T) {
	data, err := json.Marshal(&Node{Type: TypeLabel, ID: "status", Text: "ready"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	for _, forbidden := range []string{"children", "font_size", "hidden", "on_click", "w", "gap"} {
		if strings.Contains(string(data), `"`+forbidden+`"`) {
			t.Errorf("marshal of sparse node leaked %q: %s", forbidden, data)
		}
	}
}
