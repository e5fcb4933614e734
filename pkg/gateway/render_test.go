package gateway

import (
	"reflect"
	"testing"

	"github.com/haivivi/sduigate/pkg/sdui"
	"github.com/haivivi/sduigate/pkg/speech"
)

func TestRenderIsPure(t *testing.T) {
	v := View{
		Status:      StatusReady,
		Rounds:      2,
		TotalTokens: 345,
		Messages: []speech.Message{
			{Role: speech.RoleUser, Content: "what time is it"},
			{Role: speech.RoleAssistant, Content: "time to get a watch"},
		},
	}
	a := Render(v)
	b := Render(v)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical views rendered different trees")
	}
}

func TestRenderEmptyChat(t *testing.T) {
	root := Render(View{Status: StatusReady})

	list := root.FindByID(widgetChatList)
	if list == nil {
		t.Fatal("chat list missing")
	}
	if len(list.Children) != 1 || list.Children[0].ID != "chat_empty" {
		t.Fatalf("empty chat should show the hint label, got %+v", list.Children)
	}
	if !list.Scroll {
		t.Error("chat list must scroll")
	}
}

func TestRenderBubbles(t *testing.T) {
	root := Render(View{
		Status: StatusReady,
		Rounds: 1,
		Messages: []speech.Message{
			{Role: speech.RoleUser, Content: "hi"},
			{Role: speech.RoleAssistant, Content: "hello"},
		},
	})

	list := root.FindByID(widgetChatList)
	if list == nil {
		t.Fatal("chat list missing")
	}
	if len(list.Children) != 2 {
		t.Fatalf("len(bubbles) = %d, want 2", len(list.Children))
	}
	user, assistant := list.Children[0], list.Children[1]
	if user.ID != "msg_0" || assistant.ID != "msg_1" {
		t.Fatalf("bubble ids = %q, %q", user.ID, assistant.ID)
	}
	if user.BgColor == assistant.BgColor {
		t.Error("user and assistant bubbles share a background color")
	}
	if user.Text != "hi" || assistant.Text != "hello" {
		t.Errorf("bubble texts = %q, %q", user.Text, assistant.Text)
	}
}

func TestRenderControls(t *testing.T) {
	root := Render(View{Status: StatusReady})

	rec := root.FindByID(widgetRecBtn)
	if rec == nil {
		t.Fatal("record button missing")
	}
	if rec.OnPress != "local://audio/cmd/record_start" || rec.OnRelease != "local://audio/cmd/record_stop" {
		t.Errorf("record button actions = %q / %q", rec.OnPress, rec.OnRelease)
	}
	if n := root.FindByID(widgetNewChat); n == nil || n.OnClick == "" {
		t.Error("new chat button missing or inert")
	}
	if n := root.FindByID(widgetReplay); n == nil || n.OnClick == "" {
		t.Error("replay button missing or inert")
	}
}

func TestRenderStatusAndStats(t *testing.T) {
	root := Render(View{Status: StatusThinking, Rounds: 3, TotalTokens: 1200})

	status := root.FindByID(widgetStatus)
	if status == nil || status.Text != StatusThinking {
		t.Fatalf("status widget = %+v", status)
	}
	stats := root.FindByID(widgetStats)
	if stats == nil || stats.Text != "3 rounds · 1200 tokens" {
		t.Fatalf("stats widget = %+v", stats)
	}
}

func TestPlaceholderLayout(t *testing.T) {
	root := PlaceholderLayout()
	status := root.FindByID(widgetStatus)
	if status == nil || status.Type != sdui.TypeLabel {
		t.Fatal("placeholder has no status label")
	}
	if status.Text != StatusConnecting {
		t.Fatalf("placeholder status = %q, want %q", status.Text, StatusConnecting)
	}
}
