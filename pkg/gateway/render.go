package gateway

import (
	"fmt"

	"github.com/haivivi/sduigate/pkg/sdui"
	"github.com/haivivi/sduigate/pkg/speech"
)

// Layout geometry for the 1.75" round display: 466x466 panel with a
// 386x386 safe area.
const (
	safeWidth      = 386
	chatListHeight = 200
)

// Widget ids referenced by updates and click handlers.
const (
	widgetStatus   = "status"
	widgetStats    = "stats"
	widgetChatList = "chat_list"
	widgetRecBtn   = "btn_rec"
	widgetNewChat  = "btn_new_chat"
	widgetReplay   = "btn_replay"
)

// PlaceholderLayout is sent right after connect, before the terminal has
// identified itself with a heartbeat.
func PlaceholderLayout() *sdui.Node {
	return &sdui.Node{
		Flex:       "column",
		Justify:    "center",
		AlignItems: "center",
		Children: []*sdui.Node{
			{Type: sdui.TypeLabel, ID: widgetStatus, Text: StatusConnecting, FontSize: 20},
		},
	}
}

// Render builds the full home layout for a session snapshot. It is pure:
// identical views always produce structurally identical trees.
func Render(v View) *sdui.Node {
	root := &sdui.Node{
		Flex:       "column",
		Justify:    "center",
		AlignItems: "center",
		Gap:        10,
		Pad:        12,
		Children: []*sdui.Node{
			{
				Type:     sdui.TypeLabel,
				ID:       widgetStatus,
				Text:     v.Status,
				FontSize: 20,
			},
			{
				Type:      sdui.TypeLabel,
				ID:        widgetStats,
				Text:      fmt.Sprintf("%d rounds · %d tokens", v.Rounds, v.TotalTokens),
				FontSize:  14,
				TextColor: "#888888",
			},
			renderChatList(v),
			{
				Flex:       "row",
				Justify:    "center",
				AlignItems: "center",
				Gap:        12,
				Children: []*sdui.Node{
					{
						Type:      sdui.TypeButton,
						ID:        widgetRecBtn,
						Text:      "Hold to Talk",
						W:         150,
						H:         50,
						BgColor:   "#2ecc71",
						OnPress:   "local://audio/cmd/record_start",
						OnRelease: "local://audio/cmd/record_stop",
					},
					{
						Type:    sdui.TypeButton,
						ID:      widgetNewChat,
						Text:    "New Chat",
						W:       100,
						H:       50,
						OnClick: "server://ui/new_chat",
					},
					{
						Type:    sdui.TypeButton,
						ID:      widgetReplay,
						Text:    "Replay",
						W:       90,
						H:       50,
						OnClick: "server://ui/click",
					},
				},
			},
		},
	}
	return root
}

func renderChatList(v View) *sdui.Node {
	list := &sdui.Node{
		Type:       sdui.TypeContainer,
		ID:         widgetChatList,
		Flex:       "column",
		AlignItems: "center",
		Gap:        8,
		W:          safeWidth,
		H:          chatListHeight,
		Scroll:     true,
	}
	if len(v.Messages) == 0 {
		list.Children = []*sdui.Node{{
			Type:      sdui.TypeLabel,
			ID:        "chat_empty",
			Text:      "Hold the button and say something",
			FontSize:  14,
			TextColor: "#888888",
		}}
		return list
	}
	for i, m := range v.Messages {
		list.Children = append(list.Children, renderBubble(i, m.Role, m.Content))
	}
	return list
}

func renderBubble(index int, role, text string) *sdui.Node {
	bubble := &sdui.Node{
		Type:     sdui.TypeLabel,
		ID:       fmt.Sprintf("msg_%d", index),
		Text:     text,
		FontSize: 15,
		W:        safeWidth - 40,
		Pad:      8,
		Radius:   12,
		LongMode: "wrap",
	}
	if role == speech.RoleUser {
		bubble.BgColor = "#2ecc71"
		bubble.TextColor = "#0b3d23"
	} else {
		bubble.BgColor = "#333a45"
		bubble.TextColor = "#e8e8e8"
	}
	return bubble
}
