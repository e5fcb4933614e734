package sdui

import "encoding/json"

// Widget types understood by the terminal's layout parser.
const (
	TypeContainer = "container"
	TypeLabel     = "label"
	TypeButton    = "button"
)

// Node is one widget in a server-rendered layout tree. The attribute set
// mirrors the terminal's parser; zero values are omitted from the wire so
// the resource-constrained parser only sees what it must apply. A tree is
// immutable once sent: the next full layout replaces it wholesale, and
// Update patches individual nodes by id in between.
type Node struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`

	// Flex container attributes.
	Flex       string `json:"flex,omitempty"` // row, column, row_wrap, column_wrap
	Justify    string `json:"justify,omitempty"`
	AlignItems string `json:"align_items,omitempty"`
	Gap        int    `json:"gap,omitempty"`
	Scroll     bool   `json:"scroll,omitempty"`

	// Geometry and decoration.
	W           int    `json:"w,omitempty"`
	H           int    `json:"h,omitempty"`
	X           int    `json:"x,omitempty"`
	Y           int    `json:"y,omitempty"`
	Pad         int    `json:"pad,omitempty"`
	Radius      int    `json:"radius,omitempty"`
	BgColor     string `json:"bg_color,omitempty"`
	BgOpa       int    `json:"bg_opa,omitempty"`
	BorderColor string `json:"border_color,omitempty"`
	BorderW     int    `json:"border_w,omitempty"`
	Align       string `json:"align,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`

	// Text attributes.
	Text      string `json:"text,omitempty"`
	FontSize  int    `json:"font_size,omitempty"`
	TextColor string `json:"text_color,omitempty"`
	LongMode  string `json:"long_mode,omitempty"`

	// Action URI bindings per interaction event. "server://<topic>" routes
	// the event to the gateway; "local://<topic>" stays on the terminal.
	OnClick   string `json:"on_click,omitempty"`
	OnPress   string `json:"on_press,omitempty"`
	OnRelease string `json:"on_release,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// FindByID returns the node with the given id in the tree rooted at n, or
// nil if absent.
func (n *Node) FindByID(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// Update is an incremental patch to one node of the currently rendered
// tree. On the wire it is flat: {"id": "...", "text": "...", ...}.
type Update struct {
	ID    string
	Props map[string]any
}

// NewUpdate creates an Update for the node with the given id.
func NewUpdate(id string, props map[string]any) *Update {
	return &Update{ID: id, Props: props}
}

// TextUpdate creates the common text-only patch.
func TextUpdate(id, text string) *Update {
	return &Update{ID: id, Props: map[string]any{"text": text}}
}

// MarshalJSON implements json.Marshaler, flattening id and props into one
// object.
func (u *Update) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(u.Props)+1)
	for k, v := range u.Props {
		obj[k] = v
	}
	obj["id"] = u.ID
	return json.Marshal(obj)
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *Update) UnmarshalJSON(b []byte) error {
	obj := make(map[string]any)
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if id, ok := obj["id"].(string); ok {
		u.ID = id
	}
	delete(obj, "id")
	u.Props = obj
	return nil
}
