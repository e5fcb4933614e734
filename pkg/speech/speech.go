// Package speech defines the external intelligence collaborators the
// gateway drives: speech-to-text, chat completion, and text-to-speech.
// Implementations for OpenAI and Gemini live in this package; the gateway
// core depends only on the interfaces.
package speech

import (
	"context"
	"iter"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the outcome of a completion call.
type Reply struct {
	// Text is the assistant's full reply.
	Text string

	// Tokens is the total token cost the backend reported for the call.
	Tokens int
}

// Transcriber converts captured PCM audio to text. The call is blocking
// and CPU/network heavy; the gateway runs it on a bounded worker pool.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

// Completer produces the assistant's reply for an ordered conversation
// history.
type Completer interface {
	Complete(ctx context.Context, history []Message) (Reply, error)
}

// Synthesizer converts reply text into a lazily-produced sequence of raw
// PCM chunks in the terminal's playback format. Chunk sizes are whatever
// the backend produces; the gateway re-frames them for delivery.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) iter.Seq2[[]byte, error]
}
