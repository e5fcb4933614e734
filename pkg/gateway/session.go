// Package gateway is the core of the SDUI gateway: it multiplexes terminal
// connections onto device sessions, runs the audio capture sub-protocol,
// renders server-driven layouts, and drives the record-transcribe-infer-
// synthesize-play pipeline.
package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/haivivi/sduigate/pkg/buffer"
	"github.com/haivivi/sduigate/pkg/jsontime"
	"github.com/haivivi/sduigate/pkg/sdui"
	"github.com/haivivi/sduigate/pkg/speech"
)

// Session status values shown in the status widget.
const (
	StatusConnecting   = "connecting"
	StatusReady        = "ready"
	StatusRecording    = "recording"
	StatusTranscribing = "transcribing"
	StatusThinking     = "thinking"
	StatusSpeaking     = "speaking"
	StatusNoSpeech     = "no speech"
	StatusBusy         = "busy"
	StatusError        = "error"
)

// ErrOffline is returned by Session.Send while no connection is attached.
var ErrOffline = errors.New("gateway: session offline")

// Sender delivers one outbound frame to a terminal connection.
type Sender interface {
	Send(topic string, payload any) error
}

// Session is the server-side persistent state for one physical terminal,
// keyed by its device identity. It outlives any single connection: a
// disconnect clears the connection handle, a reconnect reattaches it, and
// history and stats persist for the process lifetime.
type Session struct {
	// ID is the device identity (hardware address). Immutable.
	ID string

	mu        sync.Mutex
	conn      Sender
	lastSeen  time.Time
	telemetry *sdui.Heartbeat

	recording bool
	capture   *buffer.Buffer

	history     []speech.Message
	rounds      int
	totalTokens int

	status    string
	volume    float64
	lastAudio []byte
	running   bool
}

func newSession(id string) *Session {
	return &Session{
		ID:      id,
		capture: buffer.New(),
		status:  StatusReady,
		volume:  0.8,
	}
}

// attach binds a connection and refreshes the last-seen timestamp.
func (s *Session) attach(conn Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.lastSeen = time.Now()
}

// detach clears the connection handle if it still belongs to conn. A stale
// disconnect must not detach a newer connection.
func (s *Session) detach(conn Sender) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return false
	}
	s.conn = nil
	return true
}

// Send delivers one frame over the current connection. ErrOffline while
// detached; transport errors pass through for the caller to log.
func (s *Session) Send(topic string, payload any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrOffline
	}
	return conn.Send(topic, payload)
}

// SetTelemetry stores the latest heartbeat snapshot.
func (s *Session) SetTelemetry(hb *sdui.Heartbeat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telemetry = hb
	s.lastSeen = time.Now()
}

// SetVolume stores the terminal's reported volume.
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *Session) setStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Status returns the current stored status.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// tryBeginRun claims the session's single pipeline-run slot. At most one
// run may be in flight per session.
func (s *Session) tryBeginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Session) endRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// ensureSystem prefixes the system instruction to the history once per
// session.
func (s *Session) ensureSystem(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt == "" {
		return
	}
	if len(s.history) > 0 && s.history[0].Role == speech.RoleSystem {
		return
	}
	s.history = append([]speech.Message{{Role: speech.RoleSystem, Content: prompt}}, s.history...)
}

// appendUser appends one user turn.
func (s *Session) appendUser(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, speech.Message{Role: speech.RoleUser, Content: text})
}

// appendAssistant appends one assistant turn and accounts the round.
func (s *Session) appendAssistant(text string, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, speech.Message{Role: speech.RoleAssistant, Content: text})
	s.rounds++
	s.totalTokens += tokens
}

// historyCopy returns the full ordered history including the system turn.
func (s *Session) historyCopy() []speech.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]speech.Message, len(s.history))
	copy(out, s.history)
	return out
}

// resetChat clears the conversation and stats. The system instruction is
// re-applied on the next pipeline run.
func (s *Session) resetChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.rounds = 0
	s.totalTokens = 0
	s.lastAudio = nil
	s.status = StatusReady
}

func (s *Session) setLastAudio(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAudio = pcm
}

// LastAudio returns the most recently synthesized response audio.
func (s *Session) LastAudio() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAudio
}

// View is an immutable snapshot of the session for rendering.
type View struct {
	Status      string
	Rounds      int
	TotalTokens int
	Messages    []speech.Message // user and assistant turns only
}

// View snapshots the renderable session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Status:      s.status,
		Rounds:      s.rounds,
		TotalTokens: s.totalTokens,
	}
	for _, m := range s.history {
		if m.Role == speech.RoleSystem {
			continue
		}
		v.Messages = append(v.Messages, m)
	}
	return v
}

// SessionInfo is the operator-facing summary of a session.
type SessionInfo struct {
	ID          string         `json:"id"`
	Online      bool           `json:"online"`
	Status      string         `json:"status"`
	Rounds      int            `json:"rounds"`
	TotalTokens int            `json:"total_tokens"`
	LastSeen    jsontime.Milli `json:"last_seen"`
}

// Info summarizes the session for the operator console.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:          s.ID,
		Online:      s.conn != nil,
		Status:      s.status,
		Rounds:      s.rounds,
		TotalTokens: s.totalTokens,
		LastSeen:    jsontime.Milli(s.lastSeen),
	}
}
