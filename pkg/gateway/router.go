package gateway

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/haivivi/sduigate/pkg/sdui"
	"github.com/haivivi/sduigate/pkg/trie"
)

// Router accepts terminal connections, binds them to sessions, and
// dispatches inbound envelopes by topic. One goroutine per connection;
// decode failures and unknown topics drop the frame, never the
// connection.
type Router struct {
	log      *slog.Logger
	cfg      Config
	registry *Registry
	pipeline *Pipeline
	upgrader websocket.Upgrader

	// baseCtx outlives individual connections: a pipeline run keeps going
	// after its terminal disconnects.
	baseCtx context.Context

	mux *trie.Trie[handlerFunc]
}

type handlerFunc func(st *connState, env *sdui.Envelope, payload any)

// connState is the per-connection state the router tracks on top of the
// transport: the cached device identity and whether the first full layout
// went out.
type connState struct {
	sender      *wsSender
	log         *slog.Logger
	deviceID    string
	initialized bool
}

// NewRouter wires the router, its session registry, and its pipeline.
func NewRouter(ctx context.Context, cfg Config, registry *Registry, pipeline *Pipeline, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	rt := &Router{
		log:      log,
		cfg:      cfg,
		registry: registry,
		pipeline: pipeline,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		baseCtx: ctx,
		mux:     trie.New[handlerFunc](),
	}
	rt.mux.Set(sdui.TopicHeartbeat, rt.handleHeartbeat)
	rt.mux.Set(sdui.TopicClick, rt.handleClick)
	rt.mux.Set(sdui.TopicAction, rt.handleClick)
	rt.mux.Set(sdui.TopicVolume, rt.handleVolume)
	rt.mux.Set(sdui.TopicNewChat, rt.handleNewChat)
	rt.mux.Set(sdui.TopicRecord, rt.handleRecord)
	rt.mux.Set(sdui.TopicMotion, rt.handleMotion)
	return rt
}

// ServeHTTP upgrades the connection and runs its read loop until either
// side closes. The session, if any was bound, survives the close.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := rt.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rt.log.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	st := &connState{
		sender: &wsSender{conn: conn},
		log:    rt.log.With("remote", conn.RemoteAddr().String()),
	}
	st.log.Info("terminal connected")

	// The terminal shows a loading animation until its first layout.
	if err := st.sender.Send(sdui.TopicLayout, PlaceholderLayout()); err != nil {
		st.log.Warn("placeholder layout failed", "error", err)
		return
	}

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			st.log.Info("terminal disconnected", "device", st.deviceID, "error", err)
			rt.registry.MarkOffline(st.sender)
			return
		}
		rt.dispatch(st, frame)
	}
}

func (rt *Router) dispatch(st *connState, frame []byte) {
	env, err := sdui.Decode(frame)
	if err != nil {
		st.log.Warn("frame dropped", "error", err)
		return
	}
	if env.DeviceID != "" {
		st.deviceID = env.DeviceID
	}

	payload, err := sdui.DecodePayload(env.Topic, env.Payload)
	if err != nil {
		st.log.Warn("payload dropped", "topic", env.Topic, "error", err)
		return
	}
	h, ok := rt.mux.Match(env.Topic)
	if !ok {
		st.log.Warn("unhandled topic", "topic", env.Topic)
		return
	}
	h(st, env, payload)
}

// session resolves the connection's device to its session. Messages from a
// terminal that never identified itself are dropped.
func (rt *Router) session(st *connState) *Session {
	if st.deviceID == "" {
		st.log.Debug("message before device identity, dropped")
		return nil
	}
	return rt.registry.Resolve(st.deviceID, st.sender)
}

func (rt *Router) handleHeartbeat(st *connState, _ *sdui.Envelope, payload any) {
	s := rt.session(st)
	if s == nil {
		return
	}
	hb := payload.(*sdui.Heartbeat)
	s.SetTelemetry(hb)
	st.log.Debug("heartbeat",
		"device", s.ID, "rssi", hb.WifiRSSI, "ip", hb.IP,
		"temp", hb.Temperature, "uptime_s", hb.UptimeSeconds)

	if !st.initialized {
		rt.pushLayout(st, s)
		st.initialized = true
	}
}

func (rt *Router) handleClick(st *connState, _ *sdui.Envelope, payload any) {
	s := rt.session(st)
	if s == nil {
		return
	}
	click := payload.(*sdui.Click)
	st.log.Info("click", "device", s.ID, "widget", click.ID)

	switch click.ID {
	case widgetNewChat:
		s.resetChat()
		rt.pushLayout(st, s)
	case widgetReplay:
		go rt.pipeline.Replay(rt.baseCtx, s)
	default:
		st.log.Debug("unhandled widget click", "widget", click.ID)
	}
}

func (rt *Router) handleNewChat(st *connState, _ *sdui.Envelope, _ any) {
	s := rt.session(st)
	if s == nil {
		return
	}
	st.log.Info("new chat", "device", s.ID)
	s.resetChat()
	rt.pushLayout(st, s)
}

func (rt *Router) handleVolume(st *connState, _ *sdui.Envelope, payload any) {
	s := rt.session(st)
	if s == nil {
		return
	}
	vol := payload.(*sdui.Volume)
	s.SetVolume(vol.Value)
	st.log.Debug("volume", "device", s.ID, "widget", vol.ID, "value", vol.Value)
	rt.sendUpdate(st, s, sdui.NewUpdate(vol.ID, map[string]any{"value": vol.Value}))
}

func (rt *Router) handleMotion(st *connState, _ *sdui.Envelope, payload any) {
	s := rt.session(st)
	if s == nil {
		return
	}
	motion := payload.(*sdui.Motion)
	st.log.Info("motion", "device", s.ID, "type", motion.Type, "magnitude", motion.Magnitude)
	if motion.Type == "shake" {
		// Transient flash; the stored status is untouched.
		rt.sendUpdate(st, s, sdui.TextUpdate(widgetStatus, "shake detected"))
	}
}

func (rt *Router) handleRecord(st *connState, _ *sdui.Envelope, payload any) {
	s := rt.session(st)
	if s == nil {
		return
	}
	rec := payload.(*sdui.Record)

	switch rec.State {
	case sdui.RecordStart:
		st.log.Info("capture start", "device", s.ID)
		s.BeginCapture()
		rt.sendUpdate(st, s, sdui.TextUpdate(widgetStatus, StatusRecording))

	case sdui.RecordStream:
		data, err := base64.StdEncoding.DecodeString(rec.Data)
		if err != nil {
			st.log.Warn("capture chunk dropped", "device", s.ID, "error", err)
			return
		}
		if !s.AppendCapture(data) {
			st.log.Debug("capture chunk while idle, ignored", "device", s.ID, "bytes", len(data))
		}

	case sdui.RecordStop:
		pcm := s.EndCapture()
		st.log.Info("capture stop", "device", s.ID, "bytes", len(pcm))
		if len(pcm) < rt.cfg.MinCaptureBytes() {
			st.log.Info("capture too short, discarded",
				"device", s.ID, "bytes", len(pcm), "min", rt.cfg.MinCaptureBytes())
			s.setStatus(StatusReady)
			rt.sendUpdate(st, s, sdui.TextUpdate(widgetStatus, StatusReady))
			return
		}
		if !s.tryBeginRun() {
			st.log.Warn("capture stop while run in flight, rejected", "device", s.ID)
			rt.sendUpdate(st, s, sdui.TextUpdate(widgetStatus, StatusBusy))
			return
		}
		go rt.pipeline.Run(rt.baseCtx, s, pcm)

	default:
		st.log.Warn("unknown record state", "device", s.ID, "state", rec.State)
	}
}

func (rt *Router) pushLayout(st *connState, s *Session) {
	if err := s.Send(sdui.TopicLayout, Render(s.View())); err != nil {
		st.log.Warn("layout send failed", "device", s.ID, "error", err)
	}
}

func (rt *Router) sendUpdate(st *connState, s *Session, u *sdui.Update) {
	if err := s.Send(sdui.TopicUpdate, u); err != nil {
		st.log.Warn("update send failed", "device", s.ID, "error", err)
	}
}

// wsSender adapts a websocket connection to the Sender interface with a
// write lock; gorilla connections allow one concurrent writer only.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsSender) Send(topic string, payload any) error {
	frame, err := sdui.Encode(topic, payload)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, frame)
}
