package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haivivi/sduigate/pkg/buffer"
	"github.com/haivivi/sduigate/pkg/sdui"
	"github.com/haivivi/sduigate/pkg/speech"
)

// Pipeline orchestrates one record-to-playback cycle: transcribe the
// capture, append the user turn, infer the reply, append the assistant
// turn, then synthesize and stream paced audio frames. One Pipeline is
// shared by all sessions; per-session exclusivity is enforced by the
// session's run slot.
type Pipeline struct {
	log  *slog.Logger
	cfg  Config
	stt  speech.Transcriber
	llm  speech.Completer
	tts  speech.Synthesizer
	pool *Pool
}

// NewPipeline creates the orchestrator with a bounded transcription pool.
func NewPipeline(cfg Config, stt speech.Transcriber, llm speech.Completer, tts speech.Synthesizer, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		log:  log,
		cfg:  cfg,
		stt:  stt,
		llm:  llm,
		tts:  tts,
		pool: NewPool(cfg.STTWorkers),
	}
}

// Run executes one pipeline cycle for a capture. The caller must have
// claimed the session's run slot with tryBeginRun; Run releases it. The
// run continues even if the terminal disconnects mid-way: history stays
// valid, sends fail softly.
func (p *Pipeline) Run(ctx context.Context, s *Session, pcm []byte) {
	defer s.endRun()

	log := p.log.With("device", s.ID, "run", uuid.NewString()[:8])
	log.Info("pipeline start", "capture_bytes", len(pcm))

	p.pushStatus(log, s, StatusTranscribing)

	text, err := p.transcribe(ctx, pcm)
	if err != nil {
		log.Error("transcription failed", "error", err)
		p.failSoft(log, s)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Info("no speech detected")
		p.sendUpdate(log, s, sdui.TextUpdate(widgetStatus, StatusNoSpeech))
		s.setStatus(StatusReady)
		return
	}
	log.Info("transcript", "text", text)

	s.ensureSystem(p.cfg.SystemPrompt)
	s.appendUser(text)
	p.pushLayout(log, s)

	p.pushStatus(log, s, StatusThinking)
	reply, err := p.llm.Complete(ctx, s.historyCopy())
	if err != nil {
		log.Error("completion failed", "error", err)
		p.failSoft(log, s)
		return
	}
	log.Info("reply", "chars", len(reply.Text), "tokens", reply.Tokens)

	s.appendAssistant(reply.Text, reply.Tokens)
	p.pushLayout(log, s)

	p.pushStatus(log, s, StatusSpeaking)
	sent, err := p.streamSynthesis(ctx, log, s, reply.Text)
	if err != nil {
		log.Error("synthesis failed", "error", err)
		p.failSoft(log, s)
		return
	}
	s.setLastAudio(sent)
	log.Info("pipeline done", "audio_bytes", len(sent))

	p.pushStatus(log, s, StatusReady)
}

// Replay re-streams the last synthesized response audio.
func (p *Pipeline) Replay(ctx context.Context, s *Session) {
	log := p.log.With("device", s.ID)
	pcm := s.LastAudio()
	if len(pcm) == 0 {
		p.sendUpdate(log, s, sdui.TextUpdate(widgetStatus, "nothing to replay"))
		return
	}
	if !s.tryBeginRun() {
		p.sendUpdate(log, s, sdui.TextUpdate(widgetStatus, StatusBusy))
		return
	}
	defer s.endRun()

	p.pushStatus(log, s, StatusSpeaking)
	p.sendFrames(ctx, log, s, pcm)
	p.pushStatus(log, s, StatusReady)
}

// transcribe offloads the blocking STT call to the bounded pool.
func (p *Pipeline) transcribe(ctx context.Context, pcm []byte) (string, error) {
	var text string
	err := p.pool.Do(ctx, func() error {
		var err error
		text, err = p.stt.Transcribe(ctx, pcm)
		return err
	})
	return text, err
}

// streamSynthesis pulls lazily-produced PCM from the synthesizer through a
// bounded block buffer and emits fixed-size paced frames. The block buffer
// caps how far synthesis can run ahead of delivery. Returns the complete
// delivered byte stream.
func (p *Pipeline) streamSynthesis(ctx context.Context, log *slog.Logger, s *Session, text string) ([]byte, error) {
	blk := buffer.NewBlock(p.cfg.FrameBytes * 8)
	synthErr := make(chan error, 1)

	go func() {
		for chunk, err := range p.tts.Synthesize(ctx, text) {
			if err != nil {
				blk.CloseWithError(err)
				synthErr <- err
				return
			}
			if _, err := blk.Write(chunk); err != nil {
				synthErr <- err
				return
			}
		}
		blk.CloseWrite()
		synthErr <- nil
	}()

	var sent []byte
	frame := make([]byte, p.cfg.FrameBytes)
	for {
		n, err := io.ReadFull(blk, frame)
		if n > 0 {
			p.sendAudio(log, s, frame[:n])
			sent = append(sent, frame[:n]...)
			p.pause(ctx)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return sent, err
		}
	}
	return sent, <-synthErr
}

// sendFrames emits an in-memory PCM stream as paced audio/play frames.
func (p *Pipeline) sendFrames(ctx context.Context, log *slog.Logger, s *Session, pcm []byte) {
	for off := 0; off < len(pcm); off += p.cfg.FrameBytes {
		end := min(off+p.cfg.FrameBytes, len(pcm))
		p.sendAudio(log, s, pcm[off:end])
		p.pause(ctx)
	}
}

// pause sleeps the inter-frame delay, cut short by ctx cancellation.
func (p *Pipeline) pause(ctx context.Context) {
	select {
	case <-time.After(p.cfg.FramePause()):
	case <-ctx.Done():
	}
}

// sendAudio emits one audio/play frame. The payload is the base64 of the
// raw PCM, as the firmware's audio task expects.
func (p *Pipeline) sendAudio(log *slog.Logger, s *Session, frame []byte) {
	encoded := base64.StdEncoding.EncodeToString(frame)
	if err := s.Send(sdui.TopicPlay, encoded); err != nil {
		log.Debug("audio frame dropped", "error", err, "bytes", len(frame))
	}
}

// pushStatus stores the status and mirrors it to the status widget.
func (p *Pipeline) pushStatus(log *slog.Logger, s *Session, status string) {
	s.setStatus(status)
	p.sendUpdate(log, s, sdui.TextUpdate(widgetStatus, status))
}

// failSoft reports a recoverable pipeline failure: a transient error
// status, then back to ready. Session state stays consistent.
func (p *Pipeline) failSoft(log *slog.Logger, s *Session) {
	p.sendUpdate(log, s, sdui.TextUpdate(widgetStatus, StatusError))
	s.setStatus(StatusReady)
}

// pushLayout re-renders the session and sends a full layout replace.
func (p *Pipeline) pushLayout(log *slog.Logger, s *Session) {
	if err := s.Send(sdui.TopicLayout, Render(s.View())); err != nil {
		log.Debug("layout dropped", "error", err)
	}
}

func (p *Pipeline) sendUpdate(log *slog.Logger, s *Session, u *sdui.Update) {
	if err := s.Send(sdui.TopicUpdate, u); err != nil {
		log.Debug("update dropped", "error", err)
	}
}
