package gateway

import (
	"bytes"
	"testing"
)

func TestCaptureRoundtrip(t *testing.T) {
	s := newSession("dev")

	s.BeginCapture()
	if s.Status() != StatusRecording {
		t.Fatalf("status = %q, want %q", s.Status(), StatusRecording)
	}
	if !s.AppendCapture([]byte("abcd")) {
		t.Fatal("AppendCapture rejected while recording")
	}
	if !s.AppendCapture([]byte("efgh")) {
		t.Fatal("AppendCapture rejected while recording")
	}
	if s.CaptureLen() != 8 {
		t.Fatalf("CaptureLen = %d, want 8", s.CaptureLen())
	}

	pcm := s.EndCapture()
	if !bytes.Equal(pcm, []byte("abcdefgh")) {
		t.Fatalf("EndCapture = %q, want abcdefgh", pcm)
	}
	if s.CaptureLen() != 0 {
		t.Fatalf("buffer not empty after stop: %d bytes", s.CaptureLen())
	}
}

func TestCaptureStreamBeforeStartDropped(t *testing.T) {
	s := newSession("dev")
	if s.AppendCapture([]byte("abcd")) {
		t.Fatal("AppendCapture accepted while idle")
	}
	if s.CaptureLen() != 0 {
		t.Fatalf("idle chunk was buffered: %d bytes", s.CaptureLen())
	}
}

func TestCaptureStopWhileIdle(t *testing.T) {
	s := newSession("dev")
	if pcm := s.EndCapture(); pcm != nil {
		t.Fatalf("EndCapture while idle = %d bytes, want nil", len(pcm))
	}
}

func TestCaptureRestartClearsBuffer(t *testing.T) {
	s := newSession("dev")
	s.BeginCapture()
	s.AppendCapture([]byte("stale"))

	s.BeginCapture()
	s.AppendCapture([]byte("fresh"))
	if pcm := s.EndCapture(); !bytes.Equal(pcm, []byte("fresh")) {
		t.Fatalf("EndCapture = %q, want fresh", pcm)
	}
}

func TestCaptureStreamAfterStopDropped(t *testing.T) {
	s := newSession("dev")
	s.BeginCapture()
	s.AppendCapture([]byte("abcd"))
	s.EndCapture()

	if s.AppendCapture([]byte("late")) {
		t.Fatal("AppendCapture accepted after stop")
	}
	if s.CaptureLen() != 0 {
		t.Fatalf("late chunk was buffered: %d bytes", s.CaptureLen())
	}
}
