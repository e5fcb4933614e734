package gateway

// Audio capture state machine. The terminal drives it with the
// start/stream/stop sub-protocol on the audio/record topic:
//
//	IDLE --start--> RECORDING --stop--> IDLE
//
// stream appends to the capture buffer only while RECORDING; out-of-order
// messages are no-ops, never errors.

// BeginCapture arms the capture buffer. A start while already recording
// restarts the capture from empty.
func (s *Session) BeginCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = true
	s.capture.Reset()
	s.status = StatusRecording
}

// AppendCapture appends decoded audio to the capture buffer. It reports
// false when no capture is in progress, in which case the data is dropped.
func (s *Session) AppendCapture(pcm []byte) bool {
	s.mu.Lock()
	recording := s.recording
	s.mu.Unlock()
	if !recording {
		return false
	}
	s.capture.Write(pcm)
	return true
}

// EndCapture stops the capture and atomically swaps the buffer out,
// leaving the session's buffer empty. A stop while idle yields nil.
func (s *Session) EndCapture() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return nil
	}
	s.recording = false
	return s.capture.Take()
}

// CaptureLen returns the number of buffered capture bytes.
func (s *Session) CaptureLen() int {
	return s.capture.Len()
}
