package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestFormat_Conversions(t *testing.T) {
	tests := []struct {
		f         Format
		bytesRate int
	}{
		{Format{SampleRate: 22050}, 44100},
		{Format{SampleRate: 24000}, 48000},
		{Format{SampleRate: 48000, Stereo: true}, 192000},
	}
	for _, tc := range tests {
		if got := tc.f.BytesRate(); got != tc.bytesRate {
			t.Errorf("%+v BytesRate = %d; want %d", tc.f, got, tc.bytesRate)
		}
		if got := tc.f.Duration(tc.bytesRate); got != time.Second {
			t.Errorf("%+v Duration(1s worth) = %v; want 1s", tc.f, got)
		}
		if got := tc.f.BytesInDuration(time.Second); got != tc.bytesRate {
			t.Errorf("%+v BytesInDuration(1s) = %d; want %d", tc.f, got, tc.bytesRate)
		}
	}
}

func TestFormat_BytesInDurationAligned(t *testing.T) {
	f := Format{SampleRate: 22050}
	n := f.BytesInDuration(500 * time.Millisecond)
	if n%2 != 0 {
		t.Errorf("BytesInDuration not sample-aligned: %d", n)
	}
	if n != 22050 {
		t.Errorf("half second at 22050 Hz mono = %d bytes; want 22050", n)
	}
}

func TestEncodeWAV(t *testing.T) {
	pcm := bytes.Repeat([]byte{0x12, 0x34}, 100)
	wav := EncodeWAV(pcm, Terminal)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d; want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 22050 {
		t.Errorf("sample rate = %d; want 22050", rate)
	}
	if ch := binary.LittleEndian.Uint16(wav[22:24]); ch != 1 {
		t.Errorf("channels = %d; want 1", ch)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); int(size) != len(pcm) {
		t.Errorf("data size = %d; want %d", size, len(pcm))
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Error("payload mismatch")
	}
}

func TestResampler_Passthrough(t *testing.T) {
	r, err := NewResampler(Terminal, Terminal)
	if err != nil {
		t.Fatalf("NewResampler error: %v", err)
	}
	in := []byte{1, 2, 3, 4}
	out, err := r.Process(in)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("passthrough altered data: %v", out)
	}
}

func TestResampler_RejectsStereo(t *testing.T) {
	_, err := NewResampler(Format{SampleRate: 48000, Stereo: true}, Terminal)
	if err == nil {
		t.Error("NewResampler accepted stereo input")
	}
}
