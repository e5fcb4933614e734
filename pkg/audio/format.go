// Package audio provides PCM format descriptions, WAV container encoding,
// and sample rate conversion for 16-bit signed little-endian audio.
package audio

import "time"

// Format describes a PCM audio format. Samples are always 16-bit signed
// little-endian; only the rate and channel count vary.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g. 22050, 24000).
	SampleRate int

	// Stereo indicates two channels if true, mono if false.
	Stereo bool
}

// Terminal is the capture and playback format of the round-display
// terminal: 22050 Hz mono s16le.
var Terminal = Format{SampleRate: 22050}

// Channels returns the number of audio channels.
func (f Format) Channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

// frameBytes returns the number of bytes in one sample frame across all
// channels.
func (f Format) frameBytes() int {
	return 2 * f.Channels()
}

// BytesRate returns the number of bytes per second of audio.
func (f Format) BytesRate() int {
	return f.SampleRate * f.frameBytes()
}

// Duration returns the play time of n bytes in this format.
func (f Format) Duration(n int) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(f.BytesRate())
}

// BytesInDuration returns the number of bytes covering duration d, rounded
// down to a whole sample frame.
func (f Format) BytesInDuration(d time.Duration) int {
	n := int(int64(f.BytesRate()) * int64(d) / int64(time.Second))
	return n - n%f.frameBytes()
}
