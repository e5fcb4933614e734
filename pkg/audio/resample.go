package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler converts s16le mono PCM between sample rates. It is stateful:
// feed it successive chunks of one stream via Process. When the source and
// destination rates match it passes data through untouched.
type Resampler struct {
	from, to Format
	rs       resampling.Resampler
	carry    []byte // trailing byte of a sample split across chunks
}

// NewResampler creates a Resampler from one mono format to another.
func NewResampler(from, to Format) (*Resampler, error) {
	if from.Stereo || to.Stereo {
		return nil, fmt.Errorf("audio: resampler supports mono only")
	}
	r := &Resampler{from: from, to: to}
	if from.SampleRate != to.SampleRate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(from.SampleRate),
			OutputRate: float64(to.SampleRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("audio: create resampler: %w", err)
		}
		r.rs = rs
	}
	return r, nil
}

// Process converts one chunk of source PCM and returns the converted bytes.
// Output length varies with the rate ratio and the converter's internal
// latency; empty output for a small chunk is normal.
func (r *Resampler) Process(chunk []byte) ([]byte, error) {
	if r.rs == nil {
		return chunk, nil
	}

	data := chunk
	if len(r.carry) > 0 {
		data = append(r.carry, chunk...)
		r.carry = nil
	}
	if len(data)%2 != 0 {
		r.carry = []byte{data[len(data)-1]}
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return nil, nil
	}

	input := make([]float64, len(data)/2)
	for i := range input {
		sample := int16(data[i*2]) | int16(data[i*2+1])<<8
		input[i] = float64(sample) / 32768.0
	}

	output, err := r.rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("audio: resample: %w", err)
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		v := s * 32767.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		sample := int16(v)
		out[i*2] = byte(sample)
		out[i*2+1] = byte(sample >> 8)
	}
	return out, nil
}
