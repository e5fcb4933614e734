package gateway

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/sduigate/pkg/audio"
	"github.com/haivivi/sduigate/pkg/speech"
)

// DefaultSystemPrompt seeds every conversation unless the config overrides
// it. Replies are spoken aloud on a small speaker, so brevity matters.
const DefaultSystemPrompt = "You are a friendly voice assistant living inside a small round-screen " +
	"companion device. Answer briefly, in one or two spoken sentences, without markup."

// Config holds the gateway's tunables. Zero values fall back to defaults
// via Normalize.
type Config struct {
	// Listen is the HTTP listen address for the WebSocket endpoint.
	Listen string `yaml:"listen"`

	// SystemPrompt is prefixed once per session to the conversation.
	SystemPrompt string `yaml:"system_prompt"`

	// CaptureRate is the terminal's microphone sample rate in Hz.
	CaptureRate int `yaml:"capture_rate"`

	// MinCaptureMillis discards captures shorter than this many
	// milliseconds without invoking the pipeline.
	MinCaptureMillis int `yaml:"min_capture_millis"`

	// FrameBytes is the size of one audio/play frame. It must stay well
	// under the terminal's receive buffer.
	FrameBytes int `yaml:"frame_bytes"`

	// FramePauseMillis is the pause between audio/play frames. The pacing
	// is the flow control for the terminal's small playback buffer.
	FramePauseMillis int `yaml:"frame_pause_millis"`

	// STTWorkers bounds concurrent transcription calls across all
	// sessions.
	STTWorkers int `yaml:"stt_workers"`

	// Completer selects the inference backend: "openai" or "gemini".
	Completer string `yaml:"completer"`

	OpenAI speech.OpenAIConfig `yaml:"openai"`
	Gemini speech.GeminiConfig `yaml:"gemini"`
}

// DefaultConfig returns the built-in defaults: the terminal's native
// 22050 Hz capture, 1 KiB frames every 20 ms, half-second minimum capture.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Normalize()
	return cfg
}

// LoadConfig reads a YAML config file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("gateway: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("gateway: parse config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.CaptureRate == 0 {
		c.CaptureRate = audio.Terminal.SampleRate
	}
	if c.MinCaptureMillis == 0 {
		c.MinCaptureMillis = 500
	}
	if c.FrameBytes == 0 {
		c.FrameBytes = 1024
	}
	if c.FramePauseMillis == 0 {
		c.FramePauseMillis = 20
	}
	if c.STTWorkers == 0 {
		c.STTWorkers = 4
	}
	if c.Completer == "" {
		c.Completer = "openai"
	}
}

// CaptureFormat returns the terminal's microphone PCM format.
func (c *Config) CaptureFormat() audio.Format {
	return audio.Format{SampleRate: c.CaptureRate}
}

// MinCaptureBytes returns the capture length threshold in bytes.
func (c *Config) MinCaptureBytes() int {
	return c.CaptureFormat().BytesInDuration(time.Duration(c.MinCaptureMillis) * time.Millisecond)
}

// FramePause returns the inter-frame pause as a Duration.
func (c *Config) FramePause() time.Duration {
	return time.Duration(c.FramePauseMillis) * time.Millisecond
}
