package speech

import (
	"testing"

	"github.com/haivivi/sduigate/pkg/audio"
)

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{}, audio.Terminal, audio.Terminal); err == nil {
		t.Fatal("NewOpenAI accepted an empty api key")
	}
}

func TestNewOpenAIDefaults(t *testing.T) {
	p, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test"}, audio.Terminal, audio.Terminal)
	if err != nil {
		t.Fatal(err)
	}
	if p.cfg.ChatModel != DefaultChatModel {
		t.Errorf("ChatModel = %q, want %q", p.cfg.ChatModel, DefaultChatModel)
	}
	if p.cfg.TranscribeModel != DefaultTranscribeModel {
		t.Errorf("TranscribeModel = %q, want %q", p.cfg.TranscribeModel, DefaultTranscribeModel)
	}
	if p.cfg.SpeechModel != DefaultSpeechModel {
		t.Errorf("SpeechModel = %q, want %q", p.cfg.SpeechModel, DefaultSpeechModel)
	}
	if p.cfg.Voice != DefaultVoice {
		t.Errorf("Voice = %q, want %q", p.cfg.Voice, DefaultVoice)
	}
}

func TestNewOpenAIKeepsOverrides(t *testing.T) {
	cfg := OpenAIConfig{
		APIKey:    "sk-test",
		ChatModel: "gpt-4o",
		Voice:     "nova",
	}
	p, err := NewOpenAI(cfg, audio.Terminal, audio.Terminal)
	if err != nil {
		t.Fatal(err)
	}
	if p.cfg.ChatModel != "gpt-4o" || p.cfg.Voice != "nova" {
		t.Errorf("overrides lost: %+v", p.cfg)
	}
}
