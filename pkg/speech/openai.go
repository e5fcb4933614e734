package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/haivivi/sduigate/pkg/audio"
)

// Defaults for the OpenAI provider.
const (
	DefaultChatModel       = "gpt-4o-mini"
	DefaultTranscribeModel = openai.AudioModelWhisper1
	DefaultSpeechModel     = openai.SpeechModelTTS1
	DefaultVoice           = "alloy"
)

// openaiSpeechFormat is the fixed output format of the OpenAI speech
// endpoint when requesting raw PCM: 24 kHz mono s16le.
var openaiSpeechFormat = audio.Format{SampleRate: 24000}

// OpenAIConfig configures the OpenAI-backed collaborators.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`

	ChatModel       string `yaml:"chat_model"`
	TranscribeModel string `yaml:"transcribe_model"`
	SpeechModel     string `yaml:"speech_model"`
	Voice           string `yaml:"voice"`
}

// OpenAI implements Transcriber, Completer and Synthesizer against the
// OpenAI API (or any compatible endpoint via BaseURL).
type OpenAI struct {
	client openai.Client
	cfg    OpenAIConfig

	// captureFormat is the PCM format of transcription input.
	captureFormat audio.Format

	// playFormat is the PCM format synthesized audio is converted to.
	playFormat audio.Format
}

var (
	_ Transcriber = (*OpenAI)(nil)
	_ Completer   = (*OpenAI)(nil)
	_ Synthesizer = (*OpenAI)(nil)
)

// NewOpenAI creates the OpenAI provider. captureFormat is the terminal's
// microphone format, playFormat its speaker format.
func NewOpenAI(cfg OpenAIConfig, captureFormat, playFormat audio.Format) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("speech: openai api key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = DefaultTranscribeModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{
		client:        openai.NewClient(opts...),
		cfg:           cfg,
		captureFormat: captureFormat,
		playFormat:    playFormat,
	}, nil
}

// Transcribe uploads the capture as WAV and returns the recognized text.
func (p *OpenAI) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	wav := audio.EncodeWAV(pcm, p.captureFormat)
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: p.cfg.TranscribeModel,
		File:  openai.File(bytes.NewReader(wav), "capture.wav", "audio/wav"),
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	return resp.Text, nil
}

// Complete runs a chat completion over the full history and reports the
// backend's total token usage as the call's cost.
func (p *OpenAI) Complete(ctx context.Context, history []Message) (Reply, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    p.cfg.ChatModel,
		Messages: msgs,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("speech: complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, errors.New("speech: complete: no choices")
	}
	return Reply{
		Text:   resp.Choices[0].Message.Content,
		Tokens: int(resp.Usage.TotalTokens),
	}, nil
}

// Synthesize streams raw PCM from the speech endpoint, resampled from the
// endpoint's 24 kHz output to the terminal's playback rate.
func (p *OpenAI) Synthesize(ctx context.Context, text string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
			Model:          p.cfg.SpeechModel,
			Voice:          openai.AudioSpeechNewParamsVoice(p.cfg.Voice),
			Input:          text,
			ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
		})
		if err != nil {
			yield(nil, fmt.Errorf("speech: synthesize: %w", err))
			return
		}
		defer resp.Body.Close()

		rs, err := audio.NewResampler(openaiSpeechFormat, p.playFormat)
		if err != nil {
			yield(nil, err)
			return
		}

		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				out, perr := rs.Process(buf[:n])
				if perr != nil {
					yield(nil, perr)
					return
				}
				if len(out) > 0 && !yield(out, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("speech: synthesize stream: %w", err))
				return
			}
		}
	}
}
