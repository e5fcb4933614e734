package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the config names no model.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini-backed completer.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Gemini implements Completer against the Gemini API. Transcription and
// synthesis stay on the OpenAI provider; this is a drop-in alternative for
// the inference stage only.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Completer = (*Gemini)(nil)

// NewGemini creates the Gemini completer.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("speech: gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("speech: gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

// Complete maps the conversation onto Gemini contents. The system turn, if
// present, becomes the system instruction.
func (p *Gemini) Complete(ctx context.Context, history []Message) (Reply, error) {
	var config *genai.GenerateContentConfig
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleSystem:
			config = &genai.GenerateContentConfig{
				SystemInstruction: &genai.Content{
					Parts: []*genai.Part{{Text: m.Content}},
				},
			}
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return Reply{}, fmt.Errorf("speech: gemini complete: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return Reply{}, errors.New("speech: gemini complete: empty response")
	}

	reply := Reply{Text: sb.String()}
	if resp.UsageMetadata != nil {
		reply.Tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return reply, nil
}
