package provider

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// #region client
// OpenAIProvider is the managed backend: any OpenAI-compatible endpoint
// serving both the fast and smart model tiers.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a managed provider. baseURL may be empty for the
// default endpoint. Returns a classified error when the key is missing.
func NewOpenAIProvider(apiKey, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, NewError(CodeMissingAPIKey, "managed provider selected but no API key configured")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}, nil
}

// #endregion client

// #region generate
// Generate runs a single chat completion.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt, model string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", NewError(CodeRequestFailed, "chat completion: %v", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewError(CodeEmptyResponse, "chat completion returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// #endregion generate

// #region generate-stream
// GenerateStream streams a chat completion, invoking onDelta per text delta,
// and returns the accumulated text.
func (p *OpenAIProvider) GenerateStream(ctx context.Context, prompt, model string, onDelta func(string)) (string, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:  model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", NewError(CodeRequestFailed, "open completion stream: %v", err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", NewError(CodeRequestFailed, "read completion stream: %v", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		b.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", NewError(CodeEmptyResponse, "completion stream produced no text")
	}
	return b.String(), nil
}

// #endregion generate-stream
