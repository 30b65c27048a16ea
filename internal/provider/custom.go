package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// #region client
// CustomProvider is a bring-your-own HTTP endpoint speaking a minimal
// line-delimited JSON protocol. It bypasses tiering entirely: the router
// dispatches it once and reports its declared model name verbatim.
type CustomProvider struct {
	endpoint string
	client   *http.Client
}

// NewCustomProvider creates a client for the given endpoint URL.
func NewCustomProvider(endpoint string) *CustomProvider {
	return &CustomProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// #endregion client

// #region wire-types
type customRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type customResponse struct {
	Text  string `json:"text"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// #endregion wire-types

// #region generate
// Generate posts the prompt and decodes the single-object reply.
func (p *CustomProvider) Generate(ctx context.Context, prompt, model string) (string, error) {
	resp, err := p.post(ctx, customRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed customResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", NewError(CodeRequestFailed, "decode custom endpoint response: %v", err)
	}
	if parsed.Error != "" {
		return "", NewError(CodeRequestFailed, "custom endpoint: %s", parsed.Error)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return "", NewError(CodeEmptyResponse, "custom endpoint returned no text")
	}
	return parsed.Text, nil
}

// #endregion generate

// #region generate-stream
// GenerateStream reads line-delimited JSON objects until done, invoking
// onDelta per text fragment.
func (p *CustomProvider) GenerateStream(ctx context.Context, prompt, model string, onDelta func(string)) (string, error) {
	resp, err := p.post(ctx, customRequest{Model: model, Prompt: prompt, Stream: true})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var parsed customResponse
		if err := json.Unmarshal(line, &parsed); err != nil {
			return "", NewError(CodeRequestFailed, "decode custom stream line: %v", err)
		}
		if parsed.Error != "" {
			return "", NewError(CodeRequestFailed, "custom endpoint: %s", parsed.Error)
		}
		if parsed.Text != "" {
			b.WriteString(parsed.Text)
			if onDelta != nil {
				onDelta(parsed.Text)
			}
		}
		if parsed.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", NewError(CodeRequestFailed, "read custom stream: %v", err)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", NewError(CodeEmptyResponse, "custom stream produced no text")
	}
	return b.String(), nil
}

// #endregion generate-stream

// #region post
func (p *CustomProvider) post(ctx context.Context, payload customRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError(CodeRequestFailed, "marshal custom request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, NewError(CodeRequestFailed, "create custom request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewError(CodeRequestFailed, "call custom endpoint: %v", err)
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, NewError(CodeRequestFailed, "custom endpoint status %s: %s",
			resp.Status, firstLine(string(data)))
	}
	return resp, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// #endregion post
