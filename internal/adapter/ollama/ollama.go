// Package ollama implements the LLM backend port against a local Ollama
// server's /api/chat endpoint.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/port/llm"
)

// Backend talks to an Ollama server.
type Backend struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an Ollama backend. Call timeouts come from the request
// context, not the client.
func New(baseURL string) *Backend {
	return &Backend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Name implements llm.Backend.
func (b *Backend) Name() string { return "ollama" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Generate implements llm.Backend. When req.Stream is set the response is
// consumed line by line and chunks are forwarded as they arrive.
func (b *Backend) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	body, err := json.Marshal(chatRequest{
		Model:    req.Params.Model,
		Messages: buildMessages(req.History, req.Prompt),
		Stream:   req.Stream != nil,
		Options: map[string]any{
			"temperature": req.Params.Temperature,
			"num_predict": req.Params.MaxTokens,
		},
	})
	if err != nil {
		return llm.Result{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return llm.Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return llm.Result{}, fmt.Errorf("ollama chat: %w", llm.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return llm.Result{}, fmt.Errorf("ollama chat: status %d: %w", resp.StatusCode, llm.ErrUnavailable)
	}

	if req.Stream != nil {
		return b.consumeStream(resp, req.Stream)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return llm.Result{}, fmt.Errorf("decode chat response: %w", llm.ErrUnavailable)
	}
	return llm.Result{Text: out.Message.Content}, nil
}

// consumeStream reads the NDJSON stream, forwarding each chunk and
// accumulating the full text.
func (b *Backend) consumeStream(resp *http.Response, stream llm.StreamFunc) (llm.Result, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var chunk chatResponse
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			return llm.Result{}, fmt.Errorf("decode stream chunk: %w", llm.ErrUnavailable)
		}
		if chunk.Message.Content != "" {
			full.WriteString(chunk.Message.Content)
			stream(chunk.Message.Content)
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return llm.Result{}, fmt.Errorf("read stream: %w", llm.ErrUnavailable)
	}
	return llm.Result{Text: full.String()}, nil
}

func buildMessages(history []session.Message, prompt string) []chatMessage {
	msgs := make([]chatMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, chatMessage{Role: string(m.Role), Content: m.Text})
	}
	return append(msgs, chatMessage{Role: "user", Content: prompt})
}
