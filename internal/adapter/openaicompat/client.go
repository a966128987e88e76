// Package openaicompat implements the LLM backend port against any
// OpenAI-compatible chat completions API (the "cloud" tier).
package openaicompat

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

// Backend talks to an OpenAI-compatible /v1/chat/completions endpoint.
type Backend struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a backend registered under name ("cloud" in the default
// routing tables).
func New(name, baseURL, apiKey string) *Backend {
	return &Backend{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Name implements llm.Backend.
func (b *Backend) Name() string { return b.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	Delta        chatMessage `json:"delta"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Generate implements llm.Backend. A content-filter finish or an empty
// completion maps to llm.ErrRefused so the router can fall through to the
// next candidate.
func (b *Backend) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Params.Model,
		Messages:    buildMessages(req.History, req.Prompt),
		Temperature: req.Params.Temperature,
		MaxTokens:   req.Params.MaxTokens,
		Stream:      req.Stream != nil,
	})
	if err != nil {
		return llm.Result{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return llm.Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return llm.Result{}, fmt.Errorf("chat completions: %w", llm.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return llm.Result{}, fmt.Errorf("chat completions: status %d: %w", resp.StatusCode, llm.ErrUnavailable)
	}

	if req.Stream != nil {
		return b.consumeStream(resp, req.Stream)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return llm.Result{}, fmt.Errorf("decode chat response: %w", llm.ErrUnavailable)
	}
	if len(out.Choices) == 0 {
		return llm.Result{}, fmt.Errorf("no choices: %w", llm.ErrRefused)
	}

	choice := out.Choices[0]
	if choice.FinishReason == "content_filter" || strings.TrimSpace(choice.Message.Content) == "" {
		return llm.Result{}, fmt.Errorf("finish reason %q: %w", choice.FinishReason, llm.ErrRefused)
	}
	return llm.Result{Text: choice.Message.Content}, nil
}

// consumeStream reads the SSE stream, forwarding delta chunks as they arrive.
func (b *Backend) consumeStream(resp *http.Response, stream llm.StreamFunc) (llm.Result, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok || data == "[DONE]" {
			continue
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return llm.Result{}, fmt.Errorf("decode stream chunk: %w", llm.ErrUnavailable)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if chunk.Choices[0].FinishReason == "content_filter" {
			return llm.Result{}, fmt.Errorf("content filter: %w", llm.ErrRefused)
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			full.WriteString(delta)
			stream(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return llm.Result{}, fmt.Errorf("read stream: %w", llm.ErrUnavailable)
	}

	if strings.TrimSpace(full.String()) == "" {
		return llm.Result{}, fmt.Errorf("empty stream: %w", llm.ErrRefused)
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
