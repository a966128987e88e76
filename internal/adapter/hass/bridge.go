// Package hass implements the smart-home bridge port against a
// Home-Assistant-compatible REST API.
package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/home"
)

// Bridge talks to the Home Assistant service API. One synchronous POST per
// device action.
type Bridge struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a bridge for the given base URL and long-lived access token.
func New(baseURL, token string) *Bridge {
	return &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// InvokeService calls POST /api/services/{domain}/{service} with the entity
// and parameters. The call is synchronous: the returned Result reflects
// whether the bridge accepted the action.
func (b *Bridge) InvokeService(ctx context.Context, call home.ServiceCall) (home.Result, error) {
	domainPart, service, ok := strings.Cut(call.Service, ".")
	if !ok {
		return home.Result{}, fmt.Errorf("malformed service %q", call.Service)
	}

	payload := map[string]any{"entity_id": call.Entity}
	for k, v := range call.Parameters {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return home.Result{}, fmt.Errorf("marshal service call: %w", err)
	}

	url := fmt.Sprintf("%s/api/services/%s/%s", b.baseURL, domainPart, service)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return home.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return home.Result{}, fmt.Errorf("invoke %s: %w", call.Service, domain.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500:
		return home.Result{}, fmt.Errorf("invoke %s: status %d: %w", call.Service, resp.StatusCode, domain.ErrTransient)
	case resp.StatusCode >= 400:
		return home.Result{OK: false, Detail: strings.TrimSpace(string(detail))}, nil
	default:
		return home.Result{OK: true}, nil
	}
}
