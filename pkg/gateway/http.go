package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/sparrow/pkg/logger"
)

// DefaultUpstream is the local Ollama HTTP API.
const DefaultUpstream = "http://localhost:11434"

// generateRequest is the Ollama-native /api/generate request.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the non-streaming /api/generate response.
type generateResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Response  string    `json:"response"`
	Done      bool      `json:"done"`
	Error     string    `json:"error,omitempty"`
}

type showRequest struct {
	Model string `json:"model"`
}

// HTTPGateway talks to an Ollama server over HTTP.
type HTTPGateway struct {
	upstream string
	client   *http.Client
	logger   *slog.Logger
}

// HTTPOption configures an HTTPGateway.
type HTTPOption func(*HTTPGateway)

// WithHTTPClient replaces the default client. Timeouts are still enforced
// per call through the request context.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(g *HTTPGateway) {
		g.client = c
	}
}

// WithHTTPLogger sets the logger used for debug output.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(g *HTTPGateway) {
		g.logger = l
	}
}

// NewHTTPGateway returns a gateway for the Ollama server at upstream,
// DefaultUpstream when empty.
func NewHTTPGateway(upstream string, opts ...HTTPOption) *HTTPGateway {
	if upstream == "" {
		upstream = DefaultUpstream
	}
	g := &HTTPGateway{
		upstream: strings.TrimRight(upstream, "/"),
		client:   &http.Client{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate posts a single non-streaming generation request.
func (g *HTTPGateway) Generate(ctx context.Context, model, prompt string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, effectiveTimeout(timeout))
	defer cancel()

	text, err := g.generate(ctx, model, prompt)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		g.logger.Debug("generation timed out", "upstream", g.upstream, "model", model)
		return Timeout()
	}
	if err != nil {
		g.logger.Debug("generation failed", "upstream", g.upstream, "model", model, "error", err)
		return Failure(err)
	}
	return OK(strings.TrimSpace(text))
}

func (g *HTTPGateway) generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := g.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Response, nil
}

// Available asks the server to describe model.
func (g *HTTPGateway) Available(ctx context.Context, model string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	body, err := json.Marshal(showRequest{Model: model})
	if err != nil {
		return false
	}

	resp, err := g.post(ctx, "/api/show", body)
	if err != nil {
		g.logger.Debug("model probe failed", "model", model, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (g *HTTPGateway) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.upstream+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", g.upstream, err)
	}
	return resp, nil
}
