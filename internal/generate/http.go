package generate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPGenerator calls a rendering service over HTTP. The request and
// response bodies are JSON with base64-encoded image payloads.
type HTTPGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPGenerator creates a generator posting to the given endpoint. A nil
// client falls back to http.DefaultClient; deadlines come from the caller's
// context.
func NewHTTPGenerator(endpoint, apiKey string, client *http.Client) *HTTPGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGenerator{endpoint: endpoint, apiKey: apiKey, client: client}
}

type renderRequest struct {
	Prompt  string `json:"prompt"`
	Photo   string `json:"photo"`
	Garment string `json:"garment"`
}

type renderResponse struct {
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// Generate posts one render request and returns the decoded result image.
func (g *HTTPGenerator) Generate(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(renderRequest{
		Prompt:  req.Prompt,
		Photo:   base64.StdEncoding.EncodeToString(req.Photo),
		Garment: base64.StdEncoding.EncodeToString(req.Garment),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, fetchLimit))
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render call: status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var rendered renderResponse
	if err := json.Unmarshal(respBody, &rendered); err != nil {
		return nil, fmt.Errorf("parse render response: %w", err)
	}
	if rendered.Error != "" {
		return nil, fmt.Errorf("render failed: %s", rendered.Error)
	}
	if rendered.Image == "" {
		return nil, fmt.Errorf("render response has no image")
	}

	image, err := base64.StdEncoding.DecodeString(rendered.Image)
	if err != nil {
		return nil, fmt.Errorf("decode rendered image: %w", err)
	}
	return image, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
