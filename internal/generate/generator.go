// Package generate provides the image-generation boundary: given a captured
// photo, a garment reference image and a scene prompt, a Generator
// asynchronously produces one rendered look. Calls are single-attempt; retry
// policy is the caller's concern (in practice: a fresh capture).
package generate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request carries the inputs for one look.
type Request struct {
	// Photo is the captured reference photo, JPEG-encoded.
	Photo []byte
	// Garment is the garment reference image, as fetched from the catalog URL.
	Garment []byte
	// Prompt is the textual scene/style description.
	Prompt string
}

// Generator renders one look per call. Implementations must be safe for
// concurrent calls: the fitting room issues one call per scene at once.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// fetchLimit caps how large a garment reference image may be.
const fetchLimit = 16 << 20

// FetchImage downloads a garment reference image. The bytes are opaque to
// the core; they are handed to the Generator as-is.
func FetchImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build garment request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch garment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch garment: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, fetchLimit))
	if err != nil {
		return nil, fmt.Errorf("read garment: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch garment: empty body")
	}
	return data, nil
}

// WithTimeout wraps a Generator so every call carries a deadline.
func WithTimeout(g Generator, d time.Duration) Generator {
	return &timeoutGenerator{inner: g, timeout: d}
}

type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

func (g *timeoutGenerator) Generate(ctx context.Context, req Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.inner.Generate(ctx, req)
}
