// Package assistant wraps the hosted Gemini model behind typed gateways for
// data extraction and workout recommendation.
package assistant

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"example.com/fitscribe/internal/observability"
)

// Config holds model client parameters.
type Config struct {
	APIKey string
	Model  string
	// HTTPClient overrides the transport; used by tests.
	HTTPClient *http.Client
}

// Gateway issues single-attempt prompt executions against the model. Any
// upstream error or non-conforming reply surfaces as one error to the
// caller; there are no retries.
type Gateway struct {
	client *genai.Client
	model  string
}

// New constructs a Gateway.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	return &Gateway{client: client, model: cfg.Model}, nil
}

// generate runs one schema-constrained completion and returns the raw JSON text.
func (g *Gateway) generate(ctx context.Context, operation, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	observability.RecordModelCall(operation, err)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty model reply")
	}
	return text, nil
}
