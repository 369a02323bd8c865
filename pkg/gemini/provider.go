// Package gemini implements a minimal client for the Google Gemini
// generateContent REST API. It covers exactly what the estimation widget
// needs: schema-constrained JSON generation and Google Search grounding.
package gemini

import (
	"context"
	"net/http"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when a request does not name a model.
	DefaultModel = "gemini-2.5-flash"
)

// Provider calls the Gemini generateContent API.
// Construct one per process and pass it to each component; the provider
// holds no mutable state beyond its HTTP client.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Model returns the model this provider targets.
func (p *Provider) Model() string {
	return p.model
}

// GenerateContent sends a non-streaming generateContent request.
func (p *Provider) GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	respBody, err := p.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseResponse(respBody)
}
