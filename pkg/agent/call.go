package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/athompson0066/Roofing-Estimator/pkg/gemini"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
)

// sourceTitlePlaceholder is used when a grounding chunk carries no title.
const sourceTitlePlaceholder = "Web source"

// Generator is the slice of the Gemini provider an agent call needs.
type Generator interface {
	GenerateContent(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// Caller issues single schema-constrained requests to the AI backend.
// It never retries; callers wrap each Call in an Executor.
type Caller struct {
	backend Generator
	logger  *slog.Logger
}

// NewCaller creates a caller backed by the given generator.
func NewCaller(backend Generator, logger *slog.Logger) *Caller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Caller{backend: backend, logger: logger}
}

// CallRequest describes one agent call.
type CallRequest struct {
	// Role frames the request as a system instruction ("You are a ...").
	Role string

	// Prompt is the natural-language instruction for this call.
	Prompt string

	// Schema declares the required output shape. When set, the backend is
	// constrained to JSON output and required fields are verified after
	// decoding.
	Schema *Schema

	// UseRetrieval enables web-search grounding for this call only.
	UseRetrieval bool

	// Image optionally attaches inline image data to the prompt.
	Image *gemini.Blob

	Temperature *float64
}

// CallResult carries call metadata alongside the decoded output.
type CallResult struct {
	// Sources holds retrieval citations when grounding was enabled.
	Sources []profile.IntelligenceSource

	// Raw is the extracted JSON text before decoding.
	Raw string
}

// Call sends one request and strict-decodes the response into out.
// Fields the schema marks required must be present in the decoded payload;
// extra fields are ignored. out may be nil to skip decoding.
func (c *Caller) Call(ctx context.Context, req CallRequest, out any) (*CallResult, error) {
	genReq := c.buildRequest(req)

	resp, err := c.backend.GenerateContent(ctx, genReq)
	if err != nil {
		return nil, err
	}

	result := &CallResult{}
	if req.UseRetrieval {
		result.Sources = groundingSources(resp.Grounding())
	}

	result.Raw = ExtractJSON(resp.Text())

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result.Raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if req.Schema != nil {
		var missing []string
		for _, name := range req.Schema.Required {
			raw, ok := fields[name]
			if !ok || string(raw) == "null" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, &SchemaViolationError{Missing: missing}
		}
	}

	if out != nil {
		if err := json.Unmarshal([]byte(result.Raw), out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	return result, nil
}

// buildRequest translates a CallRequest into the Gemini wire format.
func (c *Caller) buildRequest(req CallRequest) *gemini.GenerateRequest {
	parts := []gemini.Part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, gemini.Part{InlineData: req.Image})
	}

	genReq := &gemini.GenerateRequest{
		Contents: []gemini.Content{{Role: "user", Parts: parts}},
	}

	if req.Role != "" {
		genReq.SystemInstruction = gemini.SystemText(req.Role)
	}

	if req.UseRetrieval {
		genReq.Tools = []gemini.Tool{{GoogleSearch: &gemini.GoogleSearch{}}}
	}

	config := &gemini.GenerationConfig{Temperature: req.Temperature}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJSONSchema = req.Schema.Raw()
	}
	genReq.GenerationConfig = config

	return genReq
}

// groundingSources converts grounding chunks into intelligence sources.
func groundingSources(meta *gemini.GroundingMetadata) []profile.IntelligenceSource {
	if meta == nil {
		return nil
	}
	var sources []profile.IntelligenceSource
	for _, chunk := range meta.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = sourceTitlePlaceholder
		}
		sources = append(sources, profile.IntelligenceSource{Title: title, URL: chunk.Web.URI})
	}
	return sources
}
