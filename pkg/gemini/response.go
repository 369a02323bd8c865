package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateResponse is the generateContent response body.
type GenerateResponse struct {
	Candidates    []Candidate `json:"candidates"`
	UsageMetadata *Usage      `json:"usageMetadata,omitempty"`
	ModelVersion  string      `json:"modelVersion,omitempty"`
}

// Candidate is a single candidate response.
type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// GroundingMetadata contains search grounding results.
type GroundingMetadata struct {
	WebSearchQueries []string         `json:"webSearchQueries,omitempty"`
	GroundingChunks  []GroundingChunk `json:"groundingChunks,omitempty"`
}

// GroundingChunk is a single grounding source.
type GroundingChunk struct {
	Web *WebChunk `json:"web,omitempty"`
}

// WebChunk identifies a web source used for grounding.
type WebChunk struct {
	URI    string `json:"uri"`
	Title  string `json:"title"`
	Domain string `json:"domain,omitempty"`
}

// Text concatenates the text parts of the first candidate.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// Grounding returns the first candidate's grounding metadata, or nil.
func (r *GenerateResponse) Grounding() *GroundingMetadata {
	if len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].GroundingMetadata
}

// parseResponse parses a generateContent response body.
func parseResponse(body []byte) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}
	return &resp, nil
}
