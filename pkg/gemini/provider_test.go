package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateContent_ParsesTextAndGrounding(t *testing.T) {
	var gotPath string
	var gotBody GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "{\"name\":"}, {"text": "\"Apex Roofing\"}"}]},
				"finishReason": "STOP",
				"groundingMetadata": {
					"groundingChunks": [
						{"web": {"uri": "https://apexroofing.example", "title": "Apex Roofing"}},
						{"web": {"uri": "https://reviews.example/apex", "title": ""}}
					]
				}
			}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20}
		}`))
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL), WithModel("gemini-2.5-flash"))

	req := &GenerateRequest{
		Contents: []Content{UserText("Investigate https://apexroofing.example")},
		Tools:    []Tool{{GoogleSearch: &GoogleSearch{}}},
	}

	resp, err := provider.GenerateContent(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if len(gotBody.Tools) != 1 || gotBody.Tools[0].GoogleSearch == nil {
		t.Errorf("google search tool not sent: %+v", gotBody.Tools)
	}

	if got, want := resp.Text(), `{"name":"Apex Roofing"}`; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	grounding := resp.Grounding()
	if grounding == nil {
		t.Fatal("expected grounding metadata")
	}
	if len(grounding.GroundingChunks) != 2 {
		t.Fatalf("grounding chunks = %d, want 2", len(grounding.GroundingChunks))
	}
	if grounding.GroundingChunks[0].Web.URI != "https://apexroofing.example" {
		t.Errorf("chunk uri = %q", grounding.GroundingChunks[0].Web.URI)
	}
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	provider := New("test-key", WithBaseURL(server.URL))
	_, err := provider.GenerateContent(context.Background(), &GenerateRequest{Contents: []Content{UserText("hi")}})
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestParseError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantType   ErrorType
		wantQuota  bool
	}{
		{
			name:       "resource exhausted",
			statusCode: 429,
			body:       `{"error": {"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`,
			wantType:   ErrRateLimit,
			wantQuota:  true,
		},
		{
			name:       "429 without status string",
			statusCode: 429,
			body:       `{"error": {"code": 429, "message": "slow down", "status": ""}}`,
			wantType:   ErrRateLimit,
			wantQuota:  true,
		},
		{
			name:       "invalid argument",
			statusCode: 400,
			body:       `{"error": {"code": 400, "message": "bad schema", "status": "INVALID_ARGUMENT"}}`,
			wantType:   ErrInvalidRequest,
			wantQuota:  false,
		},
		{
			name:       "unauthenticated",
			statusCode: 401,
			body:       `{"error": {"code": 401, "message": "bad key", "status": "UNAUTHENTICATED"}}`,
			wantType:   ErrAuthentication,
			wantQuota:  false,
		},
		{
			name:       "unavailable",
			statusCode: 503,
			body:       `{"error": {"code": 503, "message": "overloaded", "status": "UNAVAILABLE"}}`,
			wantType:   ErrOverloaded,
			wantQuota:  false,
		},
		{
			name:       "unparseable body",
			statusCode: 500,
			body:       `gateway timeout`,
			wantType:   ErrProvider,
			wantQuota:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := New("test-key", WithBaseURL(server.URL))
			_, err := provider.GenerateContent(context.Background(), &GenerateRequest{Contents: []Content{UserText("hi")}})
			if err == nil {
				t.Fatal("expected error")
			}

			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if apiErr.IsQuota() != tt.wantQuota {
				t.Errorf("IsQuota() = %v, want %v", apiErr.IsQuota(), tt.wantQuota)
			}
		})
	}
}
