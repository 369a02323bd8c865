package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/athompson0066/Roofing-Estimator/pkg/gemini"
)

// ErrMalformedResponse signals that extracted model output did not parse as JSON.
var ErrMalformedResponse = errors.New("malformed model response")

// UpstreamError wraps a failure from the AI backend, annotated with the
// stage or agent that produced it. Quota marks rate-limit exhaustion that
// survived all retries.
type UpstreamError struct {
	Stage string
	Quota bool
	Err   error
}

func (e *UpstreamError) Error() string {
	kind := "upstream error"
	if e.Quota {
		kind = "quota exhausted"
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %v", e.Stage, kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SchemaViolationError is returned when decoded model output is missing
// fields the declared schema marks required.
type SchemaViolationError struct {
	Missing []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: missing required fields: %s", strings.Join(e.Missing, ", "))
}

// IsQuotaError classifies an error as a retryable quota/rate-limit failure.
// It recognizes typed Gemini errors as well as the RESOURCE_EXHAUSTED and
// 429 markers in stringified errors from other transports.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *gemini.Error
	if errors.As(err, &apiErr) {
		return apiErr.IsQuota()
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429")
}
