// Package estimate turns a customer's task description into a structured
// cost estimate using the business profile's pricing rules.
package estimate

import "github.com/athompson0066/Roofing-Estimator/pkg/gemini"

// Urgency is how soon the customer needs the work done.
type Urgency string

const (
	UrgencySameDay     Urgency = "same_day"
	UrgencyNextDay     Urgency = "next_day"
	UrgencyWithin3Days Urgency = "within_3_days"
	UrgencyFlexible    Urgency = "flexible"
)

// Valid reports whether the urgency is one of the known values.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencySameDay, UrgencyNextDay, UrgencyWithin3Days, UrgencyFlexible:
		return true
	}
	return false
}

// Task is a customer's job description. Immutable once submitted.
type Task struct {
	Description string       `json:"description"`
	Urgency     Urgency      `json:"urgency"`
	Zip         string       `json:"zip"`
	Image       *gemini.Blob `json:"image,omitempty"`
	Language    string       `json:"language,omitempty"` // BCP 47 tag, e.g. "es-MX"
}

// Result is the structured estimate produced by one agent call.
// Numeric sanity (min <= max) is a property of the backend's output, not
// something this package corrects; out-of-range results pass through.
type Result struct {
	CostRange          string   `json:"costRange"`
	BaseMinCost        float64  `json:"baseMinCost"`
	BaseMaxCost        float64  `json:"baseMaxCost"`
	LaborEstimate      string   `json:"laborEstimate"`
	MaterialsEstimate  string   `json:"materialsEstimate"`
	TimeEstimate       string   `json:"timeEstimate"`
	TaskBreakdown      []string `json:"taskBreakdown"`
	Recommendations    []string `json:"recommendations"`
	Caveats            []string `json:"caveats"`
	SuggestedUpsellIDs []string `json:"suggestedUpsellIds"`
}
