// Package profile defines the business profile accumulated by a scan and
// consumed by estimation and voice sessions. The core only produces and
// consumes these values; persistence belongs to the caller.
package profile

// BusinessProfile describes one business's estimation widget configuration.
// It is built incrementally by merging the output of successive agent calls.
type BusinessProfile struct {
	// Identity.
	Name          string   `json:"name,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Location      string   `json:"location,omitempty"`
	DecisionMaker string   `json:"decisionMaker,omitempty"`
	Services      []string `json:"services,omitempty"`

	// Narrative.
	PricingRules      string `json:"pricingRules,omitempty"`
	KnowledgeBase     string `json:"knowledgeBase,omitempty"`
	AgentInstructions string `json:"agentInstructions,omitempty"`

	// Merchandising.
	HeaderCopy         string   `json:"headerCopy,omitempty"`
	BrandColor         string   `json:"brandColor,omitempty"`
	SuggestedQuestions []string `json:"suggestedQuestions,omitempty"`

	// Structured lists.
	PriceItems      []PriceItem          `json:"priceItems,omitempty"`
	Recommendations []RecommendedService `json:"recommendations,omitempty"`

	// Retrieval provenance from grounded scan calls.
	Sources []IntelligenceSource `json:"sources,omitempty"`
}

// PriceItem is one core price-list entry.
type PriceItem struct {
	Name  string `json:"name"`
	Price string `json:"price"` // free-form currency string, e.g. "$450-$550/square"
}

// RecommendedService is a curated upsell that may accompany an estimate.
// Only approved recommendations are ever surfaced to customers.
type RecommendedService struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Description    string `json:"description,omitempty"`
	SuggestedPrice string `json:"suggestedPrice,omitempty"`
	IsApproved     bool   `json:"isApproved"`
}

// IntelligenceSource records a web source consulted during a grounded call.
type IntelligenceSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ApprovedRecommendations returns the recommendations gated on for customer
// exposure. The returned slice is a copy.
func (p *BusinessProfile) ApprovedRecommendations() []RecommendedService {
	var approved []RecommendedService
	for _, rec := range p.Recommendations {
		if rec.IsApproved {
			approved = append(approved, rec)
		}
	}
	return approved
}

// FindRecommendation returns the recommendation with the given ID, or nil.
func (p *BusinessProfile) FindRecommendation(id string) *RecommendedService {
	for i := range p.Recommendations {
		if p.Recommendations[i].ID == id {
			return &p.Recommendations[i]
		}
	}
	return nil
}
