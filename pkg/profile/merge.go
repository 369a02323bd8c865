package profile

// Merge copies src's populated fields onto dst, shallow, last writer wins.
// Scalar fields overwrite when non-empty; list fields are replaced wholesale
// when present, never concatenated. Sources are treated like any other list:
// a stage that produced sources replaces the previous set.
func Merge(dst, src *BusinessProfile) {
	if src == nil {
		return
	}

	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Industry != "" {
		dst.Industry = src.Industry
	}
	if src.Location != "" {
		dst.Location = src.Location
	}
	if src.DecisionMaker != "" {
		dst.DecisionMaker = src.DecisionMaker
	}
	if src.Services != nil {
		dst.Services = src.Services
	}

	if src.PricingRules != "" {
		dst.PricingRules = src.PricingRules
	}
	if src.KnowledgeBase != "" {
		dst.KnowledgeBase = src.KnowledgeBase
	}
	if src.AgentInstructions != "" {
		dst.AgentInstructions = src.AgentInstructions
	}

	if src.HeaderCopy != "" {
		dst.HeaderCopy = src.HeaderCopy
	}
	if src.BrandColor != "" {
		dst.BrandColor = src.BrandColor
	}
	if src.SuggestedQuestions != nil {
		dst.SuggestedQuestions = src.SuggestedQuestions
	}

	if src.PriceItems != nil {
		dst.PriceItems = src.PriceItems
	}
	if src.Recommendations != nil {
		dst.Recommendations = src.Recommendations
	}
	if src.Sources != nil {
		dst.Sources = src.Sources
	}
}
