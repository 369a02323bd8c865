package estimate

import (
	"fmt"
	"strings"

	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
)

func estimatorRole(p *profile.BusinessProfile) string {
	industry := p.Industry
	if industry == "" {
		industry = "home services"
	}
	return fmt.Sprintf("You are an experienced %s estimator for %s. You quote strictly from the business's pricing rules and never invent services the business does not offer.", industry, p.Name)
}

func estimatePrompt(task Task, p *profile.BusinessProfile, approved []profile.RecommendedService) string {
	var sb strings.Builder

	sb.WriteString("Pricing rules (quote from these verbatim):\n")
	sb.WriteString(p.PricingRules)
	sb.WriteString("\n\n")

	if p.KnowledgeBase != "" {
		sb.WriteString("Business knowledge base:\n")
		sb.WriteString(p.KnowledgeBase)
		sb.WriteString("\n\n")
	}
	if p.AgentInstructions != "" {
		sb.WriteString("Owner instructions:\n")
		sb.WriteString(p.AgentInstructions)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Customer task: %s\n", task.Description)
	fmt.Fprintf(&sb, "Zip code: %s\n", task.Zip)
	fmt.Fprintf(&sb, "Urgency: %s\n", task.Urgency)
	if task.Language != "" {
		fmt.Fprintf(&sb, "Respond in language: %s\n", task.Language)
	}
	if task.Image != nil {
		sb.WriteString("A photo of the job is attached; factor visible damage into the estimate.\n")
	}

	if len(approved) > 0 {
		sb.WriteString("\nApproved add-on services. Suggest only IDs from this list, and only when genuinely relevant:\n")
		for _, rec := range approved {
			fmt.Fprintf(&sb, "- %s: %s. %s (%s)\n", rec.ID, rec.Label, rec.Description, rec.SuggestedPrice)
		}
	}

	return sb.String()
}

func estimateSchema() *agent.Schema {
	return agent.Object(map[string]*agent.Schema{
		"costRange":          agent.String("display range, e.g. \"$6,000 - $8,500\""),
		"baseMinCost":        agent.Number("numeric minimum base cost"),
		"baseMaxCost":        agent.Number("numeric maximum base cost"),
		"laborEstimate":      agent.String("narrative labor estimate"),
		"materialsEstimate":  agent.String("narrative materials estimate"),
		"timeEstimate":       agent.String("narrative time estimate"),
		"taskBreakdown":      agent.Array(agent.String(""), "steps of the job"),
		"recommendations":    agent.Array(agent.String(""), "general advice"),
		"caveats":            agent.Array(agent.String(""), "assumptions and exclusions"),
		"suggestedUpsellIds": agent.Array(agent.String(""), "IDs from the approved add-on list"),
	}, "costRange", "baseMinCost", "baseMaxCost", "laborEstimate", "taskBreakdown")
}
