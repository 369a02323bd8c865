package scan

import (
	"fmt"
	"strings"

	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
)

const (
	investigatorRole = "You are a business intelligence investigator. You research local service businesses from their web presence and report only verifiable facts."

	plannerRole = "You are a go-to-market planner for local service businesses. You turn research findings into concrete widget configuration."
)

func investigatorPrompt(seedURL, customInstruction string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research the business at %s using web search.\n", seedURL)
	sb.WriteString("Identify the business name, its industry, the city/region it serves, the likely decision maker (owner or manager), and the services it offers.\n")
	sb.WriteString("Prefer the business's own site; use directories and review sites to corroborate.\n")
	if customInstruction != "" {
		fmt.Fprintf(&sb, "Additional instruction from the business owner: %s\n", customInstruction)
	}
	return sb.String()
}

func investigatorSchema() *agent.Schema {
	return agent.Object(map[string]*agent.Schema{
		"name":          agent.String("legal or trading name of the business"),
		"industry":      agent.String("primary industry, e.g. Roofing"),
		"location":      agent.String("city and region served"),
		"decisionMaker": agent.String("owner or manager name if discoverable"),
		"services":      agent.Array(agent.String(""), "services offered"),
	}, "name", "industry")
}

func pricingPrompt(inv investigatorResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Business: %s (%s) in %s.\n", inv.Name, inv.Industry, inv.Location)
	fmt.Fprintf(&sb, "Known services: %s.\n", strings.Join(inv.Services, ", "))
	sb.WriteString("Draft pricing rules this business would plausibly quote from (rates, minimums, waste factors), a short knowledge base the estimator agent can cite, and a core price list.\n")
	sb.WriteString("Use market-typical figures for the industry and region. Keep prices as free-form currency strings.\n")
	return sb.String()
}

func pricingSchema() *agent.Schema {
	return agent.Object(map[string]*agent.Schema{
		"pricingRules":  agent.String("pricing rules text the estimator quotes from"),
		"knowledgeBase": agent.String("background facts about the business"),
		"priceItems": agent.Array(agent.Object(map[string]*agent.Schema{
			"name":  agent.String(""),
			"price": agent.String("free-form currency string"),
		}, "name", "price"), "core price list"),
	}, "pricingRules")
}

func brandingPrompt(inv investigatorResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Business: %s (%s) in %s.\n", inv.Name, inv.Industry, inv.Location)
	sb.WriteString("Propose widget merchandising: a one-line header copy, a brand hex color, three suggested customer questions, and up to four upsell recommendations with a short id (kebab-case), label, description and suggested price.\n")
	return sb.String()
}

func brandingSchema() *agent.Schema {
	return agent.Object(map[string]*agent.Schema{
		"headerCopy":         agent.String("one-line widget headline"),
		"brandColor":         agent.String("hex color like #b91c1c"),
		"suggestedQuestions": agent.Array(agent.String(""), "customer questions"),
		"recommendations": agent.Array(agent.Object(map[string]*agent.Schema{
			"id":             agent.String("kebab-case identifier"),
			"label":          agent.String(""),
			"description":    agent.String(""),
			"suggestedPrice": agent.String(""),
		}, "id", "label"), "draft upsell recommendations"),
	}, "headerCopy")
}
