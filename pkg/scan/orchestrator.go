// Package scan builds a business profile from a seed URL by sequencing
// specialized agent calls against the AI backend.
package scan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
)

// DefaultCooldown is the pause between the investigator and planner stages.
// It is a throughput throttle to stay under the backend's requests-per-minute
// ceiling, not error recovery.
const DefaultCooldown = 4 * time.Second

// Orchestrator sequences agent calls into one merged business profile.
type Orchestrator struct {
	caller   *agent.Caller
	exec     *agent.Executor
	cooldown time.Duration
	logger   *slog.Logger

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithCooldown overrides the inter-stage cooldown.
func WithCooldown(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.cooldown = d
	}
}

// New creates a scan orchestrator.
func New(caller *agent.Caller, exec *agent.Executor, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		caller:   caller,
		exec:     exec,
		cooldown: DefaultCooldown,
		logger:   logger,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// investigatorResult is the stage-1 output shape.
type investigatorResult struct {
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	Location      string   `json:"location"`
	DecisionMaker string   `json:"decisionMaker"`
	Services      []string `json:"services"`
}

// pricingResult is the stage-2 market/pricing output shape.
type pricingResult struct {
	PricingRules  string              `json:"pricingRules"`
	KnowledgeBase string              `json:"knowledgeBase"`
	PriceItems    []profile.PriceItem `json:"priceItems"`
}

// brandingResult is the stage-2 branding/merchandising output shape.
type brandingResult struct {
	HeaderCopy         string   `json:"headerCopy"`
	BrandColor         string   `json:"brandColor"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
	Recommendations    []struct {
		ID             string `json:"id"`
		Label          string `json:"label"`
		Description    string `json:"description"`
		SuggestedPrice string `json:"suggestedPrice"`
	} `json:"recommendations"`
}

// Scan investigates seedURL and returns a merged business profile.
// Stage 1 (investigator, grounded) runs first; after a fixed cooldown the
// stage-2 planner calls run concurrently, and all must succeed. Any stage
// failure fails the whole scan; no partial profile is returned.
func (o *Orchestrator) Scan(ctx context.Context, seedURL, customInstruction string) (*profile.BusinessProfile, error) {
	started := time.Now()
	o.logger.Info("scan started", "url", seedURL)

	var investigated investigatorResult
	var sources []profile.IntelligenceSource

	err := o.exec.Execute(ctx, "investigator", func(ctx context.Context) error {
		result, err := o.caller.Call(ctx, agent.CallRequest{
			Role:         investigatorRole,
			Prompt:       investigatorPrompt(seedURL, customInstruction),
			Schema:       investigatorSchema(),
			UseRetrieval: true,
		}, &investigated)
		if err != nil {
			return err
		}
		sources = result.Sources
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("investigator complete",
		"business", investigated.Name,
		"industry", investigated.Industry,
		"sources", len(sources),
	)

	if err := o.sleep(ctx, o.cooldown); err != nil {
		return nil, err
	}

	var pricing pricingResult
	var branding brandingResult
	errs := make([]error, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = o.exec.Execute(ctx, "planner/pricing", func(ctx context.Context) error {
			_, err := o.caller.Call(ctx, agent.CallRequest{
				Role:   plannerRole,
				Prompt: pricingPrompt(investigated),
				Schema: pricingSchema(),
			}, &pricing)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = o.exec.Execute(ctx, "planner/branding", func(ctx context.Context) error {
			_, err := o.caller.Call(ctx, agent.CallRequest{
				Role:   plannerRole,
				Prompt: brandingPrompt(investigated),
				Schema: brandingSchema(),
			}, &branding)
			return err
		})
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := o.merge(investigated, sources, pricing, branding)
	o.logger.Info("scan complete", "business", merged.Name, "elapsed", time.Since(started))
	return merged, nil
}

// merge applies stage results in a fixed order so concurrent planner calls
// produce a deterministic profile: investigator first, then pricing, then
// branding. Later stages overwrite same-named fields.
func (o *Orchestrator) merge(inv investigatorResult, sources []profile.IntelligenceSource, pricing pricingResult, branding brandingResult) *profile.BusinessProfile {
	merged := &profile.BusinessProfile{}

	profile.Merge(merged, &profile.BusinessProfile{
		Name:          inv.Name,
		Industry:      inv.Industry,
		Location:      inv.Location,
		DecisionMaker: inv.DecisionMaker,
		Services:      inv.Services,
		Sources:       sources,
	})

	profile.Merge(merged, &profile.BusinessProfile{
		PricingRules:  pricing.PricingRules,
		KnowledgeBase: pricing.KnowledgeBase,
		PriceItems:    pricing.PriceItems,
	})

	var recs []profile.RecommendedService
	for _, rec := range branding.Recommendations {
		// Scan output is a draft; approval happens during curation.
		recs = append(recs, profile.RecommendedService{
			ID:             rec.ID,
			Label:          rec.Label,
			Description:    rec.Description,
			SuggestedPrice: rec.SuggestedPrice,
			IsApproved:     false,
		})
	}
	profile.Merge(merged, &profile.BusinessProfile{
		HeaderCopy:         branding.HeaderCopy,
		BrandColor:         branding.BrandColor,
		SuggestedQuestions: branding.SuggestedQuestions,
		Recommendations:    recs,
	})

	return merged
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
