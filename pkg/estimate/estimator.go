package estimate

import (
	"context"
	"log/slog"

	"github.com/athompson0066/Roofing-Estimator/pkg/agent"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
)

// Estimator builds one schema-constrained agent call per estimate request.
type Estimator struct {
	caller *agent.Caller
	exec   *agent.Executor
	logger *slog.Logger
}

// New creates an estimator.
func New(caller *agent.Caller, exec *agent.Executor, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{caller: caller, exec: exec, logger: logger}
}

// Estimate produces a cost estimate for task against the business profile.
// Only approved recommendations are exposed to the model, and any upsell ID
// the model returns that does not resolve to an approved recommendation is
// dropped before the result reaches the customer.
func (e *Estimator) Estimate(ctx context.Context, task Task, p *profile.BusinessProfile) (*Result, error) {
	approved := p.ApprovedRecommendations()

	var result Result
	err := e.exec.Execute(ctx, "estimator", func(ctx context.Context) error {
		_, err := e.caller.Call(ctx, agent.CallRequest{
			Role:   estimatorRole(p),
			Prompt: estimatePrompt(task, p, approved),
			Schema: estimateSchema(),
			Image:  task.Image,
		}, &result)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.SuggestedUpsellIDs = filterUpsellIDs(result.SuggestedUpsellIDs, approved)

	e.logger.Info("estimate produced",
		"business", p.Name,
		"min", result.BaseMinCost,
		"max", result.BaseMaxCost,
		"upsells", len(result.SuggestedUpsellIDs),
	)
	return &result, nil
}

// filterUpsellIDs keeps only IDs present in the approved set, preserving
// order and dropping duplicates.
func filterUpsellIDs(ids []string, approved []profile.RecommendedService) []string {
	if len(ids) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(approved))
	for _, rec := range approved {
		allowed[rec.ID] = true
	}
	var kept []string
	for _, id := range ids {
		if allowed[id] {
			kept = append(kept, id)
			allowed[id] = false
		}
	}
	return kept
}
