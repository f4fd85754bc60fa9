package intent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"augur/internal/connectors"
)

// Resolver runs the rule analyzer and the LLM analyzer concurrently and
// unions their connector sets. The time hint comes solely from the rule
// analyzer. The result set is never empty because the rule analyzer always
// contributes at least the semantic_search fallback.
//
// Union order is rule hits first (in vocabulary order), then LLM-only
// additions in classifier order.
type Resolver struct {
	rules *RuleAnalyzer
	model *LLMAnalyzer
}

func NewResolver(rules *RuleAnalyzer, model *LLMAnalyzer) *Resolver {
	if rules == nil {
		rules = NewRuleAnalyzer(nil)
	}
	return &Resolver{rules: rules, model: model}
}

func (r *Resolver) Resolve(ctx context.Context, query string) Result {
	var (
		ruleResult    Result
		modelIDs      []connectors.ID
		modelDegraded bool
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		ruleResult = r.rules.Analyze(query)
		return nil
	})
	group.Go(func() error {
		if r.model != nil {
			modelIDs, modelDegraded = r.model.Analyze(groupCtx, query)
		}
		return nil
	})
	// Both analyzers degrade internally, neither reports an error.
	_ = group.Wait()

	seen := map[connectors.ID]struct{}{}
	merged := make([]connectors.ID, 0, len(ruleResult.Connectors)+len(modelIDs))
	for _, id := range ruleResult.Connectors {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range modelIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}

	return Result{
		Connectors:         merged,
		TimeHint:           ruleResult.TimeHint,
		ClassifierDegraded: modelDegraded,
	}
}
