package task

import (
	"github.com/randalmurphal/llmkit/model"
)

// Kind represents the kind of work an agent run performs.
// This determines which model tier is appropriate.
type Kind string

const (
	// Specification and planning - need reasoning
	Specify Kind = "specify"
	Plan    Kind = "plan"
	Triage  Kind = "triage"

	// Standard execution - default tier
	Implement Kind = "implement"
	Verify    Kind = "verify"
	Repair    Kind = "repair"

	// Fast tasks - can use smaller models
	Classify  Kind = "classify"
	Extract   Kind = "extract"
	Summarize Kind = "summarize"
)

// DefaultModelMap maps task kinds to default models.
var DefaultModelMap = map[Kind]model.ModelName{
	Specify:   model.ModelOpus,
	Plan:      model.ModelOpus,
	Triage:    model.ModelOpus,
	Implement: model.ModelSonnet,
	Verify:    model.ModelSonnet,
	Repair:    model.ModelSonnet,
	Classify:  model.ModelHaiku,
	Extract:   model.ModelHaiku,
	Summarize: model.ModelHaiku,
}

// TierForKind returns the appropriate tier for a task kind.
func TierForKind(k Kind) model.Tier {
	switch k {
	case Specify, Plan, Triage:
		return model.TierThinking
	case Classify, Extract, Summarize:
		return model.TierFast
	default:
		return model.TierDefault
	}
}

// NewSelector creates a model selector configured for orchestration tasks.
// It uses the standard kind-to-tier mapping.
func NewSelector(opts ...model.SelectorOption) *model.Selector {
	// Prepend the tier function so callers can still override
	allOpts := append([]model.SelectorOption{
		model.WithTierFunc(func(task any) model.Tier {
			if k, ok := task.(Kind); ok {
				return TierForKind(k)
			}
			return model.TierDefault
		}),
	}, opts...)

	return model.NewSelector(allOpts...)
}

// SelectModel selects the appropriate model for a task kind.
// Uses the default model map unless the kind is unknown.
func SelectModel(k Kind) model.ModelName {
	if m, ok := DefaultModelMap[k]; ok {
		return m
	}
	switch TierForKind(k) {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}
