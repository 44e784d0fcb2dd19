package evidence

import (
	"context"

	"github.com/randalmurphal/autoflow"
)

// Static returns fixed evidence bundles. It is meant for tests and local
// development where no tracker, CI, or code host is wired up.
type Static struct {
	Specification *autoflow.SpecificationEvidence
	QA            *autoflow.QAEvidence
	Merge         *autoflow.MergeEvidence
}

// CollectMerge returns the configured merge evidence.
func (s Static) CollectMerge(ctx context.Context, id int) (*autoflow.MergeEvidence, error) {
	return s.Merge, nil
}

// Context assembles the configured bundles into a guardrail context.
func (s Static) Context() autoflow.GuardrailContext {
	return autoflow.GuardrailContext{
		Specification: s.Specification,
		QA:            s.QA,
		Merge:         s.Merge,
	}
}
