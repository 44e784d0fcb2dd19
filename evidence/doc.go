// Package evidence collects guardrail evidence bundles from real sources:
// specification documents, test reports, and hosted pull/merge requests.
//
// Collectors:
//   - InspectDocument / LoadDocument: Specification evidence from markdown
//   - TestReport: QA evidence from test run summaries
//   - GitHubCollector: Merge evidence from GitHub pull requests
//   - GitLabCollector: Merge evidence from GitLab merge requests
//   - Static: Fixed evidence for tests and local development
//
// Example usage:
//
//	collector, _ := evidence.NewGitHubCollector(token, "acme", "web")
//	merge, err := collector.CollectMerge(ctx, 42)
//	result := autoflow.Evaluate(autoflow.StateMergeReady, autoflow.GuardrailContext{Merge: merge})
package evidence
