package evidence

import "github.com/randalmurphal/autoflow"

// TestReport summarizes one test run. It is the caller's bridge from a CI
// system or test harness to QA evidence.
type TestReport struct {
	// Total is the number of tests that ran.
	Total int `json:"total"`

	// Failed is the number of failing tests.
	Failed int `json:"failed"`

	// Skipped is the number of skipped tests. Skips do not fail a run.
	Skipped int `json:"skipped"`

	// CoveragePercent is the measured statement coverage, when available.
	CoveragePercent *float64 `json:"coveragePercent,omitempty"`
}

// Evidence converts the report to a QA evidence bundle. A report with no
// tests at all was not executed; a run passes when nothing failed.
func (r TestReport) Evidence() *autoflow.QAEvidence {
	executed := r.Total > 0
	return &autoflow.QAEvidence{
		Executed:        executed,
		Passed:          executed && r.Failed == 0,
		CoveragePercent: r.CoveragePercent,
	}
}
