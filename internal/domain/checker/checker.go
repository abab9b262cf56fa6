// Package checker defines the contracts every monitoring check implements.
package checker

import (
	"context"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

// Checker runs one kind of assessment against a single account.
// Check never returns an error. Failures are folded into the result
// with status "error" so a broken account cannot abort a group run.
type Checker interface {
	// Name is the stable check identifier used on the CLI and in
	// run results, e.g. "guardduty".
	Name() string

	// Check runs the assessment for one profile.
	Check(ctx context.Context, profile, accountID string) entity.CheckResult

	// FormatReport renders the standalone plain-text report for a
	// single result. It must be a pure function of the result.
	FormatReport(result entity.CheckResult) string
}

// ConsolidatedChecker additionally contributes a section to the
// consolidated daily monitoring report.
type ConsolidatedChecker interface {
	Checker

	// SectionTitle is the heading used in the consolidated report,
	// e.g. "COST ANOMALIES".
	SectionTitle() string

	// CountIssues extracts the issue count from a successful result.
	CountIssues(result entity.CheckResult) int

	// RenderSection renders the report section from the ordered
	// per-profile results and the list of failed profiles.
	RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string
}
