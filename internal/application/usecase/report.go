package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/checker"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

const reportWidth = 70

// ReportParams carries the context shared by both report layouts.
type ReportParams struct {
	GroupName string
	Region    string
	Profiles  int
	Now       time.Time
}

// runByName finds the run of a named check, nil when the check did not run.
func runByName(runs []CheckRun, name string) *CheckRun {
	for i := range runs {
		if runs[i].Checker.Name() == name {
			return &runs[i]
		}
	}
	return nil
}

// issueTotal sums CountIssues over a consolidated run.
func issueTotal(run *CheckRun) int {
	if run == nil {
		return 0
	}
	cc, ok := run.Checker.(checker.ConsolidatedChecker)
	if !ok {
		return 0
	}
	total := 0
	for _, pr := range run.Results {
		total += cc.CountIssues(pr.Result)
	}
	return total
}

// affectedProfiles lists the profiles whose result carries issues.
func affectedProfiles(run *CheckRun) []string {
	if run == nil {
		return nil
	}
	cc, ok := run.Checker.(checker.ConsolidatedChecker)
	if !ok {
		return nil
	}
	var out []string
	for _, pr := range run.Results {
		if cc.CountIssues(pr.Result) > 0 {
			out = append(out, pr.Profile)
		}
	}
	return out
}

// allErrors flattens the per-check error lists preserving run order.
func allErrors(runs []CheckRun) []entity.ProfileError {
	var out []entity.ProfileError
	for _, run := range runs {
		out = append(out, run.Errors...)
	}
	return out
}

// cleanProfiles returns profiles with neither errors nor issues across
// every run.
func cleanProfiles(runs []CheckRun) []string {
	dirty := make(map[string]bool)
	var order []string
	seen := make(map[string]bool)

	for _, run := range runs {
		cc, consolidated := run.Checker.(checker.ConsolidatedChecker)
		for _, pr := range run.Results {
			if !seen[pr.Profile] {
				seen[pr.Profile] = true
				order = append(order, pr.Profile)
			}
			if pr.Result != nil && pr.Result.CheckStatus() == entity.StatusError {
				dirty[pr.Profile] = true
			}
			if consolidated && cc.CountIssues(pr.Result) > 0 {
				dirty[pr.Profile] = true
			}
		}
	}

	var clean []string
	for _, p := range order {
		if !dirty[p] {
			clean = append(clean, p)
		}
	}
	return clean
}

// BuildDetailedReport renders the full copy-paste daily monitoring
// report including account coverage, recommendations and, for the
// Aryanoble group, the ready-to-send WhatsApp digests.
func BuildDetailedReport(params ReportParams, runs []CheckRun) string {
	now := params.Now
	lines := []string{strings.Repeat("=", reportWidth)}
	if params.GroupName != "" {
		lines = append(lines, fmt.Sprintf("DAILY MONITORING REPORT - %s GROUP", strings.ToUpper(params.GroupName)))
	} else {
		lines = append(lines, "DAILY MONITORING REPORT")
	}
	lines = append(lines,
		strings.Repeat("=", reportWidth),
		fmt.Sprintf("Date: %s", now.Format("January 2, 2006")),
		fmt.Sprintf("Time: %s", now.In(entity.WIB).Format("15:04")+" WIB"),
		fmt.Sprintf("Scope: %d AWS Accounts | Region: %s", params.Profiles, params.Region),
		"",
	)

	checkErrors := allErrors(runs)
	totalAnomalies := issueTotal(runByName(runs, "cost"))
	totalFindings := issueTotal(runByName(runs, "guardduty"))
	totalAlarms := issueTotal(runByName(runs, "cloudwatch"))

	lines = append(lines,
		strings.Repeat("-", reportWidth),
		"EXECUTIVE SUMMARY",
		strings.Repeat("-", reportWidth),
	)
	summary := fmt.Sprintf("Security assessment completed across %d AWS accounts.", params.Profiles)
	if len(checkErrors) > 0 {
		summary += fmt.Sprintf(" %d check error(s) encountered; see CHECK ERRORS section.", len(checkErrors))
	}
	if totalAnomalies == 0 && totalFindings == 0 && totalAlarms == 0 && len(checkErrors) == 0 {
		summary += " No new security incidents detected. All systems operating normally."
	} else {
		var issues []string
		if len(checkErrors) > 0 {
			issues = append(issues, fmt.Sprintf("%d check errors", len(checkErrors)))
		}
		if totalAnomalies > 0 {
			issues = append(issues, fmt.Sprintf("%d cost anomalies", totalAnomalies))
		}
		if totalFindings > 0 {
			issues = append(issues, fmt.Sprintf("%d new security findings", totalFindings))
		}
		if totalAlarms > 0 {
			issues = append(issues, fmt.Sprintf("%d infrastructure alerts", totalAlarms))
		}
		summary += fmt.Sprintf(" %s detected requiring attention.", strings.Join(issues, " and "))
	}
	lines = append(lines, summary, "")

	lines = append(lines,
		strings.Repeat("-", reportWidth),
		"ASSESSMENT RESULTS",
		strings.Repeat("-", reportWidth),
	)
	for _, run := range runs {
		if cc, ok := run.Checker.(checker.ConsolidatedChecker); ok {
			lines = append(lines, cc.RenderSection(run.Results, run.Errors)...)
		}
	}

	clean := cleanProfiles(runs)
	lines = append(lines,
		"",
		strings.Repeat("-", reportWidth),
		"ACCOUNT COVERAGE",
		strings.Repeat("-", reportWidth),
		fmt.Sprintf("Total Assessed: %d accounts", params.Profiles),
		fmt.Sprintf("Clean Accounts: %d", len(clean)),
		fmt.Sprintf("Accounts with Issues: %d", params.Profiles-len(clean)),
	)
	if len(checkErrors) > 0 {
		lines = append(lines, fmt.Sprintf("Check Errors: %d (see below)", len(checkErrors)))
		lines = append(lines, "", "CHECK ERRORS:")
		for _, e := range checkErrors {
			lines = append(lines, fmt.Sprintf("  - %s | %s: %s", e.Profile, e.CheckName, e.Message))
		}
	}

	lines = append(lines,
		"",
		strings.Repeat("-", reportWidth),
		"RECOMMENDATIONS",
		strings.Repeat("-", reportWidth),
	)
	rec := 1
	if len(checkErrors) > 0 {
		lines = append(lines,
			fmt.Sprintf("%d. INVESTIGATE CHECK ERRORS: Resolve authentication/permission/session issues", rec),
			"   Affected:")
		for i, e := range checkErrors {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("   - %s (%s): %s", e.Profile, e.CheckName, e.Message))
		}
		if len(checkErrors) > 5 {
			lines = append(lines, fmt.Sprintf("   ... and %d more", len(checkErrors)-5))
		}
		rec++
	}
	if totalAnomalies > 0 {
		lines = append(lines,
			fmt.Sprintf("%d. COST REVIEW: Investigate cost anomalies", rec),
			fmt.Sprintf("   Affected accounts: %s", strings.Join(affectedProfiles(runByName(runs, "cost")), ", ")))
		rec++
	}
	if totalFindings > 0 {
		lines = append(lines,
			fmt.Sprintf("%d. IMMEDIATE ACTION REQUIRED: Investigate GuardDuty findings", rec),
			fmt.Sprintf("   Affected accounts: %s", strings.Join(affectedProfiles(runByName(runs, "guardduty")), ", ")))
		rec++
	}
	if totalAlarms > 0 {
		lines = append(lines,
			fmt.Sprintf("%d. INFRASTRUCTURE REVIEW: Address CloudWatch alarms", rec),
			fmt.Sprintf("   Affected accounts: %s", strings.Join(affectedProfiles(runByName(runs, "cloudwatch")), ", ")))
		rec++
	}
	if rec == 1 {
		lines = append(lines, "1. ROUTINE MONITORING: Continue assessment schedule")
	}

	if strings.EqualFold(params.GroupName, "Aryanoble") {
		lines = append(lines,
			"",
			strings.Repeat("=", reportWidth),
			"WHATSAPP MESSAGE (READY TO SEND)",
			strings.Repeat("=", reportWidth),
			"--backup",
		)
		var backupResults, rdsResults []entity.ProfileResult
		if run := runByName(runs, "backup"); run != nil {
			backupResults = run.Results
		}
		if run := runByName(runs, "daily-arbel"); run != nil {
			rdsResults = run.Results
		}
		lines = append(lines, BuildBackupDigest(now, backupResults), "", "--rds")
		lines = append(lines, BuildRDSClientDigest(now, rdsResults))
	}

	lines = append(lines,
		"",
		strings.Repeat("=", reportWidth),
		"END OF REPORT",
		strings.Repeat("=", reportWidth),
	)
	return strings.Join(lines, "\n")
}

// BuildSimpleReport renders the lighter layout without backup and RDS
// sections, used by the four-check light mode.
func BuildSimpleReport(params ReportParams, runs []CheckRun) string {
	checkErrors := allErrors(runs)
	totalAnomalies := issueTotal(runByName(runs, "cost"))
	totalFindings := issueTotal(runByName(runs, "guardduty"))
	totalAlarms := issueTotal(runByName(runs, "cloudwatch"))

	lines := []string{
		"DAILY MONITORING REPORT",
		fmt.Sprintf("Date: %s", params.Now.Format("January 2, 2006")),
		fmt.Sprintf("Scope: %d AWS Accounts | Region: %s", params.Profiles, params.Region),
		"",
		"EXECUTIVE SUMMARY",
	}

	var bits []string
	if totalFindings > 0 {
		bits = append(bits, fmt.Sprintf("%d new security findings", totalFindings))
	}
	if totalAlarms > 0 {
		bits = append(bits, fmt.Sprintf("%d infrastructure alerts", totalAlarms))
	}
	if totalAnomalies > 0 {
		bits = append(bits, fmt.Sprintf("%d cost anomalies", totalAnomalies))
	}
	switch {
	case len(bits) > 0:
		lines = append(lines, fmt.Sprintf(
			"Security assessment completed across %d AWS accounts. %s detected requiring attention.",
			params.Profiles, strings.Join(bits, " and ")))
	case len(checkErrors) > 0:
		lines = append(lines, fmt.Sprintf(
			"Security assessment completed across %d AWS accounts. %d check error(s) encountered; see CHECK ERRORS.",
			params.Profiles, len(checkErrors)))
	default:
		lines = append(lines, fmt.Sprintf(
			"Security assessment completed across %d AWS accounts. No new security incidents detected.",
			params.Profiles))
	}

	lines = append(lines, "", "ASSESSMENT RESULTS")
	for _, run := range runs {
		if cc, ok := run.Checker.(checker.ConsolidatedChecker); ok {
			lines = append(lines, cc.RenderSection(run.Results, run.Errors)...)
		}
	}

	lines = append(lines, "", "ACCOUNT COVERAGE",
		fmt.Sprintf("Total Assessed: %d accounts", params.Profiles))
	if len(checkErrors) > 0 {
		lines = append(lines, "", "CHECK ERRORS:")
		for _, e := range checkErrors {
			lines = append(lines, fmt.Sprintf("  - %s | %s: %s", e.Profile, e.CheckName, e.Message))
		}
	}
	return strings.Join(lines, "\n")
}
