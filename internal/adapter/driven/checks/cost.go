package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type costExplorerAPI interface {
	GetAnomalyMonitors(ctx context.Context, params *costexplorer.GetAnomalyMonitorsInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetAnomalyMonitorsOutput, error)
	GetAnomalies(ctx context.Context, params *costexplorer.GetAnomaliesInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetAnomaliesOutput, error)
}

// CostAnomalyChecker reports Cost Explorer anomalies from the last two days.
type CostAnomalyChecker struct {
	api    func(ctx context.Context, profile string) (costExplorerAPI, error)
	now    func() time.Time
	logger zerolog.Logger
}

func NewCostAnomalyChecker(f *awsclient.Factory, logger zerolog.Logger) *CostAnomalyChecker {
	return &CostAnomalyChecker{
		api: func(ctx context.Context, profile string) (costExplorerAPI, error) {
			return f.CostExplorer(ctx, profile)
		},
		now:    time.Now,
		logger: logger,
	}
}

func (c *CostAnomalyChecker) Name() string         { return "cost" }
func (c *CostAnomalyChecker) SectionTitle() string { return "COST ANOMALIES" }

func (c *CostAnomalyChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.api(ctx, profile)
	if err != nil {
		return entity.CostAnomalyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	monitorsOut, err := client.GetAnomalyMonitors(ctx, &costexplorer.GetAnomalyMonitorsInput{})
	if err != nil {
		return entity.CostAnomalyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	today := c.now().Format("2006-01-02")
	yesterday := c.now().AddDate(0, 0, -1).Format("2006-01-02")

	monitors := make([]entity.CostMonitor, 0, len(monitorsOut.AnomalyMonitors))
	var anomalies []entity.CostAnomaly

	for _, m := range monitorsOut.AnomalyMonitors {
		monitors = append(monitors, entity.CostMonitor{
			Name:            aws.ToString(m.MonitorName),
			Type:            string(m.MonitorType),
			Dimension:       string(m.MonitorDimension),
			ServicesTracked: m.DimensionalValueCount,
			LastEvaluated:   aws.ToString(m.LastEvaluatedDate),
		})

		out, err := client.GetAnomalies(ctx, &costexplorer.GetAnomaliesInput{
			MonitorArn: m.MonitorArn,
			DateInterval: &cetypes.AnomalyDateInterval{
				StartDate: aws.String(yesterday),
				EndDate:   aws.String(today),
			},
			MaxResults: aws.Int32(100),
		})
		if err != nil {
			if awsclient.Classify(err, profile).IsCredentialError {
				return entity.CostAnomalyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
			}
			c.logger.Warn().Err(err).Str("monitor", aws.ToString(m.MonitorName)).Msg("failed to get anomalies for monitor")
			continue
		}

		for _, a := range out.Anomalies {
			anomalies = append(anomalies, convertAnomaly(a, aws.ToString(m.MonitorName)))
		}
	}

	todayCount, yesterdayCount := 0, 0
	for _, a := range anomalies {
		switch a.StartDate {
		case today:
			todayCount++
		case yesterday:
			yesterdayCount++
		}
	}

	return entity.CostAnomalyResult{
		ResultMeta:            entity.ResultMeta{Status: entity.StatusSuccess},
		TotalMonitors:         len(monitors),
		TotalAnomalies:        len(anomalies),
		TodayAnomalyCount:     todayCount,
		YesterdayAnomalyCount: yesterdayCount,
		Monitors:              monitors,
		Anomalies:             anomalies,
	}
}

func convertAnomaly(a cetypes.Anomaly, monitorName string) entity.CostAnomaly {
	out := entity.CostAnomaly{
		MonitorName: monitorName,
		AnomalyID:   aws.ToString(a.AnomalyId),
		StartDate:   aws.ToString(a.AnomalyStartDate),
		EndDate:     aws.ToString(a.AnomalyEndDate),
	}
	if a.AnomalyScore != nil {
		out.Score = a.AnomalyScore.CurrentScore
	}
	if a.Impact != nil {
		out.Impact = a.Impact.TotalImpact
		out.ActualSpend = aws.ToFloat64(a.Impact.TotalActualSpend)
		out.ExpectedSpend = aws.ToFloat64(a.Impact.TotalExpectedSpend)
		out.ImpactPercent = aws.ToFloat64(a.Impact.TotalImpactPercentage)
	}
	for _, rc := range a.RootCauses {
		cause := entity.CostAnomalyRootCause{
			Service:   aws.ToString(rc.Service),
			Region:    aws.ToString(rc.Region),
			UsageType: aws.ToString(rc.UsageType),
		}
		if rc.LinkedAccountName != nil {
			cause.LinkedAccount = aws.ToString(rc.LinkedAccountName)
		} else {
			cause.LinkedAccount = aws.ToString(rc.LinkedAccount)
		}
		if rc.Impact != nil {
			cause.Contribution = rc.Impact.Contribution
		}
		out.RootCauses = append(out.RootCauses, cause)
	}
	return out
}

func (c *CostAnomalyChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.CostAnomalyResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}

	now := c.now().In(entity.WIB)
	lines := []string{
		"AWS COST ANOMALY DETECTION REPORT",
		fmt.Sprintf("Date: %s | Time: %s", now.Format("January 02, 2006"), now.Format("15:04")+" WIB"),
		"Period: Last 2 days (today and yesterday)",
		"",
		bar(80),
		"",
		"EXECUTIVE SUMMARY",
		fmt.Sprintf("Cost monitoring completed. %d monitor(s) active.", r.TotalMonitors),
	}
	if r.TotalAnomalies == 0 {
		lines = append(lines, "No cost anomalies detected in the last 2 days.")
	} else {
		lines = append(lines, fmt.Sprintf("%d cost anomalies detected requiring review.", r.TotalAnomalies))
	}
	lines = append(lines,
		fmt.Sprintf("Today anomalies: %d", r.TodayAnomalyCount),
		fmt.Sprintf("Yesterday anomalies: %d", r.YesterdayAnomalyCount),
		"",
		bar(80),
		"",
		"ASSESSMENT RESULTS",
		"",
		"COST ANOMALY MONITORS",
	)

	if len(r.Monitors) == 0 {
		lines = append(lines, "Status: No monitors configured", "", bar(80))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Status: %d active monitor(s)", r.TotalMonitors), "", "Active Monitors:")
	for _, m := range r.Monitors {
		lines = append(lines,
			"",
			fmt.Sprintf("* %s", m.Name),
			fmt.Sprintf("  Type: %s", m.Type),
			fmt.Sprintf("  Dimension: %s", orNA(m.Dimension)),
			fmt.Sprintf("  Services Tracked: %d", m.ServicesTracked),
			fmt.Sprintf("  Last Evaluated: %s", orNA(m.LastEvaluated)),
		)
	}

	lines = append(lines, "", "DETECTED ANOMALIES")
	if r.TotalAnomalies == 0 {
		lines = append(lines, "Status: CLEAR - No anomalies detected in the last 2 days")
	} else {
		total := 0.0
		for _, a := range r.Anomalies {
			total += a.Impact
		}
		lines = append(lines, fmt.Sprintf("Status: %d anomalies detected (Total Impact: $%.2f)", r.TotalAnomalies, total), "", "Anomaly Details:")

		sorted := make([]entity.CostAnomaly, len(r.Anomalies))
		copy(sorted, r.Anomalies)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].StartDate != sorted[j].StartDate {
				return sorted[i].StartDate > sorted[j].StartDate
			}
			return sorted[i].EndDate > sorted[j].EndDate
		})

		for idx, a := range sorted {
			lines = append(lines,
				"",
				fmt.Sprintf("* Anomaly #%d: %s", idx+1, a.MonitorName),
				"  "+bar(76),
				fmt.Sprintf("  Anomaly ID: %s", orNA(a.AnomalyID)),
				fmt.Sprintf("  Date Range: %s to %s", orNA(a.StartDate), orNA(a.EndDate)),
				fmt.Sprintf("  Anomaly Score: %.1f/100", a.Score),
				"",
				"  FINANCIAL IMPACT:",
				fmt.Sprintf("    Total Impact: $%.2f", a.Impact),
				fmt.Sprintf("    Total Actual Spend: $%.2f", a.ActualSpend),
				fmt.Sprintf("    Total Expected Spend: $%.2f", a.ExpectedSpend),
				fmt.Sprintf("    Impact Percentage: %.2f%%", a.ImpactPercent),
			)
			if len(a.RootCauses) > 0 {
				lines = append(lines, "", fmt.Sprintf("  ROOT CAUSES (%d identified):", len(a.RootCauses)))
				for i, rc := range a.RootCauses {
					lines = append(lines, fmt.Sprintf("    %d. Service: %s (Impact: $%.2f)", i+1, orNA(rc.Service), rc.Contribution))
					lines = append(lines, fmt.Sprintf("       Region: %s", orNA(rc.Region)))
					if rc.UsageType != "" {
						lines = append(lines, fmt.Sprintf("       Usage Type: %s", rc.UsageType))
					}
					if rc.LinkedAccount != "" {
						lines = append(lines, fmt.Sprintf("       Linked Account: %s", rc.LinkedAccount))
					}
				}
			}
		}
	}

	lines = append(lines, "", bar(80), "", "RECOMMENDATIONS")
	rec := 1
	if r.TotalAnomalies > 0 {
		highImpact := 0
		for _, a := range r.Anomalies {
			if a.Impact > 50 {
				highImpact++
			}
		}
		if highImpact > 0 {
			lines = append(lines,
				fmt.Sprintf("%d. IMMEDIATE REVIEW: Investigate high-impact anomalies", rec),
				fmt.Sprintf("   %d anomaly(ies) with impact > $50", highImpact),
			)
			rec++
		}
		lines = append(lines,
			fmt.Sprintf("%d. COST ANALYSIS: Review root causes and optimize spending", rec),
			"   Check Cost Explorer for detailed breakdown",
		)
	} else {
		lines = append(lines, fmt.Sprintf("%d. ROUTINE MONITORING: Continue cost anomaly monitoring", rec))
	}

	lines = append(lines, "", bar(80))
	return strings.Join(lines, "\n")
}

func (c *CostAnomalyChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(entity.CostAnomalyResult)
	if !ok || r.Status == entity.StatusError {
		return 0
	}
	return r.TotalAnomalies
}

func (c *CostAnomalyChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	lines := []string{"", "COST ANOMALIES"}

	if len(errors) > 0 {
		lines = append(lines, "Status: ERROR - Cost Anomaly check failed")
		return renderErrors(lines, errors)
	}

	total := 0
	for _, pr := range results {
		total += c.CountIssues(pr.Result)
	}
	if total == 0 {
		lines = append(lines, "Status: CLEAR - No cost anomalies detected")
		return lines
	}

	lines = append(lines, fmt.Sprintf("Status: ATTENTION REQUIRED - %d anomalies detected", total), "", "Detected Anomalies:")
	for _, pr := range results {
		r, ok := pr.Result.(entity.CostAnomalyResult)
		if !ok || r.TotalAnomalies == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  * %s (%s): %d anomalies", pr.Profile, pr.AccountID, r.TotalAnomalies))
		for i, a := range r.Anomalies {
			if i == 3 {
				break
			}
			lines = append(lines,
				fmt.Sprintf("    - Monitor: %s", orNA(a.MonitorName)),
				fmt.Sprintf("    - Impact: $%.2f", a.Impact),
				fmt.Sprintf("    - Date: %s to %s", orNA(a.StartDate), orNA(a.EndDate)),
			)
			if len(a.RootCauses) > 0 {
				services := uniqueServices(a.RootCauses)
				shown := services
				if len(shown) > 3 {
					shown = shown[:3]
				}
				lines = append(lines, fmt.Sprintf("    - Affected Services: %s", strings.Join(shown, ", ")))
				if len(services) > 3 {
					lines = append(lines, fmt.Sprintf("      ... and %d more services", len(services)-3))
				}
				top := a.RootCauses[0]
				lines = append(lines, fmt.Sprintf("    - Top Root Cause: %s - %s", orNA(top.Service), orNA(top.UsageType)))
			}
		}
	}
	return lines
}

func uniqueServices(causes []entity.CostAnomalyRootCause) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rc := range causes {
		s := orNA(rc.Service)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
