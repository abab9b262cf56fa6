package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	gdtypes "github.com/aws/aws-sdk-go-v2/service/guardduty/types"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type guardDutyAPI interface {
	ListDetectors(ctx context.Context, params *guardduty.ListDetectorsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error)
	ListFindings(ctx context.Context, params *guardduty.ListFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListFindingsOutput, error)
	GetFindings(ctx context.Context, params *guardduty.GetFindingsInput, optFns ...func(*guardduty.Options)) (*guardduty.GetFindingsOutput, error)
}

// GuardDutyChecker reports findings updated today on the first detector.
type GuardDutyChecker struct {
	api func(ctx context.Context, profile string) (guardDutyAPI, error)
	now func() time.Time
}

func NewGuardDutyChecker(f *awsclient.Factory, region string) *GuardDutyChecker {
	return &GuardDutyChecker{
		api: func(ctx context.Context, profile string) (guardDutyAPI, error) {
			return f.GuardDuty(ctx, profile, region)
		},
		now: time.Now,
	}
}

func (c *GuardDutyChecker) Name() string         { return "guardduty" }
func (c *GuardDutyChecker) SectionTitle() string { return "GUARDDUTY FINDINGS" }

func (c *GuardDutyChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.api(ctx, profile)
	if err != nil {
		return entity.GuardDutyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	detectors, err := client.ListDetectors(ctx, &guardduty.ListDetectorsInput{})
	if err != nil {
		return entity.GuardDutyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}
	if len(detectors.DetectorIds) == 0 {
		return entity.GuardDutyResult{
			ResultMeta: entity.ResultMeta{Status: entity.StatusDisabled},
			Details:    []entity.GuardDutyFinding{},
		}
	}
	detectorID := detectors.DetectorIds[0]

	dayStart := entity.StartOfWIBDay(c.now())
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	found, err := client.ListFindings(ctx, &guardduty.ListFindingsInput{
		DetectorId: aws.String(detectorID),
		FindingCriteria: &gdtypes.FindingCriteria{
			Criterion: map[string]gdtypes.Condition{
				"updatedAt": {
					GreaterThanOrEqual: aws.Int64(dayStart.UnixMilli()),
					LessThanOrEqual:    aws.Int64(dayEnd.UnixMilli()),
				},
			},
		},
	})
	if err != nil {
		return entity.GuardDutyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	findingIDs := found.FindingIds
	details := []entity.GuardDutyFinding{}

	if len(findingIDs) > 0 {
		sample := findingIDs
		if len(sample) > 5 {
			sample = sample[:5]
		}
		out, err := client.GetFindings(ctx, &guardduty.GetFindingsInput{
			DetectorId: aws.String(detectorID),
			FindingIds: sample,
		})
		if err != nil {
			return entity.GuardDutyResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
		}
		for _, f := range out.Findings {
			details = append(details, entity.GuardDutyFinding{
				Type:     orNA(aws.ToString(f.Type)),
				Severity: severityText(aws.ToFloat64(f.Severity)),
				Title:    orNA(aws.ToString(f.Title)),
				Updated:  formatFindingTime(aws.ToString(f.UpdatedAt)),
			})
		}
	}

	return entity.GuardDutyResult{
		ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess},
		Findings:   len(findingIDs),
		Details:    details,
	}
}

func severityText(severity float64) string {
	switch {
	case severity >= 9.0:
		return "CRITICAL"
	case severity >= 7.0:
		return "HIGH"
	case severity >= 4.0:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func formatFindingTime(updated string) string {
	t, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return updated
	}
	return entity.FormatWIB(t)
}

func (c *GuardDutyChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.GuardDutyResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}
	if r.Status == entity.StatusDisabled {
		return "GuardDuty is not enabled for this account."
	}

	now := c.now().In(entity.WIB)
	lines := []string{
		"AWS GUARDDUTY REPORT",
		fmt.Sprintf("Date: %s | Time: %s", now.Format("January 02, 2006"), now.Format("15:04")+" WIB"),
		"",
		bar(80),
		"",
		"EXECUTIVE SUMMARY",
	}
	if r.Findings == 0 {
		lines = append(lines, "GuardDuty monitoring completed. No new findings today.")
	} else {
		lines = append(lines, fmt.Sprintf("GuardDuty monitoring completed. %d finding(s) detected today.", r.Findings))
	}
	lines = append(lines, "", bar(80), "", "ASSESSMENT RESULTS")

	if r.Findings == 0 {
		lines = append(lines, "Status: CLEAR - No findings detected today", "", bar(80))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Status: ATTENTION REQUIRED - %d findings", r.Findings), "", "Recent Findings (up to 5):")
	for i, d := range r.Details {
		lines = append(lines,
			"",
			fmt.Sprintf("* Finding #%d", i+1),
			fmt.Sprintf("  Type: %s", d.Type),
			fmt.Sprintf("  Title: %s", d.Title),
			fmt.Sprintf("  Severity: %s", d.Severity),
			fmt.Sprintf("  Updated: %s", d.Updated),
		)
	}
	lines = append(lines,
		"",
		bar(80),
		"",
		"RECOMMENDATIONS",
		"1. Review and remediate the listed findings promptly",
		"2. Validate GuardDuty alerts are integrated with your incident workflow",
		"",
		bar(80),
	)
	return strings.Join(lines, "\n")
}

func (c *GuardDutyChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(entity.GuardDutyResult)
	if !ok || r.Status == entity.StatusError || r.Status == entity.StatusDisabled {
		return 0
	}
	return r.Findings
}

func (c *GuardDutyChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	lines := []string{"", "GUARDDUTY FINDINGS"}

	if len(errors) > 0 {
		lines = append(lines, "Status: ERROR - GuardDuty check failed")
		return renderErrors(lines, errors)
	}

	total := 0
	var disabled []entity.ProfileResult
	for _, pr := range results {
		total += c.CountIssues(pr.Result)
		if pr.Result.CheckStatus() == entity.StatusDisabled {
			disabled = append(disabled, pr)
		}
	}

	if total == 0 && len(disabled) == 0 {
		lines = append(lines, "Status: CLEAR - No new security findings detected")
		return lines
	}

	if total > 0 {
		lines = append(lines, fmt.Sprintf("Status: ATTENTION REQUIRED - %d new findings detected", total), "", "Current Findings:")
		for _, pr := range results {
			r, ok := pr.Result.(entity.GuardDutyResult)
			if !ok || r.Findings == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("  * %s (%s): %d findings", pr.Profile, pr.AccountID, r.Findings))
			for i, d := range r.Details {
				if i == 3 {
					break
				}
				lines = append(lines,
					fmt.Sprintf("    - Type: %s", d.Type),
					fmt.Sprintf("    - Severity: %s", d.Severity),
					fmt.Sprintf("    - Date: %s", d.Updated),
				)
			}
		}
	}

	if len(disabled) > 0 {
		if total > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "GuardDuty NOT ENABLED:")
		for _, pr := range disabled {
			lines = append(lines, fmt.Sprintf("  * %s (%s)", pr.Profile, pr.AccountID))
		}
	}
	return lines
}
