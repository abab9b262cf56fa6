package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type alarmAPI interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
}

// CloudWatchAlarmChecker lists alarms currently in ALARM state.
type CloudWatchAlarmChecker struct {
	api func(ctx context.Context, profile string) (alarmAPI, error)
}

func NewCloudWatchAlarmChecker(f *awsclient.Factory, region string) *CloudWatchAlarmChecker {
	return &CloudWatchAlarmChecker{
		api: func(ctx context.Context, profile string) (alarmAPI, error) {
			return f.CloudWatch(ctx, profile, region)
		},
	}
}

func (c *CloudWatchAlarmChecker) Name() string         { return "cloudwatch" }
func (c *CloudWatchAlarmChecker) SectionTitle() string { return "CLOUDWATCH ALARMS" }

func (c *CloudWatchAlarmChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.api(ctx, profile)
	if err != nil {
		return entity.CloudWatchAlarmResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	var details []entity.AlarmDetail
	var nextToken *string
	for {
		out, err := client.DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{
			StateValue: cwtypes.StateValueAlarm,
			NextToken:  nextToken,
		})
		if err != nil {
			return entity.CloudWatchAlarmResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
		}
		for _, a := range out.MetricAlarms {
			updated := "N/A"
			if a.StateUpdatedTimestamp != nil {
				updated = entity.FormatWIB(*a.StateUpdatedTimestamp)
			}
			details = append(details, entity.AlarmDetail{
				Name:    orNA(aws.ToString(a.AlarmName)),
				Reason:  orNA(aws.ToString(a.StateReason)),
				Updated: updated,
			})
		}
		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}

	return entity.CloudWatchAlarmResult{
		ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess},
		Count:      len(details),
		Details:    details,
	}
}

func (c *CloudWatchAlarmChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.CloudWatchAlarmResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}

	lines := []string{"AWS CLOUDWATCH ALARMS"}
	if r.Count == 0 {
		lines = append(lines, "Status: All monitoring systems normal")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Status: %d alarm(s) in ALARM state", r.Count), "", "Active Alarms (up to 5):")
	for i, a := range r.Details {
		if i == 5 {
			break
		}
		lines = append(lines,
			"",
			fmt.Sprintf("* %s", a.Name),
			fmt.Sprintf("  Reason: %s", truncate(a.Reason, 120)),
			fmt.Sprintf("  Updated: %s", a.Updated),
		)
	}
	return strings.Join(lines, "\n")
}

func (c *CloudWatchAlarmChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(entity.CloudWatchAlarmResult)
	if !ok || r.Status == entity.StatusError {
		return 0
	}
	return r.Count
}

func (c *CloudWatchAlarmChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	lines := []string{"", "CLOUDWATCH ALARMS"}

	if len(errors) > 0 {
		lines = append(lines, "Status: ERROR - CloudWatch check failed")
		return renderErrors(lines, errors)
	}

	total := 0
	for _, pr := range results {
		total += c.CountIssues(pr.Result)
	}
	if total == 0 {
		lines = append(lines, "Status: All monitoring systems normal")
		return lines
	}

	lines = append(lines, fmt.Sprintf("Status: %d alarms in ALARM state", total), "", "Active Alarms:")
	for _, pr := range results {
		r, ok := pr.Result.(entity.CloudWatchAlarmResult)
		if !ok || r.Count == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  * %s (%s): %d active alarms", pr.Profile, pr.AccountID, r.Count))
		for i, a := range r.Details {
			if i == 3 {
				break
			}
			lines = append(lines,
				fmt.Sprintf("    - Alarm: %s", a.Name),
				fmt.Sprintf("    - Reason: %s", a.Reason),
				fmt.Sprintf("    - Date: %s", a.Updated),
			)
		}
	}
	return lines
}
