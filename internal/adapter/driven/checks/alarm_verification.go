package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type alarmHistoryAPI interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
	DescribeAlarmHistory(ctx context.Context, params *cloudwatch.DescribeAlarmHistoryInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmHistoryOutput, error)
}

// AlarmVerificationChecker decides whether an alarm has breached long
// enough to be worth reporting, following the evidence-bot duration rule:
// an alarm ongoing for at least minMinutes gets escalated, shorter blips
// and recoveries do not.
type AlarmVerificationChecker struct {
	minMinutes int
	alarmNames []string
	api        func(ctx context.Context, profile string) (alarmHistoryAPI, error)
	now        func() time.Time
}

func NewAlarmVerificationChecker(f *awsclient.Factory, minMinutes int, alarmNames []string) *AlarmVerificationChecker {
	if minMinutes <= 0 {
		minMinutes = 10
	}
	return &AlarmVerificationChecker{
		minMinutes: minMinutes,
		alarmNames: alarmNames,
		api: func(ctx context.Context, profile string) (alarmHistoryAPI, error) {
			return f.CloudWatch(ctx, profile, "")
		},
		now: time.Now,
	}
}

func (c *AlarmVerificationChecker) Name() string { return "alarm-verification" }

// alarmTransition is one state-update entry from the alarm history.
type alarmTransition struct {
	Timestamp time.Time
	Summary   string
}

// buildAlarmResult classifies one alarm from its current state and its
// state-update history. The inspection window is bounded by nowUTC.
func buildAlarmResult(alarmName, alarmState, reason string, history []alarmTransition, nowUTC time.Time, minMinutes int) entity.AlarmVerification {
	out := entity.AlarmVerification{
		AlarmName: alarmName,
		State:     alarmState,
		Reason:    reason,
	}

	sorted := append([]alarmTransition(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })

	var toAlarm, toOK *alarmTransition
	for i := range sorted {
		t := &sorted[i]
		if toOK == nil && strings.Contains(t.Summary, "from ALARM to OK") {
			toOK = t
		}
		if toAlarm == nil && strings.Contains(t.Summary, "from OK to ALARM") {
			toAlarm = t
		}
	}
	if toAlarm == nil {
		// INSUFFICIENT_DATA can also flip straight into ALARM.
		for i := range sorted {
			if strings.Contains(sorted[i].Summary, "to ALARM") {
				toAlarm = &sorted[i]
				break
			}
		}
	}
	if toAlarm == nil {
		out.Status = entity.StatusNotFound
		return out
	}

	out.Status = entity.StatusSuccess
	out.BreachStart = entity.FormatWIBClock(toAlarm.Timestamp)

	if alarmState == string(cwtypes.StateValueAlarm) {
		ongoing := int(nowUTC.Sub(toAlarm.Timestamp).Minutes())
		out.OngoingMinutes = ongoing
		if ongoing >= minMinutes {
			out.ShouldReport = true
			out.RecommendedAction = entity.ActionReportNow
			out.Message = reportMessage(alarmName, toAlarm.Timestamp, nowUTC)
		} else {
			out.RecommendedAction = entity.ActionMonitor
		}
		return out
	}

	if toOK == nil || toOK.Timestamp.Before(toAlarm.Timestamp) {
		out.Status = entity.StatusNotFound
		return out
	}
	breach := int(toOK.Timestamp.Sub(toAlarm.Timestamp).Minutes())
	out.BreachDurationMinutes = breach
	out.BreachEnd = entity.FormatWIBClock(toOK.Timestamp)
	if breach >= minMinutes {
		out.RecommendedAction = entity.ActionNoReportRecovered
	} else {
		out.RecommendedAction = entity.ActionNoReportTransient
	}
	return out
}

func reportMessage(alarmName string, breachStart, now time.Time) string {
	hello, _ := entity.GreetingWIB(now)
	return fmt.Sprintf("%s, izin menginformasikan pada *%s* sedang melewati threshold sejak %s (status: ongoing).",
		hello, alarmName, entity.FormatWIBClock(breachStart))
}

func (c *AlarmVerificationChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.api(ctx, profile)
	if err != nil {
		return entity.AlarmVerificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	input := &cloudwatch.DescribeAlarmsInput{}
	if len(c.alarmNames) > 0 {
		// Named alarms are verified in whatever state they currently
		// hold so recoveries surface too.
		input.AlarmNames = c.alarmNames
	} else {
		input.StateValue = cwtypes.StateValueAlarm
	}

	var alarms []cwtypes.MetricAlarm
	for {
		out, err := client.DescribeAlarms(ctx, input)
		if err != nil {
			return entity.AlarmVerificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
		}
		alarms = append(alarms, out.MetricAlarms...)
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	nowUTC := c.now().UTC()
	historyStart := nowUTC.Add(-24 * time.Hour)

	var verified []entity.AlarmVerification
	for _, alarm := range alarms {
		name := aws.ToString(alarm.AlarmName)
		histOut, err := client.DescribeAlarmHistory(ctx, &cloudwatch.DescribeAlarmHistoryInput{
			AlarmName:       aws.String(name),
			HistoryItemType: cwtypes.HistoryItemTypeStateUpdate,
			StartDate:       aws.Time(historyStart),
			EndDate:         aws.Time(nowUTC),
			ScanBy:          cwtypes.ScanByTimestampDescending,
		})
		if err != nil {
			return entity.AlarmVerificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
		}

		history := make([]alarmTransition, 0, len(histOut.AlarmHistoryItems))
		for _, item := range histOut.AlarmHistoryItems {
			if item.Timestamp == nil {
				continue
			}
			history = append(history, alarmTransition{
				Timestamp: *item.Timestamp,
				Summary:   aws.ToString(item.HistorySummary),
			})
		}

		verified = append(verified, buildAlarmResult(
			name,
			string(alarm.StateValue),
			aws.ToString(alarm.StateReason),
			history,
			nowUTC,
			c.minMinutes,
		))
	}

	// Reportable alarms first, then by longest ongoing breach.
	sort.SliceStable(verified, func(i, j int) bool {
		if verified[i].ShouldReport != verified[j].ShouldReport {
			return verified[i].ShouldReport
		}
		return verified[i].OngoingMinutes > verified[j].OngoingMinutes
	})

	return entity.AlarmVerificationResult{
		ResultMeta:         entity.ResultMeta{Status: entity.StatusSuccess},
		MinDurationMinutes: c.minMinutes,
		Alarms:             verified,
	}
}

func (c *AlarmVerificationChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.AlarmVerificationResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}
	if len(r.Alarms) == 0 {
		return "Status: No active alarms found."
	}

	lines := []string{
		fmt.Sprintf("ALARM VERIFICATION REPORT (%d alarms)", len(r.Alarms)),
		fmt.Sprintf("Threshold for reporting: >= %d minutes", r.MinDurationMinutes),
		"",
	}

	var reportable, pending, other []entity.AlarmVerification
	for _, a := range r.Alarms {
		switch {
		case a.ShouldReport:
			reportable = append(reportable, a)
		case a.RecommendedAction == entity.ActionMonitor:
			pending = append(pending, a)
		default:
			other = append(other, a)
		}
	}

	if len(reportable) > 0 {
		lines = append(lines, "REPORTABLE ALARMS:")
		for _, a := range reportable {
			lines = append(lines,
				fmt.Sprintf("* %s", a.AlarmName),
				fmt.Sprintf("  Duration: %d minutes (since %s)", a.OngoingMinutes, a.BreachStart),
				fmt.Sprintf("  Reason: %s", a.Reason),
				fmt.Sprintf("  [Bot Format]: %s", a.Message),
				"  Action: ESCALATE / REPORT NOW",
				"",
			)
		}
	}

	if len(pending) > 0 {
		lines = append(lines, "PENDING ALARMS:")
		for _, a := range pending {
			remaining := r.MinDurationMinutes - a.OngoingMinutes
			if remaining < 0 {
				remaining = 0
			}
			lines = append(lines,
				fmt.Sprintf("* %s", a.AlarmName),
				fmt.Sprintf("  Duration: %d minutes (since %s)", a.OngoingMinutes, a.BreachStart),
				fmt.Sprintf("  Reason: %s", a.Reason),
				fmt.Sprintf("  Action: WAIT %d minutes and re-check", remaining),
				"",
			)
		}
	}

	if len(other) > 0 {
		lines = append(lines, "RESOLVED / NOT FOUND:")
		for _, a := range other {
			detail := a.RecommendedAction
			if a.RecommendedAction == entity.ActionNoReportRecovered {
				detail = fmt.Sprintf("recovered after %d minutes (%s-%s)", a.BreachDurationMinutes, a.BreachStart, a.BreachEnd)
			}
			if a.Status == entity.StatusNotFound {
				detail = "no state transition in 24h window"
			}
			lines = append(lines, fmt.Sprintf("* %s: %s", a.AlarmName, detail))
		}
	}

	return strings.Join(lines, "\n")
}
