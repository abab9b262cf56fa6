package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/checks"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

// WhatsApp digests use \r\n for the backup message because the target
// group chat strips single newlines on paste.
const crlf = "\r\n"

// BuildBackupDigest renders the WhatsApp-ready backup summary grouped
// into Completed, Failed and Expired blocks.
func BuildBackupDigest(now time.Time, results []entity.ProfileResult) string {
	var completed, failed, expired, noActivity []string

	for _, pr := range results {
		res, ok := pr.Result.(entity.BackupResult)
		if !ok || res.Status == entity.StatusError {
			continue
		}

		display := pr.DisplayName
		acct := pr.AccountID

		hasActivity := res.TotalJobs > 0 || res.RDSSnapshots24h > 0
		for _, v := range res.Vaults {
			if v.RecoveryPoints24h > 0 {
				hasActivity = true
			}
		}
		if !hasActivity {
			noActivity = append(noActivity, fmt.Sprintf("- %s - %s (tidak ada backup pada periode)", display, acct))
			continue
		}

		if len(res.Issues) == 0 {
			completed = append(completed, fmt.Sprintf("- %s - %s", display, acct))
			continue
		}

		for _, job := range res.JobDetails {
			if job.State != "FAILED" && job.State != "EXPIRED" {
				continue
			}
			reason := job.Reason
			if reason == "" {
				reason = "No reason"
			}
			resource := job.ResourceLabel
			if resource == "" {
				resource = "N/A"
			}
			block := []string{
				fmt.Sprintf("- %s - %s", display, acct),
				fmt.Sprintf("  Resource: %s", resource),
				fmt.Sprintf("  Time: %s", job.Created.In(entity.WIB).Format("02-01-2006 15:04")+" WIB"),
				fmt.Sprintf("  Reason: %s", reason),
			}
			if job.State == "FAILED" {
				failed = append(failed, block...)
			} else {
				expired = append(expired, block...)
			}
		}

		for _, issue := range res.Issues {
			if strings.Contains(issue, "failed") || strings.Contains(issue, "expired") {
				continue
			}
			failed = append(failed, fmt.Sprintf("- %s - %s => %s", display, acct, issue))
		}
	}

	block := func(lines []string) string {
		if len(lines) == 0 {
			return "- (tidak ada)"
		}
		return strings.Join(lines, crlf)
	}

	msg := "Selamat Pagi Team," + crlf +
		"Berikut report untuk AryaNoble Backup pada hari ini" + crlf +
		now.In(entity.WIB).Format("02-01-2006") + crlf + crlf +
		"Completed:" + crlf +
		block(completed) + crlf + crlf +
		"Failed:" + crlf +
		block(failed) + crlf + crlf +
		"Expired:" + crlf +
		block(expired) + crlf
	if len(noActivity) > 0 {
		msg += crlf + "No Backup Activity:" + crlf + block(noActivity) + crlf
	}
	return strings.TrimSpace(msg)
}

// digestRoleOrder sorts instance roles writer first, reader second,
// the rest alphabetically.
func digestRoleOrder(instances map[string]entity.InstanceMetrics) []string {
	roles := make([]string, 0, len(instances))
	for role := range instances {
		if role != "writer" && role != "reader" {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	ordered := make([]string, 0, len(instances))
	if _, ok := instances["writer"]; ok {
		ordered = append(ordered, "writer")
	}
	if _, ok := instances["reader"]; ok {
		ordered = append(ordered, "reader")
	}
	return append(ordered, roles...)
}

var digestMetricOrder = []string{"ACUUtilization", "CPUUtilization", "FreeableMemory", "DatabaseConnections"}

// BuildRDSClientDigest renders the formal client-facing RDS report, one
// block per account separated by a dashed divider.
func BuildRDSClientDigest(now time.Time, results []entity.ProfileResult) string {
	greeting, waktu := entity.GreetingWIB(now)
	local := now.In(entity.WIB)
	dateStr := local.Format("02-01-2006")
	timeStr := local.Format("15:04") + " WIB"

	var messages []string
	for _, pr := range results {
		res, ok := pr.Result.(entity.RDSMetricsResult)
		if !ok || res.Status == entity.StatusError || res.Status == entity.StatusSkipped {
			continue
		}

		acctName := res.AccountName
		if acctName == "" {
			acctName = pr.Profile
		}
		acctID := res.AccountID
		if acctID == "" {
			acctID = pr.AccountID
		}

		lines := []string{
			greeting + " Team,",
			fmt.Sprintf(
				"Berikut Daily report untuk akun id %s (%s) pada %s ini (Data per %s, monitoring %d jam terakhir)",
				acctName, acctID, waktu, timeStr, res.WindowHours,
			),
			dateStr,
			"",
			"Summary:",
		}

		for _, role := range digestRoleOrder(res.Instances) {
			lines = append(lines, "", checks.Capitalize(role)+":")
			metrics := res.Instances[role].Metrics
			for _, m := range digestMetricOrder {
				if info, ok := metrics[m]; ok {
					lines = append(lines, "* "+info.Message)
				} else {
					lines = append(lines, fmt.Sprintf("* %s: Data tidak tersedia", m))
				}
			}
		}

		messages = append(messages, strings.Join(lines, "\n"))
	}

	if len(messages) == 0 {
		return "Tidak ada data RDS untuk profil Aryanoble yang terkonfigurasi."
	}

	sep := "\n" + strings.Repeat("-", 70) + "\n\n"
	return strings.Join(messages, sep)
}

// BuildAlarmDigest renders the WhatsApp-ready alarm verification
// summary grouped by recommended action.
func BuildAlarmDigest(now time.Time, results []entity.ProfileResult) string {
	greeting, _ := entity.GreetingWIB(now)
	timeStr := now.In(entity.WIB).Format("15:04") + " WIB"

	var reportNow, monitor, recovered, notFound []string
	for _, pr := range results {
		res, ok := pr.Result.(entity.AlarmVerificationResult)
		if !ok || res.Status == entity.StatusError || res.Status == entity.StatusSkipped {
			continue
		}
		for _, alarm := range res.Alarms {
			if alarm.Status == entity.StatusNotFound {
				notFound = append(notFound, fmt.Sprintf("- %s (%s/%s)", alarm.AlarmName, pr.Profile, pr.AccountID))
				continue
			}
			switch alarm.RecommendedAction {
			case entity.ActionReportNow:
				reportNow = append(reportNow, fmt.Sprintf("- %s (%s) | %dm ongoing", alarm.AlarmName, pr.Profile, alarm.OngoingMinutes))
			case entity.ActionMonitor:
				monitor = append(monitor, fmt.Sprintf("- %s (%s) | %dm ongoing", alarm.AlarmName, pr.Profile, alarm.OngoingMinutes))
			case entity.ActionNoReportRecovered:
				recovered = append(recovered, fmt.Sprintf("- %s (%s) | recovered %dm", alarm.AlarmName, pr.Profile, alarm.BreachDurationMinutes))
			}
		}
	}

	if len(reportNow) == 0 && len(monitor) == 0 && len(recovered) == 0 && len(notFound) == 0 {
		return "Tidak ada data alarm verification yang relevan."
	}

	lines := []string{
		greeting + " Team 👋",
		fmt.Sprintf("*Arbel Alarm Verification* | %s", timeStr),
		"",
		fmt.Sprintf("📊 Summary: REPORT_NOW=%d | MONITOR=%d | RECOVERED=%d", len(reportNow), len(monitor), len(recovered)),
	}

	if len(reportNow) > 0 {
		lines = append(lines, "", "🚨 REPORT NOW:")
		lines = append(lines, capLines(reportNow, 8)...)
	}
	if len(monitor) > 0 {
		lines = append(lines, "", "⏳ MONITOR:")
		lines = append(lines, capLines(monitor, 8)...)
	}
	if len(recovered) > 0 {
		lines = append(lines, "", "✅ RECOVERED (no report):")
		lines = append(lines, capLines(recovered, 8)...)
	}
	if len(notFound) > 0 {
		lines = append(lines, "", "❓ NOT FOUND:")
		lines = append(lines, capLines(notFound, 5)...)
	}

	return strings.Join(lines, "\n")
}

func capLines(lines []string, max int) []string {
	if len(lines) > max {
		return lines[:max]
	}
	return lines
}

// BuildBudgetDigest renders the numbered budget blocks, one per account.
func BuildBudgetDigest(results []entity.ProfileResult) string {
	var blocks []string
	n := 0
	for _, pr := range results {
		res, ok := pr.Result.(entity.BudgetResult)
		if !ok || res.Status == entity.StatusError {
			continue
		}
		n++
		lines := checks.FormatBudgetBlock(res)
		lines[0] = fmt.Sprintf("%d) %s", n, lines[0])
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(blocks) == 0 {
		return "Tidak ada data budget untuk profil yang terkonfigurasi."
	}
	return strings.Join(blocks, "\n\n")
}
