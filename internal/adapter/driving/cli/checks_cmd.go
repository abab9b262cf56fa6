package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/checks"
	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/export"
	"github.com/primanata/aws-monitoring-hub-go/internal/application/usecase"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/checker"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/pkg/version"
)

// newCheckCmd runs a single check across the selected accounts and
// prints the per-account reports plus the matching WhatsApp digest.
func (app *CLIApp) newCheckCmd() *cobra.Command {
	var (
		windowHours int
		topN        int
		minMinutes  int
		alarms      []string
		sendSlack   bool
	)

	cmd := &cobra.Command{
		Use:   "check <name>",
		Short: "Run one monitoring check across the selected accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			displayWelcomeBanner(app.version)
			go version.CheckLatestVersion(app.version)

			accounts, _, err := app.resolveAccounts(cmd)
			if err != nil {
				return err
			}

			registry := checks.NewRegistry(app.factory, app.cfg, checks.Options{
				WindowHours: windowHours,
				TopN:        topN,
				MinMinutes:  minMinutes,
				Alarms:      alarms,
			}, app.logger)

			chk, err := registry.Get(args[0])
			if err != nil {
				return err
			}

			app.console.LogInfo("Running %s across %d account(s)", chk.Name(), len(accounts))
			results, errs := app.runner.RunCheck(cmd.Context(), chk, accounts)

			for _, pr := range results {
				app.console.Println()
				app.console.Println(strings.Repeat("=", 70))
				app.console.Printf("%s (%s)\n", pr.DisplayName, pr.AccountID)
				app.console.Println(strings.Repeat("=", 70))
				app.console.Println(chk.FormatReport(pr.Result))
			}

			if digest := digestFor(chk.Name(), results); digest != "" {
				app.console.Println()
				app.console.Println(strings.Repeat("=", 70))
				app.console.Println("WHATSAPP MESSAGE (READY TO SEND)")
				app.console.Println(strings.Repeat("=", 70))
				app.console.Println(digest)
			}

			if sendSlack {
				app.sendSlackReports(cmd, chk, results)
			}

			if len(errs) > 0 {
				app.console.LogWarning("%d account(s) failed the %s check", len(errs), chk.Name())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&windowHours, "window-hours", 12, "RDS metrics lookback window in hours")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Limit the CloudWatch cost breakdown to the top N accounts")
	cmd.Flags().IntVar(&minMinutes, "min-minutes", 10, "Minimum breach duration before an alarm is reportable")
	cmd.Flags().StringSliceVar(&alarms, "alarms", nil, "Alarm names for the alarm verification check")
	cmd.Flags().BoolVar(&sendSlack, "slack", false, "Send each account report to the configured Slack route")
	return cmd
}

// digestFor builds the WhatsApp digest matching a check, empty when the
// check has none.
func digestFor(check string, results []entity.ProfileResult) string {
	now := time.Now()
	switch check {
	case "backup":
		return "--backup\n" + usecase.BuildBackupDigest(now, results)
	case "daily-arbel":
		return "--rds\n" + usecase.BuildRDSClientDigest(now, results)
	case "alarm-verification":
		return "--alarm\n" + usecase.BuildAlarmDigest(now, results)
	case "daily-budget":
		return "--budget\n" + usecase.BuildBudgetDigest(results)
	}
	return ""
}

// sendSlackReports posts each successful account report to its route.
func (app *CLIApp) sendSlackReports(cmd *cobra.Command, chk checker.Checker, results []entity.ProfileResult) {
	sent, skipped := 0, 0
	for _, pr := range results {
		status := pr.Result.CheckStatus()
		if status == entity.StatusError || status == entity.StatusSkipped {
			continue
		}
		ok, reason := app.notifier.SendReport(cmd.Context(), chk.Name(), pr.Profile, chk.FormatReport(pr.Result))
		if ok {
			sent++
		} else {
			skipped++
			app.console.LogWarning("Slack skipped for %s: %s", pr.Profile, reason)
		}
	}
	if sent > 0 {
		app.console.LogSuccess("Slack report sent to %d client route(s)", sent)
	} else if skipped > 0 {
		app.console.LogWarning("No Slack report delivered (%d skipped)", skipped)
	}
}

// newAllCmd runs the daily bundle and prints the consolidated report.
func (app *CLIApp) newAllCmd() *cobra.Command {
	var (
		light       bool
		windowHours int
		sendSlack   bool
		reportName  string
		reportTypes []string
		dir         string
	)

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run the daily monitoring bundle and print the consolidated report",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayWelcomeBanner(app.version)
			go version.CheckLatestVersion(app.version)

			accounts, group, err := app.resolveAccounts(cmd)
			if err != nil {
				return err
			}

			registry := checks.NewRegistry(app.factory, app.cfg, checks.Options{
				WindowHours: windowHours,
			}, app.logger)

			names := checks.AllModeChecks
			if light {
				names = checks.LightModeChecks
			}
			checkers := make([]checker.Checker, 0, len(names))
			for _, name := range names {
				chk, err := registry.Get(name)
				if err != nil {
					return err
				}
				checkers = append(checkers, chk)
			}

			app.console.LogInfo("Running %d checks across %d account(s)", len(checkers), len(accounts))
			runs := app.runner.RunChecks(cmd.Context(), checkers, accounts)

			params := usecase.ReportParams{
				GroupName: group,
				Region:    app.cfg.Region,
				Profiles:  len(accounts),
				Now:       time.Now(),
			}
			var report string
			if light {
				report = usecase.BuildSimpleReport(params, runs)
			} else {
				report = usecase.BuildDetailedReport(params, runs)
			}
			app.console.Println("\n" + report)

			if sendSlack {
				if ok, reason := app.notifier.Send(cmd.Context(), report); ok {
					app.console.LogSuccess("Consolidated report sent to Slack")
				} else {
					app.console.LogWarning("Slack delivery skipped: %s", reason)
				}
			}

			if reportName != "" {
				if err := app.exportReport(reportName, reportTypes, dir, group, report, runs); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&light, "light", false, "Skip the backup and RDS metric checks")
	cmd.Flags().IntVar(&windowHours, "window-hours", 12, "RDS metrics lookback window in hours")
	cmd.Flags().BoolVar(&sendSlack, "slack", false, "Send the consolidated report to the default Slack webhook")
	cmd.Flags().StringVarP(&reportName, "report-name", "n", "", "Base name for exported report files (without extension)")
	cmd.Flags().StringSliceVarP(&reportTypes, "report-type", "y", []string{"csv"}, "Report types to export: csv, json, pdf")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to save the report files (default: current directory)")
	return cmd
}

// exportReport writes the consolidated run in every requested format.
func (app *CLIApp) exportReport(name string, formats []string, dir, group, report string, runs []usecase.CheckRun) error {
	exporter := export.NewExporter()
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(format) {
		case "csv":
			path, err = exporter.ExportRunsToCSV(runs, name, dir)
		case "json":
			path, err = exporter.ExportRunsToJSON(runs, group, app.cfg.Region, name, dir)
		case "pdf":
			title := "Daily Monitoring Report"
			if group != "" {
				title = fmt.Sprintf("Daily Monitoring Report - %s", group)
			}
			path, err = exporter.ExportReportToPDF(report, title, name, dir)
		default:
			return fmt.Errorf("unknown report type: %s", format)
		}
		if err != nil {
			return err
		}
		app.console.LogSuccess("Report exported to %s", path)
	}
	return nil
}
