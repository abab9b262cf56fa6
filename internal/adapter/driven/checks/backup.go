package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	btypes "github.com/aws/aws-sdk-go-v2/service/backup/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

type backupAPI interface {
	ListBackupJobs(ctx context.Context, params *backup.ListBackupJobsInput, optFns ...func(*backup.Options)) (*backup.ListBackupJobsOutput, error)
	ListBackupPlans(ctx context.Context, params *backup.ListBackupPlansInput, optFns ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error)
	DescribeBackupVault(ctx context.Context, params *backup.DescribeBackupVaultInput, optFns ...func(*backup.Options)) (*backup.DescribeBackupVaultOutput, error)
	ListRecoveryPointsByBackupVault(ctx context.Context, params *backup.ListRecoveryPointsByBackupVaultInput, optFns ...func(*backup.Options)) (*backup.ListRecoveryPointsByBackupVaultOutput, error)
}

type rdsSnapshotAPI interface {
	DescribeDBSnapshots(ctx context.Context, params *rds.DescribeDBSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error)
}

// BackupStatusChecker summarizes AWS Backup health per account: jobs since
// the start of the previous WIB day, plan inventory, recovery point
// activity on configured vaults and, for profiles that still rely on
// native RDS snapshots, a 24h snapshot count.
type BackupStatusChecker struct {
	region    string
	cfg       types.BackupConfig
	backupFor func(ctx context.Context, profile string) (backupAPI, error)
	rdsFor    func(ctx context.Context, profile string) (rdsSnapshotAPI, error)
	now       func() time.Time
	logger    zerolog.Logger
}

func NewBackupStatusChecker(f *awsclient.Factory, cfg types.BackupConfig, logger zerolog.Logger) *BackupStatusChecker {
	return &BackupStatusChecker{
		region: f.DefaultRegion(),
		cfg:    cfg,
		backupFor: func(ctx context.Context, profile string) (backupAPI, error) {
			return f.Backup(ctx, profile, "")
		},
		rdsFor: func(ctx context.Context, profile string) (rdsSnapshotAPI, error) {
			return f.RDS(ctx, profile, "")
		},
		now:    time.Now,
		logger: logger,
	}
}

func (c *BackupStatusChecker) Name() string         { return "backup" }
func (c *BackupStatusChecker) SectionTitle() string { return "BACKUP STATUS" }

func (c *BackupStatusChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.backupFor(ctx, profile)
	if err != nil {
		return entity.BackupResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
	}

	// Reporting window covers the full previous WIB day up to now.
	nowUTC := c.now().UTC()
	windowStart := entity.StartOfWIBDay(nowUTC).Add(-24 * time.Hour)

	jobs, err := c.listJobs(ctx, client, windowStart)
	if err != nil {
		return entity.BackupResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
	}
	plans := c.listPlans(ctx, client)

	var completed, failed, expired int
	details := make([]entity.BackupJobDetail, 0, len(jobs))
	for _, j := range jobs {
		switch j.State {
		case btypes.BackupJobStateCompleted:
			completed++
		case btypes.BackupJobStateFailed:
			failed++
		case btypes.BackupJobStateExpired:
			expired++
		}
		if len(details) < 50 {
			details = append(details, convertBackupJob(j))
		}
	}

	vaults := c.vaultActivity(ctx, client, profile, nowUTC)

	rdsSnapshots := 0
	rdsConfigured := c.rdsSnapshotProfile(profile)
	if rdsConfigured {
		rdsSnapshots, err = c.countRDSSnapshots(ctx, profile, nowUTC)
		if err != nil {
			return entity.BackupResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
		}
	}

	var issues []string
	if failed > 0 {
		issues = append(issues, fmt.Sprintf("%d failed job(s)", failed))
	}
	if expired > 0 {
		issues = append(issues, fmt.Sprintf("%d expired job(s)", expired))
	}
	noActivity, vaultErrors := 0, 0
	for _, v := range vaults {
		if v.Error != "" {
			vaultErrors++
		} else if v.RecoveryPoints24h == 0 {
			noActivity++
		}
	}
	if noActivity > 0 {
		issues = append(issues, fmt.Sprintf("%d vault(s) no recovery points in 24h", noActivity))
	}
	if vaultErrors > 0 {
		issues = append(issues, fmt.Sprintf("%d vault error(s)", vaultErrors))
	}
	if rdsConfigured && rdsSnapshots == 0 {
		issues = append(issues, "No RDS snapshots in 24h")
	}

	status := entity.StatusOK
	if len(issues) > 0 {
		status = entity.StatusAttention
	}

	return entity.BackupResult{
		ResultMeta:      entity.ResultMeta{Status: status},
		Region:          c.region,
		CheckedAt:       nowUTC,
		WindowStart:     windowStart,
		TotalJobs:       len(jobs),
		CompletedJobs:   completed,
		FailedJobs:      failed,
		ExpiredJobs:     expired,
		JobDetails:      details,
		BackupPlans:     plans,
		Vaults:          vaults,
		RDSSnapshots24h: rdsSnapshots,
		Issues:          issues,
	}
}

func (c *BackupStatusChecker) rdsSnapshotProfile(profile string) bool {
	for _, p := range c.cfg.RDSSnapshotProfiles {
		if p == profile {
			return true
		}
	}
	return false
}

func (c *BackupStatusChecker) listJobs(ctx context.Context, client backupAPI, since time.Time) ([]btypes.BackupJob, error) {
	var jobs []btypes.BackupJob
	input := &backup.ListBackupJobsInput{ByCreatedAfter: aws.Time(since)}
	for {
		out, err := client.ListBackupJobs(ctx, input)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, out.BackupJobs...)
		if out.NextToken == nil {
			return jobs, nil
		}
		input.NextToken = out.NextToken
	}
}

// listPlans is best effort. Some accounts deny backup:ListBackupPlans and
// the check should not fail over the inventory listing.
func (c *BackupStatusChecker) listPlans(ctx context.Context, client backupAPI) []string {
	var names []string
	input := &backup.ListBackupPlansInput{}
	for {
		out, err := client.ListBackupPlans(ctx, input)
		if err != nil {
			c.logger.Debug().Err(err).Msg("backup plan listing failed")
			return names
		}
		for _, p := range out.BackupPlansList {
			if p.BackupPlanName != nil {
				names = append(names, *p.BackupPlanName)
			}
		}
		if out.NextToken == nil {
			return names
		}
		input.NextToken = out.NextToken
	}
}

func (c *BackupStatusChecker) vaultActivity(ctx context.Context, client backupAPI, profile string, now time.Time) []entity.VaultSummary {
	var summaries []entity.VaultSummary
	since := now.Add(-24 * time.Hour)
	for _, v := range c.cfg.Vaults {
		if v.Profile != profile {
			continue
		}
		summary := entity.VaultSummary{VaultName: v.VaultName}

		meta, err := client.DescribeBackupVault(ctx, &backup.DescribeBackupVaultInput{
			BackupVaultName: aws.String(v.VaultName),
		})
		if err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			continue
		}
		summary.TotalRecoveryPoints = meta.NumberOfRecoveryPoints

		input := &backup.ListRecoveryPointsByBackupVaultInput{
			BackupVaultName: aws.String(v.VaultName),
			ByCreatedAfter:  aws.Time(since),
		}
		for {
			out, err := client.ListRecoveryPointsByBackupVault(ctx, input)
			if err != nil {
				summary.Error = err.Error()
				break
			}
			summary.RecoveryPoints24h += len(out.RecoveryPoints)
			for _, rp := range out.RecoveryPoints {
				if rp.ResourceArn != nil {
					summary.Resources24h = append(summary.Resources24h, *rp.ResourceArn)
				}
			}
			if out.NextToken == nil {
				break
			}
			input.NextToken = out.NextToken
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (c *BackupStatusChecker) countRDSSnapshots(ctx context.Context, profile string, now time.Time) (int, error) {
	client, err := c.rdsFor(ctx, profile)
	if err != nil {
		return 0, err
	}
	since := now.Add(-24 * time.Hour)
	count := 0
	input := &rds.DescribeDBSnapshotsInput{}
	for {
		out, err := client.DescribeDBSnapshots(ctx, input)
		if err != nil {
			return 0, err
		}
		for _, s := range out.DBSnapshots {
			if s.SnapshotCreateTime != nil && !s.SnapshotCreateTime.Before(since) {
				count++
			}
		}
		if out.Marker == nil {
			return count, nil
		}
		input.Marker = out.Marker
	}
}

func convertBackupJob(j btypes.BackupJob) entity.BackupJobDetail {
	d := entity.BackupJobDetail{
		JobID:         aws.ToString(j.BackupJobId),
		State:         string(j.State),
		Resource:      aws.ToString(j.ResourceArn),
		ResourceLabel: resourceLabel(aws.ToString(j.ResourceArn)),
		Type:          aws.ToString(j.ResourceType),
		Reason:        aws.ToString(j.StatusMessage),
	}
	if j.CreationDate != nil {
		d.Created = *j.CreationDate
		d.CreatedWIB = entity.FormatWIB(*j.CreationDate)
	}
	return d
}

// resourceLabel shortens an ARN to its final path or name segment.
func resourceLabel(arn string) string {
	if arn == "" {
		return "N/A"
	}
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		return arn[i+1:]
	}
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

func (c *BackupStatusChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.BackupResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}

	lines := []string{
		"AWS BACKUP STATUS",
		fmt.Sprintf("Region: %s", r.Region),
	}
	if !r.CheckedAt.IsZero() {
		lines = append(lines,
			fmt.Sprintf("Checked at: %s", entity.FormatWIB(r.CheckedAt)),
			fmt.Sprintf("Window: %s - %s",
				r.WindowStart.In(entity.WIB).Format("2006-01-02 15:04"),
				entity.FormatWIB(r.CheckedAt)),
		)
	}
	lines = append(lines, fmt.Sprintf("Jobs: total %d | completed %d | failed %d | expired %d",
		r.TotalJobs, r.CompletedJobs, r.FailedJobs, r.ExpiredJobs))

	var failedJobs []entity.BackupJobDetail
	var successJobs []entity.BackupJobDetail
	for _, j := range r.JobDetails {
		switch j.State {
		case "FAILED", "EXPIRED":
			failedJobs = append(failedJobs, j)
		case "COMPLETED":
			if len(successJobs) < 3 {
				successJobs = append(successJobs, j)
			}
		}
	}

	if len(failedJobs) > 0 {
		lines = append(lines, "", fmt.Sprintf("FAILED/EXPIRED JOBS (%d):", len(failedJobs)))
		for _, j := range failedJobs {
			reason := j.Reason
			if reason == "" {
				reason = "No reason provided"
			}
			lines = append(lines,
				fmt.Sprintf("- %s: %s", j.State, j.ResourceLabel),
				fmt.Sprintf("  Time: %s", j.CreatedWIB),
				fmt.Sprintf("  Reason: %s", reason),
			)
		}
	}

	if len(successJobs) > 0 {
		lines = append(lines, "", "Recent successful jobs (up to 3):")
		for _, j := range successJobs {
			lines = append(lines, fmt.Sprintf("- %s at %s", j.ResourceLabel, j.CreatedWIB))
		}
	}

	if len(r.BackupPlans) > 0 {
		lines = append(lines, "", "Backup plans:")
		for i, p := range r.BackupPlans {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s", p))
		}
	}

	if len(r.Vaults) > 0 {
		lines = append(lines, "", "Vault activity (24h):")
		for _, v := range r.Vaults {
			if v.Error != "" {
				lines = append(lines, fmt.Sprintf("- %s: ERROR %s", v.VaultName, v.Error))
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s: %d new recovery point(s); total %d",
				v.VaultName, v.RecoveryPoints24h, v.TotalRecoveryPoints))
		}
	}

	if r.RDSSnapshots24h > 0 || containsIssue(r.Issues, "No RDS snapshots") {
		lines = append(lines, "", fmt.Sprintf("RDS snapshots (24h): %d", r.RDSSnapshots24h))
	}

	if len(r.Issues) > 0 {
		lines = append(lines, "", "Issues:")
		for _, i := range r.Issues {
			lines = append(lines, fmt.Sprintf("- %s", i))
		}
	} else {
		lines = append(lines, "", "Status: All backup activities healthy in last 24h")
	}

	return strings.Join(lines, "\n")
}

func containsIssue(issues []string, substr string) bool {
	for _, i := range issues {
		if strings.Contains(i, substr) {
			return true
		}
	}
	return false
}

func (c *BackupStatusChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(entity.BackupResult)
	if !ok || r.Status == entity.StatusError {
		return 0
	}
	return len(r.Issues)
}

func (c *BackupStatusChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	lines := []string{"", "BACKUP STATUS"}

	if len(errors) > 0 && len(results) == 0 {
		lines = append(lines, "Status: ERROR - Backup check failed")
		return renderErrors(lines, errors)
	}

	accountsWithIssues := 0
	totalJobs, failedJobs := 0, 0
	var issueLines []string
	for _, pr := range results {
		r, ok := pr.Result.(entity.BackupResult)
		if !ok || r.Status == entity.StatusError {
			continue
		}
		totalJobs += r.TotalJobs
		failedJobs += r.FailedJobs + r.ExpiredJobs
		if len(r.Issues) > 0 {
			accountsWithIssues++
			issueLines = append(issueLines, fmt.Sprintf("  * %s (%s): %s",
				pr.DisplayName, pr.AccountID, strings.Join(r.Issues, ", ")))
		}
	}

	if accountsWithIssues == 0 {
		lines = append(lines, "Status: All backup jobs completed successfully")
	} else {
		lines = append(lines, fmt.Sprintf("Status: %d accounts with backup issues", accountsWithIssues))
	}
	lines = append(lines, fmt.Sprintf("Jobs: %d failed / %d total jobs", failedJobs, totalJobs))
	if len(issueLines) > 0 {
		lines = append(lines, "")
		lines = append(lines, issueLines...)
	}
	if len(errors) > 0 {
		lines = append(lines, "")
		lines = renderErrors(lines, errors)
	}
	return lines
}
