package checks

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	btypes "github.com/aws/aws-sdk-go-v2/service/backup/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

func TestResourceLabel(t *testing.T) {
	assert.Equal(t, "my-db", resourceLabel("arn:aws:rds:ap-southeast-3:111122223333:db/my-db"))
	assert.Equal(t, "my-db", resourceLabel("arn:aws:rds:ap-southeast-3:111122223333:my-db"))
	assert.Equal(t, "plain", resourceLabel("plain"))
	assert.Equal(t, "N/A", resourceLabel(""))
}

type fakeBackupAPI struct {
	jobs           []btypes.BackupJob
	plans          []btypes.BackupPlansListMember
	vaultPoints    int64
	recoveryPoints []btypes.RecoveryPointByBackupVault
}

func (f *fakeBackupAPI) ListBackupJobs(ctx context.Context, params *backup.ListBackupJobsInput, optFns ...func(*backup.Options)) (*backup.ListBackupJobsOutput, error) {
	return &backup.ListBackupJobsOutput{BackupJobs: f.jobs}, nil
}

func (f *fakeBackupAPI) ListBackupPlans(ctx context.Context, params *backup.ListBackupPlansInput, optFns ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error) {
	return &backup.ListBackupPlansOutput{BackupPlansList: f.plans}, nil
}

func (f *fakeBackupAPI) DescribeBackupVault(ctx context.Context, params *backup.DescribeBackupVaultInput, optFns ...func(*backup.Options)) (*backup.DescribeBackupVaultOutput, error) {
	return &backup.DescribeBackupVaultOutput{
		BackupVaultName:        params.BackupVaultName,
		NumberOfRecoveryPoints: f.vaultPoints,
	}, nil
}

func (f *fakeBackupAPI) ListRecoveryPointsByBackupVault(ctx context.Context, params *backup.ListRecoveryPointsByBackupVaultInput, optFns ...func(*backup.Options)) (*backup.ListRecoveryPointsByBackupVaultOutput, error) {
	return &backup.ListRecoveryPointsByBackupVaultOutput{RecoveryPoints: f.recoveryPoints}, nil
}

type fakeRDSSnapshotAPI struct {
	snapshots []rdstypes.DBSnapshot
}

func (f *fakeRDSSnapshotAPI) DescribeDBSnapshots(ctx context.Context, params *rds.DescribeDBSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error) {
	return &rds.DescribeDBSnapshotsOutput{DBSnapshots: f.snapshots}, nil
}

func newBackupChecker(api *fakeBackupAPI, rdsAPI *fakeRDSSnapshotAPI, cfg types.BackupConfig, now time.Time) *BackupStatusChecker {
	return &BackupStatusChecker{
		region: "ap-southeast-3",
		cfg:    cfg,
		backupFor: func(ctx context.Context, profile string) (backupAPI, error) {
			return api, nil
		},
		rdsFor: func(ctx context.Context, profile string) (rdsSnapshotAPI, error) {
			return rdsAPI, nil
		},
		now:    func() time.Time { return now },
		logger: zerolog.Nop(),
	}
}

func TestBackupCheckHealthy(t *testing.T) {
	now := time.Date(2026, 2, 16, 3, 0, 0, 0, time.UTC)
	api := &fakeBackupAPI{
		jobs: []btypes.BackupJob{
			{
				BackupJobId:  aws.String("job-1"),
				State:        btypes.BackupJobStateCompleted,
				ResourceArn:  aws.String("arn:aws:rds:ap-southeast-3:111122223333:db/prod-db"),
				ResourceType: aws.String("RDS"),
				CreationDate: aws.Time(now.Add(-3 * time.Hour)),
			},
		},
		plans: []btypes.BackupPlansListMember{
			{BackupPlanName: aws.String("daily-plan")},
		},
	}

	result := newBackupChecker(api, nil, types.BackupConfig{}, now).Check(context.Background(), "iris-prod", "111122223333")
	r, ok := result.(entity.BackupResult)
	require.True(t, ok)

	assert.Equal(t, entity.StatusOK, r.Status)
	assert.Equal(t, 1, r.TotalJobs)
	assert.Equal(t, 1, r.CompletedJobs)
	assert.Empty(t, r.Issues)
	assert.Equal(t, []string{"daily-plan"}, r.BackupPlans)
	assert.Equal(t, "prod-db", r.JobDetails[0].ResourceLabel)
}

func TestBackupCheckFlagsFailuresAndIdleVaults(t *testing.T) {
	now := time.Date(2026, 2, 16, 3, 0, 0, 0, time.UTC)
	api := &fakeBackupAPI{
		jobs: []btypes.BackupJob{
			{
				BackupJobId:   aws.String("job-1"),
				State:         btypes.BackupJobStateFailed,
				ResourceArn:   aws.String("arn:aws:ec2:ap-southeast-3:111122223333:volume/vol-1"),
				StatusMessage: aws.String("insufficient permissions"),
				CreationDate:  aws.Time(now.Add(-2 * time.Hour)),
			},
			{
				BackupJobId:  aws.String("job-2"),
				State:        btypes.BackupJobStateExpired,
				CreationDate: aws.Time(now.Add(-4 * time.Hour)),
			},
		},
		vaultPoints: 12,
	}
	cfg := types.BackupConfig{
		Vaults: []types.VaultTarget{
			{Profile: "centralized-s3", VaultName: "central-vault"},
		},
	}

	result := newBackupChecker(api, nil, cfg, now).Check(context.Background(), "centralized-s3", "111122223333")
	r := result.(entity.BackupResult)

	assert.Equal(t, entity.StatusAttention, r.Status)
	assert.Equal(t, 1, r.FailedJobs)
	assert.Equal(t, 1, r.ExpiredJobs)
	assert.Contains(t, r.Issues, "1 failed job(s)")
	assert.Contains(t, r.Issues, "1 expired job(s)")
	assert.Contains(t, r.Issues, "1 vault(s) no recovery points in 24h")

	require.Len(t, r.Vaults, 1)
	assert.Equal(t, int64(12), r.Vaults[0].TotalRecoveryPoints)
	assert.Zero(t, r.Vaults[0].RecoveryPoints24h)
}

func TestBackupCheckRDSSnapshotProfile(t *testing.T) {
	now := time.Date(2026, 2, 16, 3, 0, 0, 0, time.UTC)
	api := &fakeBackupAPI{}
	rdsAPI := &fakeRDSSnapshotAPI{
		snapshots: []rdstypes.DBSnapshot{
			{SnapshotCreateTime: aws.Time(now.Add(-2 * time.Hour))},
			{SnapshotCreateTime: aws.Time(now.Add(-30 * time.Hour))},
		},
	}
	cfg := types.BackupConfig{RDSSnapshotProfiles: []string{"iris-prod"}}

	result := newBackupChecker(api, rdsAPI, cfg, now).Check(context.Background(), "iris-prod", "111122223333")
	r := result.(entity.BackupResult)

	assert.Equal(t, 1, r.RDSSnapshots24h)
	assert.NotContains(t, r.Issues, "No RDS snapshots in 24h")
}

func TestBackupCheckNoRDSSnapshots(t *testing.T) {
	now := time.Date(2026, 2, 16, 3, 0, 0, 0, time.UTC)
	cfg := types.BackupConfig{RDSSnapshotProfiles: []string{"iris-prod"}}

	result := newBackupChecker(&fakeBackupAPI{}, &fakeRDSSnapshotAPI{}, cfg, now).Check(context.Background(), "iris-prod", "111122223333")
	r := result.(entity.BackupResult)

	assert.Equal(t, entity.StatusAttention, r.Status)
	assert.Contains(t, r.Issues, "No RDS snapshots in 24h")
}
