package entity

import "time"

// BackupJobDetail is one AWS Backup job inside the reporting window.
type BackupJobDetail struct {
	JobID         string    `json:"job_id"`
	State         string    `json:"state"`
	Resource      string    `json:"resource"`
	ResourceLabel string    `json:"resource_label"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason,omitempty"`
	Created       time.Time `json:"created"`
	CreatedWIB    string    `json:"created_wib"`
}

// VaultSummary aggregates recovery point activity for one Backup vault.
type VaultSummary struct {
	VaultName           string   `json:"vault_name"`
	TotalRecoveryPoints int64    `json:"total_recovery_points"`
	RecoveryPoints24h   int      `json:"recovery_points_24h"`
	Resources24h        []string `json:"resources_24h,omitempty"`
	Error               string   `json:"error,omitempty"`
}

// BackupResult is the outcome of the backup status check for one account.
// Status is "OK" or "ATTENTION REQUIRED" on success.
type BackupResult struct {
	ResultMeta
	Region          string            `json:"region"`
	CheckedAt       time.Time         `json:"checked_at_utc"`
	WindowStart     time.Time         `json:"window_start_utc"`
	TotalJobs       int               `json:"total_jobs"`
	CompletedJobs   int               `json:"completed_jobs"`
	FailedJobs      int               `json:"failed_jobs"`
	ExpiredJobs     int               `json:"expired_jobs"`
	JobDetails      []BackupJobDetail `json:"job_details"`
	BackupPlans     []string          `json:"backup_plans"`
	Vaults          []VaultSummary    `json:"vaults,omitempty"`
	RDSSnapshots24h int               `json:"rds_snapshots_24h"`
	Issues          []string          `json:"issues"`
}
