package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

// 01:30 UTC is 08:30 WIB, morning greeting.
var digestNow = time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)

func profileResult(profile, accountID, display string, res entity.CheckResult) entity.ProfileResult {
	return entity.ProfileResult{Profile: profile, AccountID: accountID, DisplayName: display, Result: res}
}

func TestBuildBackupDigest(t *testing.T) {
	results := []entity.ProfileResult{
		profileResult("erha-prod", "111111111111", "Erha Prod", entity.BackupResult{
			ResultMeta: entity.ResultMeta{Status: entity.StatusOK},
			TotalJobs:  4,
		}),
		profileResult("cis-erha", "222222222222", "CIS Erha", entity.BackupResult{
			ResultMeta:  entity.ResultMeta{Status: entity.StatusAttention},
			TotalJobs:   3,
			FailedJobs:  1,
			ExpiredJobs: 1,
			Issues:      []string{"1 failed job(s)", "1 expired job(s)"},
			JobDetails: []entity.BackupJobDetail{
				{
					State:         "FAILED",
					ResourceLabel: "cis-erha-db",
					Reason:        "Access denied",
					Created:       time.Date(2026, 8, 27, 20, 0, 0, 0, time.UTC),
				},
				{
					State:         "EXPIRED",
					ResourceLabel: "cis-erha-files",
					Created:       time.Date(2026, 8, 27, 21, 0, 0, 0, time.UTC),
				},
			},
		}),
		profileResult("idle-acct", "333333333333", "Idle", entity.BackupResult{
			ResultMeta: entity.ResultMeta{Status: entity.StatusAttention},
		}),
	}

	msg := BuildBackupDigest(digestNow, results)

	assert.True(t, strings.HasPrefix(msg, "Selamat Pagi Team,\r\n"))
	assert.Contains(t, msg, "Berikut report untuk AryaNoble Backup pada hari ini\r\n28-08-2026")
	assert.Contains(t, msg, "Completed:\r\n- Erha Prod - 111111111111")
	assert.Contains(t, msg, "Failed:\r\n- CIS Erha - 222222222222")
	assert.Contains(t, msg, "  Resource: cis-erha-db")
	assert.Contains(t, msg, "  Time: 28-08-2026 03:00 WIB")
	assert.Contains(t, msg, "  Reason: Access denied")
	assert.Contains(t, msg, "Expired:\r\n- CIS Erha - 222222222222")
	assert.Contains(t, msg, "  Reason: No reason")
	assert.Contains(t, msg, "No Backup Activity:\r\n- Idle - 333333333333 (tidak ada backup pada periode)")
}

func TestBuildBackupDigestEmptyBlocks(t *testing.T) {
	msg := BuildBackupDigest(digestNow, nil)
	assert.Contains(t, msg, "Completed:\r\n- (tidak ada)")
	assert.Contains(t, msg, "Failed:\r\n- (tidak ada)")
	assert.Contains(t, msg, "Expired:\r\n- (tidak ada)")
	assert.NotContains(t, msg, "No Backup Activity:")
}

func TestBuildRDSClientDigest(t *testing.T) {
	results := []entity.ProfileResult{
		profileResult("arbel-prod", "444444444444", "Arbel Prod", entity.RDSMetricsResult{
			ResultMeta:  entity.ResultMeta{Status: entity.StatusOK},
			AccountName: "Arbel Prod",
			AccountID:   "444444444444",
			WindowHours: 12,
			Instances: map[string]entity.InstanceMetrics{
				"reader": {InstanceID: "arbel-reader", Metrics: map[string]entity.MetricReading{
					"CPUUtilization": {Status: entity.MetricStatusOK, Message: "CPU Utilization: 20% (normal)"},
				}},
				"writer": {InstanceID: "arbel-writer", Metrics: map[string]entity.MetricReading{
					"ACUUtilization": {Status: entity.MetricStatusWarn, Message: "ACU Utilization: 90% (di atas 75%)"},
				}},
			},
		}),
		profileResult("other", "555555555555", "Other", entity.RDSMetricsResult{
			ResultMeta: entity.ResultMeta{Status: entity.StatusSkipped},
		}),
	}

	msg := BuildRDSClientDigest(digestNow, results)

	assert.Contains(t, msg, "Selamat Pagi Team,")
	assert.Contains(t, msg, "Berikut Daily report untuk akun id Arbel Prod (444444444444) pada Pagi ini (Data per 08:30 WIB, monitoring 12 jam terakhir)")
	assert.Contains(t, msg, "28-08-2026")
	assert.Contains(t, msg, "* ACU Utilization: 90% (di atas 75%)")
	assert.Contains(t, msg, "* DatabaseConnections: Data tidak tersedia")

	// writer block renders before the reader block
	assert.Less(t, strings.Index(msg, "Writer:"), strings.Index(msg, "Reader:"))
	assert.NotContains(t, msg, "555555555555")
}

func TestBuildRDSClientDigestEmpty(t *testing.T) {
	msg := BuildRDSClientDigest(digestNow, nil)
	assert.Equal(t, "Tidak ada data RDS untuk profil Aryanoble yang terkonfigurasi.", msg)
}

func TestBuildAlarmDigest(t *testing.T) {
	results := []entity.ProfileResult{
		profileResult("arbel-prod", "444444444444", "Arbel Prod", entity.AlarmVerificationResult{
			ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess},
			Alarms: []entity.AlarmVerification{
				{AlarmName: "cpu-high", Status: entity.StatusSuccess, RecommendedAction: entity.ActionReportNow, OngoingMinutes: 25},
				{AlarmName: "mem-low", Status: entity.StatusSuccess, RecommendedAction: entity.ActionMonitor, OngoingMinutes: 4},
				{AlarmName: "disk-full", Status: entity.StatusSuccess, RecommendedAction: entity.ActionNoReportRecovered, BreachDurationMinutes: 12},
				{AlarmName: "ghost", Status: entity.StatusNotFound},
			},
		}),
	}

	msg := BuildAlarmDigest(digestNow, results)

	assert.Contains(t, msg, "*Arbel Alarm Verification* | 08:30 WIB")
	assert.Contains(t, msg, "Summary: REPORT_NOW=1 | MONITOR=1 | RECOVERED=1")
	assert.Contains(t, msg, "- cpu-high (arbel-prod) | 25m ongoing")
	assert.Contains(t, msg, "- mem-low (arbel-prod) | 4m ongoing")
	assert.Contains(t, msg, "- disk-full (arbel-prod) | recovered 12m")
	assert.Contains(t, msg, "- ghost (arbel-prod/444444444444)")
}

func TestBuildAlarmDigestEmpty(t *testing.T) {
	msg := BuildAlarmDigest(digestNow, nil)
	assert.Equal(t, "Tidak ada data alarm verification yang relevan.", msg)
}

func TestBuildBudgetDigest(t *testing.T) {
	results := []entity.ProfileResult{
		profileResult("connect-prod", "620463044477", "Connect Prod", entity.BudgetResult{
			ResultMeta:  entity.ResultMeta{Status: entity.StatusAttention},
			AccountName: "Connect Prod (Non Cis)",
			AccountID:   "620463044477",
			Items: []entity.BudgetItem{{
				BudgetName:    "Budget-Log-Only-CONNECT-Prod",
				Actual:        9.11,
				Limit:         7.00,
				Percent:       130.14,
				OverAmount:    2.11,
				IsOverBudget:  true,
				ThresholdHits: []float64{95},
			}},
		}),
		profileResult("cis-erha", "451916275465", "CIS Erha", entity.BudgetResult{
			ResultMeta:  entity.ResultMeta{Status: entity.StatusOK},
			AccountName: "CIS Erha",
			AccountID:   "451916275465",
		}),
	}

	msg := BuildBudgetDigest(results)

	assert.Contains(t, msg, "1) Account 620463044477 - Connect Prod (Non Cis)")
	assert.Contains(t, msg, "- Budget-Log-Only-CONNECT-Prod: $9.11 / $7.00 (130.14%) -> Over $2.11")
	assert.Contains(t, msg, "2) Account 451916275465 - CIS Erha")
	assert.Contains(t, msg, "- Tidak ada budget melewati alert threshold")
}

func TestBuildBudgetDigestEmpty(t *testing.T) {
	msg := BuildBudgetDigest(nil)
	assert.Equal(t, "Tidak ada data budget untuk profil yang terkonfigurasi.", msg)
}
