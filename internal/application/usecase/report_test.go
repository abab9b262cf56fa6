package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type stubSection struct {
	stubChecker
	title string
}

func (s *stubSection) SectionTitle() string { return s.title }

func (s *stubSection) CountIssues(result entity.CheckResult) int {
	r, ok := result.(stubSectionResult)
	if !ok {
		return 0
	}
	return r.issues
}

func (s *stubSection) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	return []string{"", s.title, "Status: stub"}
}

type stubSectionResult struct {
	entity.ResultMeta
	issues int
}

func sectionRun(name string, perProfile map[string]int, errs []entity.ProfileError) CheckRun {
	chk := &stubSection{stubChecker: stubChecker{name: name}, title: strings.ToUpper(name)}
	var results []entity.ProfileResult
	for _, p := range []string{"alpha", "beta"} {
		results = append(results, entity.ProfileResult{
			Profile:   p,
			AccountID: "111111111111",
			Result: stubSectionResult{
				ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess},
				issues:     perProfile[p],
			},
		})
	}
	return CheckRun{Checker: chk, Results: results, Errors: errs}
}

var reportNow = time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)

func TestBuildDetailedReportClean(t *testing.T) {
	runs := []CheckRun{
		sectionRun("cost", nil, nil),
		sectionRun("guardduty", nil, nil),
		sectionRun("cloudwatch", nil, nil),
	}

	report := BuildDetailedReport(ReportParams{
		GroupName: "Erha",
		Region:    "ap-southeast-3",
		Profiles:  2,
		Now:       reportNow,
	}, runs)

	assert.Contains(t, report, "DAILY MONITORING REPORT - ERHA GROUP")
	assert.Contains(t, report, "Date: August 28, 2026")
	assert.Contains(t, report, "Time: 08:30 WIB")
	assert.Contains(t, report, "Scope: 2 AWS Accounts | Region: ap-southeast-3")
	assert.Contains(t, report, "Security assessment completed across 2 AWS accounts. No new security incidents detected. All systems operating normally.")
	assert.Contains(t, report, "Total Assessed: 2 accounts")
	assert.Contains(t, report, "Clean Accounts: 2")
	assert.Contains(t, report, "Accounts with Issues: 0")
	assert.Contains(t, report, "1. ROUTINE MONITORING: Continue assessment schedule")
	assert.Contains(t, report, "END OF REPORT")
	assert.NotContains(t, report, "WHATSAPP MESSAGE")
}

func TestBuildDetailedReportWithIssuesAndErrors(t *testing.T) {
	runs := []CheckRun{
		sectionRun("cost", map[string]int{"alpha": 2}, nil),
		sectionRun("guardduty", map[string]int{"beta": 1}, []entity.ProfileError{
			{Profile: "beta", CheckName: "guardduty", Message: "token expired"},
		}),
		sectionRun("cloudwatch", map[string]int{"alpha": 3}, nil),
	}

	report := BuildDetailedReport(ReportParams{
		GroupName: "Erha",
		Region:    "ap-southeast-3",
		Profiles:  2,
		Now:       reportNow,
	}, runs)

	assert.Contains(t, report, "1 check error(s) encountered; see CHECK ERRORS section.")
	assert.Contains(t, report, "1 check errors and 2 cost anomalies and 1 new security findings and 3 infrastructure alerts detected requiring attention.")
	assert.Contains(t, report, "Clean Accounts: 0")
	assert.Contains(t, report, "Accounts with Issues: 2")
	assert.Contains(t, report, "  - beta | guardduty: token expired")
	assert.Contains(t, report, "1. INVESTIGATE CHECK ERRORS: Resolve authentication/permission/session issues")
	assert.Contains(t, report, "2. COST REVIEW: Investigate cost anomalies")
	assert.Contains(t, report, "   Affected accounts: alpha")
	assert.Contains(t, report, "3. IMMEDIATE ACTION REQUIRED: Investigate GuardDuty findings")
	assert.Contains(t, report, "4. INFRASTRUCTURE REVIEW: Address CloudWatch alarms")
}

func TestBuildDetailedReportAryanobleAppendsDigests(t *testing.T) {
	backupRun := CheckRun{
		Checker: &stubSection{stubChecker: stubChecker{name: "backup"}, title: "BACKUP STATUS"},
		Results: []entity.ProfileResult{{
			Profile:     "erha-prod",
			AccountID:   "111111111111",
			DisplayName: "Erha Prod",
			Result: entity.BackupResult{
				ResultMeta: entity.ResultMeta{Status: entity.StatusOK},
				TotalJobs:  2,
			},
		}},
	}

	report := BuildDetailedReport(ReportParams{
		GroupName: "Aryanoble",
		Region:    "ap-southeast-3",
		Profiles:  1,
		Now:       reportNow,
	}, []CheckRun{backupRun})

	assert.Contains(t, report, "WHATSAPP MESSAGE (READY TO SEND)")
	assert.Contains(t, report, "--backup")
	assert.Contains(t, report, "Berikut report untuk AryaNoble Backup pada hari ini")
	assert.Contains(t, report, "--rds")
	assert.Contains(t, report, "Tidak ada data RDS untuk profil Aryanoble yang terkonfigurasi.")
}

func TestBuildSimpleReport(t *testing.T) {
	runs := []CheckRun{
		sectionRun("cost", nil, nil),
		sectionRun("guardduty", map[string]int{"alpha": 2}, nil),
	}

	report := BuildSimpleReport(ReportParams{
		Region:   "ap-southeast-3",
		Profiles: 2,
		Now:      reportNow,
	}, runs)

	assert.True(t, strings.HasPrefix(report, "DAILY MONITORING REPORT\n"))
	assert.Contains(t, report, "Security assessment completed across 2 AWS accounts. 2 new security findings detected requiring attention.")
	assert.Contains(t, report, "GUARDDUTY")
	assert.NotContains(t, report, "RECOMMENDATIONS")
}
