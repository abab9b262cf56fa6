package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanata/aws-monitoring-hub-go/internal/application/usecase"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type stubResult struct {
	entity.ResultMeta
	Issues []string `json:"issues"`
}

type stubChecker struct{ name string }

func (c stubChecker) Name() string { return c.name }
func (c stubChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	return nil
}
func (c stubChecker) FormatReport(result entity.CheckResult) string { return "" }
func (c stubChecker) SectionTitle() string                          { return strings.ToUpper(c.name) }
func (c stubChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(stubResult)
	if !ok || r.Status != entity.StatusSuccess {
		return 0
	}
	return len(r.Issues)
}
func (c stubChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	return nil
}

func sampleRuns() []usecase.CheckRun {
	return []usecase.CheckRun{
		{
			Checker: stubChecker{name: "guardduty"},
			Results: []entity.ProfileResult{
				{
					Profile:     "alpha",
					AccountID:   "111122223333",
					DisplayName: "Alpha Prod",
					Result: stubResult{
						ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess},
						Issues:     []string{"finding-1", "finding-2"},
					},
				},
				{
					Profile:     "beta",
					AccountID:   "444455556666",
					DisplayName: "Beta Prod",
					Result:      entity.NewErrorResult("guardduty", "boom"),
				},
			},
		},
	}
}

func TestExportRunsToCSV(t *testing.T) {
	dir := t.TempDir()

	path, err := NewExporter().ExportRunsToCSV(sampleRuns(), "daily", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "daily_"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"CLI Profile", "AWS Account ID", "Display Name", "Check", "Status", "Issues", "Error"}, rows[0])
	assert.Equal(t, []string{"alpha", "111122223333", "Alpha Prod", "guardduty", "success", "2", ""}, rows[1])
	assert.Equal(t, []string{"beta", "444455556666", "Beta Prod", "guardduty", "error", "0", "boom"}, rows[2])
}

func TestExportRunsToJSON(t *testing.T) {
	dir := t.TempDir()

	path, err := NewExporter().ExportRunsToJSON(sampleRuns(), "Aryanoble", "ap-southeast-3", "daily", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Group   string `json:"group"`
		Region  string `json:"region"`
		Records []struct {
			Profile string `json:"profile"`
			Check   string `json:"check"`
			Status  string `json:"status"`
			Issues  int    `json:"issues"`
			Error   string `json:"error"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Aryanoble", doc.Group)
	assert.Equal(t, "ap-southeast-3", doc.Region)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "alpha", doc.Records[0].Profile)
	assert.Equal(t, 2, doc.Records[0].Issues)
	assert.Equal(t, "boom", doc.Records[1].Error)
}

func TestExportReportToPDF(t *testing.T) {
	dir := t.TempDir()
	report := strings.Join([]string{
		strings.Repeat("=", 70),
		"DAILY MONITORING REPORT - ARYANOBLE GROUP",
		strings.Repeat("=", 70),
		"Status: CLEAR - No anomalies detected",
	}, "\n")

	path, err := NewExporter().ExportReportToPDF(report, "Daily Monitoring Report - Aryanoble", "daily", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateFilenameCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "daily")

	path, err := generateFilename("monitoring", dir, "csv")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCleanRichTags(t *testing.T) {
	in := "[red]ALERT[/red] plain \x1B[31mcolored\x1B[0m text"
	assert.Equal(t, "ALERT plain colored text", cleanRichTags(in))
}
