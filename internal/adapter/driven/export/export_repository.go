// Package export grava os resultados das checagens em arquivos CSV,
// JSON e PDF para arquivamento e distribuição.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/primanata/aws-monitoring-hub-go/internal/application/usecase"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/checker"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

// Exporter grava relatórios de monitoramento em disco.
type Exporter struct{}

// NewExporter cria um novo Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// runRecord is one profile/check pair in the JSON export.
type runRecord struct {
	Profile     string             `json:"profile"`
	AccountID   string             `json:"account_id"`
	DisplayName string             `json:"display_name"`
	Check       string             `json:"check"`
	Status      string             `json:"status"`
	Issues      int                `json:"issues"`
	Error       string             `json:"error,omitempty"`
	Result      entity.CheckResult `json:"result"`
}

type runDocument struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Group       string      `json:"group,omitempty"`
	Region      string      `json:"region"`
	Records     []runRecord `json:"records"`
}

// flatten turns check runs into export records, one per profile/check.
func flatten(runs []usecase.CheckRun) []runRecord {
	var records []runRecord
	for _, run := range runs {
		cc, consolidated := run.Checker.(checker.ConsolidatedChecker)
		for _, pr := range run.Results {
			rec := runRecord{
				Profile:     pr.Profile,
				AccountID:   pr.AccountID,
				DisplayName: pr.DisplayName,
				Check:       run.Checker.Name(),
				Result:      pr.Result,
			}
			if pr.Result != nil {
				rec.Status = pr.Result.CheckStatus()
				rec.Error = pr.Result.ErrorMessage()
			}
			if consolidated {
				rec.Issues = cc.CountIssues(pr.Result)
			}
			records = append(records, rec)
		}
	}
	return records
}

// ExportRunsToJSON grava os resultados estruturados em um arquivo JSON.
func (e *Exporter) ExportRunsToJSON(runs []usecase.CheckRun, group, region, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	doc := runDocument{
		GeneratedAt: time.Now().UTC(),
		Group:       group,
		Region:      region,
		Records:     flatten(runs),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling results: %w", err)
	}
	if err := os.WriteFile(outputFilename, data, 0644); err != nil {
		return "", fmt.Errorf("error writing JSON file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// ExportRunsToCSV grava um resumo tabular, uma linha por conta e checagem.
func (e *Exporter) ExportRunsToCSV(runs []usecase.CheckRun, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"CLI Profile", "AWS Account ID", "Display Name", "Check", "Status", "Issues", "Error"})
	for _, rec := range flatten(runs) {
		writer.Write([]string{
			rec.Profile,
			rec.AccountID,
			rec.DisplayName,
			rec.Check,
			rec.Status,
			fmt.Sprintf("%d", rec.Issues),
			rec.Error,
		})
	}

	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// ExportReportToPDF grava o relatório consolidado em texto como PDF.
func (e *Exporter) ExportReportToPDF(report, title, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", title)), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	for _, line := range strings.Split(cleanRichTags(report), "\n") {
		pdf.MultiCell(190, 4, tr(line), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
