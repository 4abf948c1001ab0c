package export

import (
	"bytes"
	"fmt"

	"github.com/mohitkumar/checkin/model"
	"github.com/xuri/excelize/v2"
)

const (
	SUMMARY_SHEET = "Summary"
	REPORTS_SHEET = "Reports"
	CALLS_SHEET   = "Calls"
)

// UsageFigures are the derived numbers shown for a billing month.
type UsageFigures struct {
	BillingMonth      string  `json:"billingMonth"`
	TotalMinutes      float64 `json:"totalMinutes"`
	TotalCost         float64 `json:"totalCost"`
	AvgMinutesPerCall float64 `json:"avgMinutesPerCall"`
	CostPerMinute     float64 `json:"costPerMinute"`
	Reports           int     `json:"reports"`
}

// Figures computes the usage summary. Ratios over an empty month are zero.
func Figures(usage model.Usage, byReport []model.UsageByReport) UsageFigures {
	calls := 0
	for _, r := range byReport {
		calls += r.CallCount
	}
	f := UsageFigures{
		BillingMonth: usage.BillingMonth,
		TotalMinutes: usage.TotalUsage,
		TotalCost:    usage.TotalCost,
		Reports:      len(byReport),
	}
	if calls > 0 {
		f.AvgMinutesPerCall = usage.TotalUsage / float64(calls)
	}
	if usage.TotalUsage > 0 {
		f.CostPerMinute = usage.TotalCost / usage.TotalUsage
	}
	return f
}

// UsageWorkbook renders a month of usage as an XLSX workbook with a summary sheet and one
// sheet each for the per report and per call rows.
func UsageWorkbook(usage model.Usage, byReport []model.UsageByReport, byCall []model.UsageByCall) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SUMMARY_SHEET); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{REPORTS_SHEET, CALLS_SHEET} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	figures := Figures(usage, byReport)
	summary := [][]any{
		{"Billing Month", figures.BillingMonth},
		{"Total Minutes", figures.TotalMinutes},
		{"Total Cost", figures.TotalCost},
		{"Avg Minutes Per Call", figures.AvgMinutesPerCall},
		{"Cost Per Minute", figures.CostPerMinute},
		{"Reports", figures.Reports},
	}
	if err := writeRows(f, SUMMARY_SHEET, []string{"Metric", "Value"}, summary, headerStyle); err != nil {
		return nil, err
	}

	reports := make([][]any, 0, len(byReport))
	for _, r := range byReport {
		reports = append(reports, []any{r.ReportId, r.ReportDate, r.Manager, r.CallCount, r.Duration, r.Cost})
	}
	if err := writeRows(f, REPORTS_SHEET, []string{"Report", "Date", "Manager", "Calls", "Minutes", "Cost"}, reports, headerStyle); err != nil {
		return nil, err
	}

	calls := make([][]any, 0, len(byCall))
	for _, c := range byCall {
		calls = append(calls, []any{c.CallId, c.ReportId, c.Timestamp, c.Duration, c.Cost})
	}
	if err := writeRows(f, CALLS_SHEET, []string{"Call", "Report", "Timestamp", "Minutes", "Cost"}, calls, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
