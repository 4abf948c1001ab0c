package export

import (
	"bytes"
	"testing"

	"github.com/mohitkumar/checkin/model"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFigures(t *testing.T) {
	f := Figures(model.Usage{BillingMonth: "2024-06", TotalCost: 3, TotalUsage: 12}, []model.UsageByReport{
		{ReportId: "report_1", CallCount: 2},
		{ReportId: "report_2", CallCount: 2},
	})
	require.Equal(t, 3.0, f.AvgMinutesPerCall)
	require.Equal(t, 0.25, f.CostPerMinute)
	require.Equal(t, 2, f.Reports)

	empty := Figures(model.Usage{BillingMonth: "2024-07"}, nil)
	require.Zero(t, empty.AvgMinutesPerCall)
	require.Zero(t, empty.CostPerMinute)
}

func TestUsageWorkbook(t *testing.T) {
	data, err := UsageWorkbook(
		model.Usage{BillingMonth: "2024-06", TotalCost: 1.5, TotalUsage: 7},
		[]model.UsageByReport{{BillingMonth: "2024-06", ReportId: "report_1", CallCount: 2, Cost: 1.5, Duration: 7, Manager: "Thandi", ReportDate: "2024-06-03"}},
		[]model.UsageByCall{
			{BillingMonth: "2024-06", CallId: "call_1", ReportId: "report_1", Cost: 0.5, Duration: 3, Timestamp: "2024-06-03T08:00:00Z"},
			{BillingMonth: "2024-06", CallId: "call_2", ReportId: "report_1", Cost: 1, Duration: 4, Timestamp: "2024-06-03T08:05:00Z"},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{SUMMARY_SHEET, REPORTS_SHEET, CALLS_SHEET}, f.GetSheetList())

	month, err := f.GetCellValue(SUMMARY_SHEET, "B2")
	require.NoError(t, err)
	require.Equal(t, "2024-06", month)

	manager, err := f.GetCellValue(REPORTS_SHEET, "C2")
	require.NoError(t, err)
	require.Equal(t, "Thandi", manager)

	rows, err := f.GetRows(CALLS_SHEET)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "call_2", rows[2][0])
}
