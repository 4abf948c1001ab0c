package memory

import (
	"context"
	"testing"

	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/stretchr/testify/require"
)

func payload(date string, costs ...float64) model.IngestRequest {
	req := model.IngestRequest{Report: model.IngestReport{Date: date, Manager: "Thandi", Status: "completed"}}
	for i, cost := range costs {
		c := model.IngestCall{
			Timestamp:   date + "T08:0" + string(rune('0'+i)) + ":00Z",
			ManagerName: "Thandi", CalledAbout: "Site status", Status: "completed",
			Duration: 2, Cost: cost,
		}
		c.Summary = &model.IngestSummary{SummaryText: "fine"}
		c.Transcription = &model.IngestTranscription{FullText: "hello"}
		req.Calls = append(req.Calls, c)
	}
	return req
}

func TestIngestFansOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore()

	id, err := store.IngestReport(ctx, payload("2024-06-03", 0.5, 1.0))
	require.NoError(t, err)
	_, err = store.IngestReport(ctx, payload("2024-06-20", 2.0))
	require.NoError(t, err)

	detail, err := store.GetReport(ctx, id)
	require.NoError(t, err)
	require.Len(t, detail.CallIds, 2)

	call, err := store.GetCall(ctx, detail.CallIds[0])
	require.NoError(t, err)
	require.Equal(t, "fine", call.Summary.SummaryText)
	require.Equal(t, "hello", call.Transcription.FullText)

	usage, err := store.GetUsage(ctx, "2024-06")
	require.NoError(t, err)
	require.Equal(t, 3.5, usage.TotalCost)
	require.Equal(t, 6.0, usage.TotalUsage)

	byReport, err := store.ListUsageByReport(ctx, "2024-06")
	require.NoError(t, err)
	require.Len(t, byReport, 2)
	require.Equal(t, 2, byReport[0].CallCount)

	byCall, err := store.ListUsageByCall(ctx, "2024-06")
	require.NoError(t, err)
	require.Len(t, byCall, 3)

	summaries, err := store.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
}

func TestSetReportPDF(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore()
	id, err := store.CreateReport(ctx, model.Report{Date: "2024-06-03", Manager: "Thandi", Status: "completed"})
	require.NoError(t, err)

	require.NoError(t, store.SetReportPDF(ctx, id, "blob_1"))
	detail, err := store.GetReport(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "blob_1", detail.PdfLink)

	require.ErrorAs(t, store.SetReportPDF(ctx, "report_x", "blob_2"), &persistence.NotFoundError{})
}

func TestMissingRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore()
	_, err := store.GetCall(ctx, "call_x")
	require.ErrorAs(t, err, &persistence.NotFoundError{})
	_, err = store.GetUsage(ctx, "1999-01")
	require.ErrorAs(t, err, &persistence.NotFoundError{})
	_, err = store.IngestReport(ctx, payload("not a date"))
	require.Error(t, err)
}
