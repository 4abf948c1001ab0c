package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *postgresRecordStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewPostgresRecordStore(db)
	seq := 0
	store.newId = func(prefix string) string {
		seq++
		return fmt.Sprintf("%s%d", prefix, seq)
	}
	store.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return db, mock, store
}

func ingestRequest() model.IngestRequest {
	req := model.IngestRequest{
		Report: model.IngestReport{
			Date: "2024-06-03", Manager: "Thandi", Status: "completed",
			Summary: "All sites on track", TotalCost: 1.5, TotalDuration: 7,
		},
	}
	for i, cost := range []float64{0.5, 1.0} {
		c := model.IngestCall{
			Timestamp:   fmt.Sprintf("2024-06-03T08:0%d:00Z", i),
			ManagerName: "Thandi",
			CalledAbout: "Site status",
			Status:      "completed",
			Duration:    float64(3 + i),
			Cost:        cost,
		}
		c.Transcription = &model.IngestTranscription{FullText: "hello", Timestamp: c.Timestamp}
		c.Summary = &model.IngestSummary{SummaryText: "fine"}
		req.Calls = append(req.Calls, c)
	}
	return req
}

func TestIngestReport(t *testing.T) {
	_, mock, store := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reports`).
		WithArgs("report_1", "2024-06-03", "Thandi", "completed", "All sites on track", 1.5, 7.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	seq := 2
	for i, cost := range []float64{0.5, 1.0} {
		callId := fmt.Sprintf("call_%d", seq)
		mock.ExpectExec(`INSERT INTO calls`).
			WithArgs(callId, "report_1", "Site status", "Thandi", "completed", sqlmock.AnyArg(), float64(3+i), cost).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO transcriptions`).
			WithArgs(fmt.Sprintf("transcription_%d", seq+1), callId, "hello", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO summaries`).
			WithArgs(fmt.Sprintf("summary_%d", seq+2), callId, "fine").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO usage_by_call`).
			WithArgs(callId, "2024-06", "report_1", cost, float64(3+i), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		seq += 3
	}
	mock.ExpectExec(`INSERT INTO usage_by_report`).
		WithArgs("report_1", "2024-06", 2, 1.5, 7.0, "Thandi", "2024-06-03").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO usage \(billing_month`).
		WithArgs("2024-06", 1.5, 7.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := store.IngestReport(context.Background(), ingestRequest())
	require.NoError(t, err)
	assert.Equal(t, "report_1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestReportRollsBack(t *testing.T) {
	_, mock, store := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reports`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO calls`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.IngestReport(context.Background(), ingestRequest())
	var sle persistence.StorageLayerError
	require.True(t, errors.As(err, &sle))
	assert.Contains(t, sle.Message, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestReportBadDate(t *testing.T) {
	_, mock, store := setupMockDB(t)
	req := ingestRequest()
	req.Report.Date = "yesterday"
	_, err := store.IngestReport(context.Background(), req)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetReportPDF(t *testing.T) {
	_, mock, store := setupMockDB(t)

	mock.ExpectExec(`UPDATE reports SET pdf_link`).
		WithArgs("report_1", "blob_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reports SET pdf_link`).
		WithArgs("report_x", "blob_2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.SetReportPDF(context.Background(), "report_1", "blob_1"))
	err := store.SetReportPDF(context.Background(), "report_x", "blob_2")
	var nf persistence.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "report", nf.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReports(t *testing.T) {
	_, mock, store := setupMockDB(t)
	created := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date", "manager", "status", "summary", "total_cost", "total_duration", "pdf_link", "created_at"}).
		AddRow("report_2", "2024-06-04", "Lerato", "completed", "ok", 2.0, 8.0, "", created.Add(24*time.Hour)).
		AddRow("report_1", "2024-06-03", "Thandi", "completed", "ok", 1.5, 7.0, "blob_1", created)
	mock.ExpectQuery(`SELECT (.+) FROM reports ORDER BY created_at DESC`).WillReturnRows(rows)

	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "report_2", reports[0].Id)
	assert.Equal(t, "blob_1", reports[1].PdfLink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReport(t *testing.T) {
	_, mock, store := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id = \$1`).
		WithArgs("report_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "manager", "status", "summary", "total_cost", "total_duration", "pdf_link", "created_at"}).
			AddRow("report_1", "2024-06-03", "Thandi", "completed", "ok", 1.5, 7.0, "", time.Now()))
	mock.ExpectQuery(`SELECT id FROM calls WHERE report_id = \$1`).
		WithArgs("report_1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("call_2").AddRow("call_5"))

	detail, err := store.GetReport(context.Background(), "report_1")
	require.NoError(t, err)
	assert.Equal(t, "Thandi", detail.Manager)
	assert.Equal(t, []string{"call_2", "call_5"}, detail.CallIds)

	mock.ExpectQuery(`SELECT (.+) FROM reports WHERE id = \$1`).
		WithArgs("report_x").
		WillReturnError(sql.ErrNoRows)
	_, err = store.GetReport(context.Background(), "report_x")
	require.ErrorAs(t, err, &persistence.NotFoundError{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCallWithoutSummary(t *testing.T) {
	_, mock, store := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM calls WHERE id = \$1`).
		WithArgs("call_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "report_id", "called_about", "manager_name", "status", "timestamp", "duration", "cost"}).
			AddRow("call_1", "report_1", "Site status", "Thandi", "completed", "2024-06-03T08:00:00Z", 3.0, 0.5))
	mock.ExpectQuery(`SELECT (.+) FROM summaries WHERE call_id = \$1`).
		WithArgs("call_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "call_id", "summary_text"}))
	mock.ExpectQuery(`SELECT (.+) FROM transcriptions WHERE call_id = \$1`).
		WithArgs("call_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "call_id", "full_text", "timestamp"}).
			AddRow("transcription_1", "call_1", "hello", "2024-06-03T08:00:00Z"))

	detail, err := store.GetCall(context.Background(), "call_1")
	require.NoError(t, err)
	assert.Nil(t, detail.Summary)
	require.NotNil(t, detail.Transcription)
	assert.Equal(t, "hello", detail.Transcription.FullText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsageByReport(t *testing.T) {
	_, mock, store := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM usage_by_report WHERE billing_month = \$1`).
		WithArgs("2024-06").
		WillReturnRows(sqlmock.NewRows([]string{"billing_month", "report_id", "call_count", "cost", "duration", "manager", "report_date"}).
			AddRow("2024-06", "report_1", 2, 1.5, 7.0, "Thandi", "2024-06-03"))

	rows, err := store.ListUsageByReport(context.Background(), "2024-06")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].CallCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	for range schema {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
