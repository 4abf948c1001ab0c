package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"go.uber.org/zap"
)

const (
	insertReport = `INSERT INTO reports (id, date, manager, status, summary, total_cost, total_duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertCall = `INSERT INTO calls (id, report_id, called_about, manager_name, status, timestamp, duration, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertSummary       = `INSERT INTO summaries (id, call_id, summary_text) VALUES ($1, $2, $3)`
	insertTranscription = `INSERT INTO transcriptions (id, call_id, full_text, timestamp) VALUES ($1, $2, $3, $4)`
	upsertUsage         = `INSERT INTO usage (billing_month, total_cost, total_usage) VALUES ($1, $2, $3)
		ON CONFLICT (billing_month) DO UPDATE SET
			total_cost = usage.total_cost + EXCLUDED.total_cost,
			total_usage = usage.total_usage + EXCLUDED.total_usage`
	insertUsageByCall = `INSERT INTO usage_by_call (call_id, billing_month, report_id, cost, duration, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`
	insertUsageByReport = `INSERT INTO usage_by_report (report_id, billing_month, call_count, cost, duration, manager, report_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	updateReportPDF = `UPDATE reports SET pdf_link = $2 WHERE id = $1`

	selectReports        = `SELECT id, date, manager, status, summary, total_cost, total_duration, pdf_link, created_at FROM reports`
	selectCalls          = `SELECT id, report_id, called_about, manager_name, status, timestamp, duration, cost FROM calls`
	selectSummaries      = `SELECT id, call_id, summary_text FROM summaries`
	selectTranscriptions = `SELECT id, call_id, full_text, timestamp FROM transcriptions`
	selectUsage          = `SELECT billing_month, total_cost, total_usage FROM usage`
	selectUsageByCall    = `SELECT billing_month, call_id, report_id, cost, duration, timestamp FROM usage_by_call`
	selectUsageByReport  = `SELECT billing_month, report_id, call_count, cost, duration, manager, report_date FROM usage_by_report`
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

type postgresRecordStore struct {
	db    *sql.DB
	newId func(prefix string) string
	now   func() time.Time
}

var _ persistence.RecordStore = new(postgresRecordStore)

func NewPostgresRecordStore(db *sql.DB) *postgresRecordStore {
	return &postgresRecordStore{
		db:    db,
		newId: func(prefix string) string { return prefix + uuid.NewString() },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func storageError(msg string, err error) error {
	logger.Error(msg, zap.Error(err))
	return persistence.StorageLayerError{Message: err.Error()}
}

func (s *postgresRecordStore) CreateReport(ctx context.Context, r model.Report) (string, error) {
	return s.createReport(ctx, s.db, r)
}

func (s *postgresRecordStore) createReport(ctx context.Context, ex execer, r model.Report) (string, error) {
	id := s.newId("report_")
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	if _, err := ex.ExecContext(ctx, insertReport, id, r.Date, r.Manager, r.Status, r.Summary, r.TotalCost, r.TotalDuration, createdAt); err != nil {
		return "", storageError("error inserting report", err)
	}
	return id, nil
}

func (s *postgresRecordStore) CreateCall(ctx context.Context, c model.Call) (string, error) {
	return s.createCall(ctx, s.db, c)
}

func (s *postgresRecordStore) createCall(ctx context.Context, ex execer, c model.Call) (string, error) {
	id := s.newId("call_")
	if _, err := ex.ExecContext(ctx, insertCall, id, c.ReportId, c.CalledAbout, c.ManagerName, c.Status, c.Timestamp, c.Duration, c.Cost); err != nil {
		return "", storageError("error inserting call", err)
	}
	return id, nil
}

func (s *postgresRecordStore) CreateSummary(ctx context.Context, sm model.Summary) (string, error) {
	return s.createSummary(ctx, s.db, sm)
}

func (s *postgresRecordStore) createSummary(ctx context.Context, ex execer, sm model.Summary) (string, error) {
	id := s.newId("summary_")
	if _, err := ex.ExecContext(ctx, insertSummary, id, sm.CallId, sm.SummaryText); err != nil {
		return "", storageError("error inserting summary", err)
	}
	return id, nil
}

func (s *postgresRecordStore) CreateTranscription(ctx context.Context, t model.Transcription) (string, error) {
	return s.createTranscription(ctx, s.db, t)
}

func (s *postgresRecordStore) createTranscription(ctx context.Context, ex execer, t model.Transcription) (string, error) {
	id := s.newId("transcription_")
	if _, err := ex.ExecContext(ctx, insertTranscription, id, t.CallId, t.FullText, t.Timestamp); err != nil {
		return "", storageError("error inserting transcription", err)
	}
	return id, nil
}

// CreateUsage adds cost and usage to the month's rollup, creating it on first use.
func (s *postgresRecordStore) CreateUsage(ctx context.Context, u model.Usage) error {
	if _, err := s.db.ExecContext(ctx, upsertUsage, u.BillingMonth, u.TotalCost, u.TotalUsage); err != nil {
		return storageError("error upserting usage", err)
	}
	return nil
}

// IngestReport fans an executor payload out to every call record table in one transaction.
// Usage rollups are derived from the calls, billed to the month of the report date.
func (s *postgresRecordStore) IngestReport(ctx context.Context, req model.IngestRequest) (string, error) {
	month, err := model.BillingMonth(req.Report.Date)
	if err != nil {
		return "", err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storageError("error starting ingest transaction", err)
	}
	defer tx.Rollback()

	reportId, err := s.createReport(ctx, tx, model.Report{
		Date:          req.Report.Date,
		Manager:       req.Report.Manager,
		Status:        req.Report.Status,
		Summary:       req.Report.Summary,
		TotalCost:     req.Report.TotalCost,
		TotalDuration: req.Report.TotalDuration,
	})
	if err != nil {
		return "", err
	}

	var cost, duration float64
	for _, c := range req.Calls {
		callId, err := s.createCall(ctx, tx, model.Call{
			ReportId:    reportId,
			CalledAbout: c.CalledAbout,
			ManagerName: c.ManagerName,
			Status:      c.Status,
			Timestamp:   c.Timestamp,
			Duration:    c.Duration,
			Cost:        c.Cost,
		})
		if err != nil {
			return "", err
		}
		if c.Transcription != nil {
			if _, err := s.createTranscription(ctx, tx, model.Transcription{CallId: callId, FullText: c.Transcription.FullText, Timestamp: c.Transcription.Timestamp}); err != nil {
				return "", err
			}
		}
		if c.Summary != nil {
			if _, err := s.createSummary(ctx, tx, model.Summary{CallId: callId, SummaryText: c.Summary.SummaryText}); err != nil {
				return "", err
			}
		}
		if _, err := tx.ExecContext(ctx, insertUsageByCall, callId, month, reportId, c.Cost, c.Duration, c.Timestamp); err != nil {
			return "", storageError("error inserting usage by call", err)
		}
		cost += c.Cost
		duration += c.Duration
	}

	if _, err := tx.ExecContext(ctx, insertUsageByReport, reportId, month, len(req.Calls), cost, duration, req.Report.Manager, req.Report.Date); err != nil {
		return "", storageError("error inserting usage by report", err)
	}
	if _, err := tx.ExecContext(ctx, upsertUsage, month, cost, duration); err != nil {
		return "", storageError("error upserting usage", err)
	}
	if err := tx.Commit(); err != nil {
		return "", storageError("error committing ingest transaction", err)
	}
	logger.Info("report ingested", zap.String("report", reportId), zap.Int("calls", len(req.Calls)), zap.String("month", month))
	return reportId, nil
}

func (s *postgresRecordStore) SetReportPDF(ctx context.Context, id string, link string) error {
	res, err := s.db.ExecContext(ctx, updateReportPDF, id, link)
	if err != nil {
		return storageError("error updating report pdf", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("error updating report pdf", err)
	}
	if n == 0 {
		return persistence.NotFoundError{Kind: "report", Id: id}
	}
	return nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("error running query", err)
	}
	defer rows.Close()
	res := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, storageError("error scanning row", err)
		}
		res = append(res, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error reading rows", err)
	}
	return res, nil
}

func queryOne[T any](ctx context.Context, db *sql.DB, kind string, id string, scan func(scanner) (T, error), query string, args ...any) (*T, error) {
	item, err := scan(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NotFoundError{Kind: kind, Id: id}
		}
		return nil, storageError("error reading "+kind, err)
	}
	return &item, nil
}

func scanReport(row scanner) (model.Report, error) {
	var r model.Report
	err := row.Scan(&r.Id, &r.Date, &r.Manager, &r.Status, &r.Summary, &r.TotalCost, &r.TotalDuration, &r.PdfLink, &r.CreatedAt)
	return r, err
}

func scanCall(row scanner) (model.Call, error) {
	var c model.Call
	err := row.Scan(&c.Id, &c.ReportId, &c.CalledAbout, &c.ManagerName, &c.Status, &c.Timestamp, &c.Duration, &c.Cost)
	return c, err
}

func scanSummary(row scanner) (model.Summary, error) {
	var sm model.Summary
	err := row.Scan(&sm.Id, &sm.CallId, &sm.SummaryText)
	return sm, err
}

func scanTranscription(row scanner) (model.Transcription, error) {
	var t model.Transcription
	err := row.Scan(&t.Id, &t.CallId, &t.FullText, &t.Timestamp)
	return t, err
}

func scanUsage(row scanner) (model.Usage, error) {
	var u model.Usage
	err := row.Scan(&u.BillingMonth, &u.TotalCost, &u.TotalUsage)
	return u, err
}

func scanUsageByCall(row scanner) (model.UsageByCall, error) {
	var u model.UsageByCall
	err := row.Scan(&u.BillingMonth, &u.CallId, &u.ReportId, &u.Cost, &u.Duration, &u.Timestamp)
	return u, err
}

func scanUsageByReport(row scanner) (model.UsageByReport, error) {
	var u model.UsageByReport
	err := row.Scan(&u.BillingMonth, &u.ReportId, &u.CallCount, &u.Cost, &u.Duration, &u.Manager, &u.ReportDate)
	return u, err
}

func scanId(row scanner) (string, error) {
	var id string
	err := row.Scan(&id)
	return id, err
}

func (s *postgresRecordStore) ListReports(ctx context.Context) ([]model.Report, error) {
	return queryAll(ctx, s.db, scanReport, selectReports+` ORDER BY created_at DESC`)
}

func (s *postgresRecordStore) ListCalls(ctx context.Context) ([]model.Call, error) {
	return queryAll(ctx, s.db, scanCall, selectCalls+` ORDER BY timestamp DESC`)
}

func (s *postgresRecordStore) ListSummaries(ctx context.Context) ([]model.Summary, error) {
	return queryAll(ctx, s.db, scanSummary, selectSummaries+` ORDER BY id`)
}

func (s *postgresRecordStore) ListTranscriptions(ctx context.Context) ([]model.Transcription, error) {
	return queryAll(ctx, s.db, scanTranscription, selectTranscriptions+` ORDER BY timestamp DESC`)
}

func (s *postgresRecordStore) ListUsage(ctx context.Context) ([]model.Usage, error) {
	return queryAll(ctx, s.db, scanUsage, selectUsage+` ORDER BY billing_month DESC`)
}

func (s *postgresRecordStore) ListUsageByReport(ctx context.Context, month string) ([]model.UsageByReport, error) {
	return queryAll(ctx, s.db, scanUsageByReport, selectUsageByReport+` WHERE billing_month = $1 ORDER BY report_date DESC`, month)
}

func (s *postgresRecordStore) ListUsageByCall(ctx context.Context, month string) ([]model.UsageByCall, error) {
	return queryAll(ctx, s.db, scanUsageByCall, selectUsageByCall+` WHERE billing_month = $1 ORDER BY timestamp`, month)
}

// GetReport returns the report with the ids of its calls in call order.
func (s *postgresRecordStore) GetReport(ctx context.Context, id string) (*model.ReportDetail, error) {
	report, err := queryOne(ctx, s.db, "report", id, scanReport, selectReports+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	callIds, err := queryAll(ctx, s.db, scanId, `SELECT id FROM calls WHERE report_id = $1 ORDER BY timestamp`, id)
	if err != nil {
		return nil, err
	}
	return &model.ReportDetail{Report: *report, CallIds: callIds}, nil
}

// GetCall returns the call with its summary and transcription when they exist.
func (s *postgresRecordStore) GetCall(ctx context.Context, id string) (*model.CallDetail, error) {
	call, err := queryOne(ctx, s.db, "call", id, scanCall, selectCalls+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	detail := &model.CallDetail{Call: *call}
	summary, err := queryOne(ctx, s.db, "summary", id, scanSummary, selectSummaries+` WHERE call_id = $1 LIMIT 1`, id)
	if err != nil && !errors.As(err, &persistence.NotFoundError{}) {
		return nil, err
	}
	detail.Summary = summary
	transcription, err := queryOne(ctx, s.db, "transcription", id, scanTranscription, selectTranscriptions+` WHERE call_id = $1 LIMIT 1`, id)
	if err != nil && !errors.As(err, &persistence.NotFoundError{}) {
		return nil, err
	}
	detail.Transcription = transcription
	return detail, nil
}

func (s *postgresRecordStore) GetSummary(ctx context.Context, id string) (*model.Summary, error) {
	return queryOne(ctx, s.db, "summary", id, scanSummary, selectSummaries+` WHERE id = $1`, id)
}

func (s *postgresRecordStore) GetTranscription(ctx context.Context, id string) (*model.Transcription, error) {
	return queryOne(ctx, s.db, "transcription", id, scanTranscription, selectTranscriptions+` WHERE id = $1`, id)
}

func (s *postgresRecordStore) GetUsage(ctx context.Context, month string) (*model.Usage, error) {
	return queryOne(ctx, s.db, "usage", month, scanUsage, selectUsage+` WHERE billing_month = $1`, month)
}
