package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohitkumar/checkin/analytics"
	"github.com/mohitkumar/checkin/export"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"go.uber.org/zap"
)

const PDF_CONTENT_TYPE = "application/pdf"

// InvalidRequestError lists every problem with an ingestion payload.
type InvalidRequestError struct {
	Details []string
}

func (e InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %d problems", len(e.Details))
}

type RecordService struct {
	store persistence.RecordStore
	blobs persistence.BlobStore
}

func NewRecordService(store persistence.RecordStore, blobs persistence.BlobStore) *RecordService {
	return &RecordService{store: store, blobs: blobs}
}

func (s *RecordService) Store() persistence.RecordStore {
	return s.store
}

// Ingest validates and stores a call executor payload, returning the new report id.
func (s *RecordService) Ingest(ctx context.Context, req model.IngestRequest) (string, error) {
	if problems := req.Validate(); len(problems) > 0 {
		return "", InvalidRequestError{Details: problems}
	}
	id, err := s.store.IngestReport(ctx, req)
	if err != nil {
		return "", err
	}
	var cost, duration float64
	for _, c := range req.Calls {
		cost += c.Cost
		duration += c.Duration
	}
	analytics.RecordReportIngested(id, req.Report.Manager, len(req.Calls), cost, duration)
	return id, nil
}

// UploadPDF stores the document and links it to the report.
func (s *RecordService) UploadPDF(ctx context.Context, reportId string, data []byte) (string, error) {
	if _, err := s.store.GetReport(ctx, reportId); err != nil {
		return "", err
	}
	blobId, err := s.blobs.Put(ctx, data, PDF_CONTENT_TYPE)
	if err != nil {
		return "", err
	}
	if err := s.store.SetReportPDF(ctx, reportId, blobId); err != nil {
		return "", err
	}
	logger.Info("stored report pdf", zap.String("report", reportId), zap.String("blob", blobId), zap.Int("bytes", len(data)))
	analytics.RecordPDFUploaded(reportId, blobId, len(data))
	return blobId, nil
}

// ReportPDF returns the document linked to a report.
func (s *RecordService) ReportPDF(ctx context.Context, reportId string) ([]byte, string, error) {
	report, err := s.store.GetReport(ctx, reportId)
	if err != nil {
		return nil, "", err
	}
	if report.PdfLink == "" {
		return nil, "", persistence.NotFoundError{Kind: "pdf", Id: reportId}
	}
	return s.blobs.Get(ctx, report.PdfLink)
}

// MonthUsage returns the rollup for a month with its per report and per call rows. A
// month without usage yields zero totals.
func (s *RecordService) MonthUsage(ctx context.Context, month string) (model.Usage, []model.UsageByReport, []model.UsageByCall, error) {
	usage, err := s.store.GetUsage(ctx, month)
	if err != nil {
		if !errors.As(err, &persistence.NotFoundError{}) {
			return model.Usage{}, nil, nil, err
		}
		usage = &model.Usage{BillingMonth: month}
	}
	byReport, err := s.store.ListUsageByReport(ctx, month)
	if err != nil {
		return model.Usage{}, nil, nil, err
	}
	byCall, err := s.store.ListUsageByCall(ctx, month)
	if err != nil {
		return model.Usage{}, nil, nil, err
	}
	return *usage, byReport, byCall, nil
}

func (s *RecordService) ExportUsage(ctx context.Context, month string) ([]byte, error) {
	usage, byReport, byCall, err := s.MonthUsage(ctx, month)
	if err != nil {
		return nil, err
	}
	return export.UsageWorkbook(usage, byReport, byCall)
}
