package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/mohitkumar/checkin/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

// NotFoundError reports a missing entity of the given kind.
type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

type DepartmentStore interface {
	Save(ctx context.Context, final model.FinalDepartmentObject) error
	Get(ctx context.Context, id string) (*model.FinalDepartmentObject, error)
	List(ctx context.Context) ([]model.FinalDepartmentObject, error)
	Deactivate(ctx context.Context, id string, at time.Time) error
	DepartmentForSchedule(ctx context.Context, scheduleId string) (string, error)
}

type RecordStore interface {
	CreateReport(ctx context.Context, report model.Report) (string, error)
	CreateCall(ctx context.Context, call model.Call) (string, error)
	CreateSummary(ctx context.Context, summary model.Summary) (string, error)
	CreateTranscription(ctx context.Context, transcription model.Transcription) (string, error)
	CreateUsage(ctx context.Context, usage model.Usage) error

	ListReports(ctx context.Context) ([]model.Report, error)
	ListCalls(ctx context.Context) ([]model.Call, error)
	ListSummaries(ctx context.Context) ([]model.Summary, error)
	ListTranscriptions(ctx context.Context) ([]model.Transcription, error)
	ListUsage(ctx context.Context) ([]model.Usage, error)
	ListUsageByReport(ctx context.Context, month string) ([]model.UsageByReport, error)
	ListUsageByCall(ctx context.Context, month string) ([]model.UsageByCall, error)

	GetReport(ctx context.Context, id string) (*model.ReportDetail, error)
	GetCall(ctx context.Context, id string) (*model.CallDetail, error)
	GetSummary(ctx context.Context, id string) (*model.Summary, error)
	GetTranscription(ctx context.Context, id string) (*model.Transcription, error)
	GetUsage(ctx context.Context, month string) (*model.Usage, error)

	// IngestReport writes a report with all of its calls, transcriptions, summaries and
	// usage rows atomically and returns the new report id.
	IngestReport(ctx context.Context, req model.IngestRequest) (string, error)
	SetReportPDF(ctx context.Context, id string, link string) error
}

type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, id string) ([]byte, string, error)
}

type Queue interface {
	Push(ctx context.Context, message []byte) error
	Pop(ctx context.Context, batchSize int) ([]string, error)
}

// ScheduleMarks remembers the last activation handled per schedule.
type ScheduleMarks interface {
	LastRun(ctx context.Context, scheduleId string) (time.Time, bool, error)
	MarkRun(ctx context.Context, scheduleId string, at time.Time) error
}
