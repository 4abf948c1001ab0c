package analytics

import "sync"

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"
const NOOP_DATA_COLLECTOR DataCollectorType = "NOOP"

// EventCollector records business events: departments saved, reports ingested, PDFs
// attached and workflows dispatched.
type EventCollector interface {
	RecordDepartmentSaved(departmentId string, version int, callSteps int)
	RecordReportIngested(reportId string, manager string, calls int, cost float64, duration float64)
	RecordPDFUploaded(reportId string, blobId string, size int)
	RecordWorkflowDispatched(departmentId string, scheduleId string, scheduledFor string)
	Close() error
}

var (
	mu        sync.RWMutex
	collector EventCollector = noopCollector{}
)

func InitDataCollector(config DataCollectorConfig) error {
	var c EventCollector = noopCollector{}
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		fc, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		c = fc
	}
	SetCollector(c)
	return nil
}

func SetCollector(c EventCollector) {
	mu.Lock()
	defer mu.Unlock()
	collector = c
}

func current() EventCollector {
	mu.RLock()
	defer mu.RUnlock()
	return collector
}

func RecordDepartmentSaved(departmentId string, version int, callSteps int) {
	current().RecordDepartmentSaved(departmentId, version, callSteps)
}

func RecordReportIngested(reportId string, manager string, calls int, cost float64, duration float64) {
	current().RecordReportIngested(reportId, manager, calls, cost, duration)
}

func RecordPDFUploaded(reportId string, blobId string, size int) {
	current().RecordPDFUploaded(reportId, blobId, size)
}

func RecordWorkflowDispatched(departmentId string, scheduleId string, scheduledFor string) {
	current().RecordWorkflowDispatched(departmentId, scheduleId, scheduledFor)
}

func Close() error {
	return current().Close()
}

type noopCollector struct{}

func (noopCollector) RecordDepartmentSaved(string, int, int)                     {}
func (noopCollector) RecordReportIngested(string, string, int, float64, float64) {}
func (noopCollector) RecordPDFUploaded(string, string, int)                      {}
func (noopCollector) RecordWorkflowDispatched(string, string, string)            {}
func (noopCollector) Close() error                                               { return nil }
