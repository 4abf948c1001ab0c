package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogFileDataCollector struct {
	fileName string
	logger   *zap.Logger
}

var _ EventCollector = new(LogFileDataCollector)

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func (lc *LogFileDataCollector) RecordDepartmentSaved(departmentId string, version int, callSteps int) {
	lc.logger.Info("department_saved", zap.String("department", departmentId), zap.Int("version", version), zap.Int("callSteps", callSteps))
}

func (lc *LogFileDataCollector) RecordReportIngested(reportId string, manager string, calls int, cost float64, duration float64) {
	lc.logger.Info("report_ingested", zap.String("report", reportId), zap.String("manager", manager), zap.Int("calls", calls), zap.Float64("cost", cost), zap.Float64("duration", duration))
}

func (lc *LogFileDataCollector) RecordPDFUploaded(reportId string, blobId string, size int) {
	lc.logger.Info("pdf_uploaded", zap.String("report", reportId), zap.String("blob", blobId), zap.Int("bytes", size))
}

func (lc *LogFileDataCollector) RecordWorkflowDispatched(departmentId string, scheduleId string, scheduledFor string) {
	lc.logger.Info("workflow_dispatched", zap.String("department", departmentId), zap.String("schedule", scheduleId), zap.String("scheduledFor", scheduledFor))
}

func (lc *LogFileDataCollector) Close() error {
	return lc.logger.Sync()
}
