package analytics

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFileDataCollector(t *testing.T) {
	file := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, InitDataCollector(DataCollectorConfig{FileName: file, CollectorType: LOG_FILE_DATA_COLLECTOR}))
	t.Cleanup(func() { SetCollector(noopCollector{}) })

	RecordReportIngested("report_1", "Thandi", 2, 1.5, 7)
	RecordWorkflowDispatched("dept_1", "schedule_1", "2024-06-03T08:00:00+02:00")
	require.NoError(t, Close())

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	var events []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}
	require.Len(t, events, 2)
	require.Equal(t, "report_ingested", events[0]["msg"])
	require.Equal(t, "report_1", events[0]["report"])
	require.EqualValues(t, 2, events[0]["calls"])
	require.Equal(t, "workflow_dispatched", events[1]["msg"])
	require.Contains(t, events[1], "ts")
}

func TestNoopByDefault(t *testing.T) {
	require.NoError(t, InitDataCollector(DataCollectorConfig{}))
	RecordPDFUploaded("report_1", "blob_1", 10)
	RecordDepartmentSaved("dept_1", 1, 2)
	require.NoError(t, Close())
}
