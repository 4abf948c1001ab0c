package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mohitkumar/checkin/model"
	"github.com/stretchr/testify/require"
)

const draftYAML = `
department:
  name: Construction
  description: Site work
staff:
  - id: staff_1
    name: Thandi
    phone: "+27 81 123 4567"
    position: Supervisor
    callOrder: 1
    callConfig:
      enabled: true
      callPurpose: Daily site status
      captureFields:
        - name: jobs_today
          label: Jobs Today
          type: number
          required: true
      escalationEnabled: true
      escalationContacts: [staff_2]
  - id: staff_2
    name: Lerato
    phone: "+27 82 555 0000"
    position: Manager
schedule:
  cron: "0 9 * * 1-5"
  timeZone: Africa/Johannesburg
`

func writeFile(t *testing.T, name string, content []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	draft := writeFile(t, "draft.yaml", []byte(draftYAML))

	out, err := execute(t, "generate", "--draft", draft)
	require.NoError(t, err)
	var wf model.VAPIWorkflow
	require.NoError(t, json.Unmarshal([]byte(out), &wf))
	require.Equal(t, "Construction Individual Staff Workflow", wf.Name)
	require.Len(t, wf.CallSteps(), 1)

	out, err = execute(t, "generate", "--draft", draft, "--output", "code")
	require.NoError(t, err)
	require.Contains(t, out, "Construction")

	_, err = execute(t, "generate", "--draft", draft, "--output", "pdf")
	require.Error(t, err)

	incomplete := writeFile(t, "incomplete.yaml", []byte("department:\n  name: Empty\n"))
	_, err = execute(t, "generate", "--draft", incomplete)
	require.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	draft := writeFile(t, "draft.yaml", []byte(draftYAML))
	out, err := execute(t, "generate", "--draft", draft)
	require.NoError(t, err)
	wf := writeFile(t, "workflow.json", []byte(out))

	out, err = execute(t, "inspect", "--file", wf, "--path", "$.steps[0].params.target")
	require.NoError(t, err)
	require.JSONEq(t, `"+27 81 123 4567"`, out)
}

func TestPushReportCommand(t *testing.T) {
	var got model.IngestRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"reportId":"report_1"}`))
	}))
	defer ts.Close()

	payload := writeFile(t, "report.json", []byte(`{"report":{"date":"2024-06-03","manager":"Thandi","status":"completed"},"calls":[]}`))
	out, err := execute(t, "push-report", "--server", ts.URL, "--file", payload)
	require.NoError(t, err)
	require.Equal(t, "report_1\n", out)
	require.Equal(t, "Thandi", got.Report.Manager)
}
