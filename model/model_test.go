package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallStepFlattensParams(t *testing.T) {
	order := 2
	step := Step{
		Type:   STEP_TYPE_CALL,
		StepId: "call_staff_1",
		Call: &CallStep{
			StaffMember: StaffMemberRef{Id: "staff_1", Name: "Thandi", Phone: "+27-81-000", Role: POSITION_MANAGER, CallOrder: &order},
			Params:      CallParams{Target: "+27-81-000", Voice: VOICE_AI, Script: []string{"hi"}, TimeoutMinutes: 5, MaxRetries: 3, Purpose: "status"},
			Capture:     []CaptureSpec{{Field: "jobs_today", Label: "Jobs Today", Type: FIELD_TYPE_NUMBER, Required: true}},
		},
	}
	data, err := json.Marshal(step)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "call", raw["type"])
	require.Equal(t, "call_staff_1", raw["stepId"])
	params := raw["params"].(map[string]any)
	require.Equal(t, "+27-81-000", params["target"])
	require.Equal(t, float64(5), params["timeout_minutes"])
	require.NotContains(t, raw, "escalation")

	var back Step
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, step, back)
}

func TestReportStepDecodes(t *testing.T) {
	data := []byte(`{"type":"report","stepId":"generate_report","params":{"fields":["f1"],"output":"pdf","storage":"reports/d/{{timestamp}}.pdf","template":"department_workflow_report","department":{"id":"d","name":"Ops"}}}`)
	var s Step
	require.NoError(t, json.Unmarshal(data, &s))
	require.Nil(t, s.Call)
	require.NotNil(t, s.Report)
	require.Equal(t, []string{"f1"}, s.Report.Fields)
	require.Equal(t, "reports/d/{{timestamp}}.pdf", s.Report.Storage)
}

func TestStepRejectsUnknownType(t *testing.T) {
	var s Step
	require.Error(t, json.Unmarshal([]byte(`{"type":"notify"}`), &s))
	_, err := json.Marshal(Step{Type: STEP_TYPE_CALL, StepId: "x"})
	require.Error(t, err)
}

func TestBillingMonth(t *testing.T) {
	m, err := BillingMonth("2025-03-14")
	require.NoError(t, err)
	require.Equal(t, "2025-03", m)

	m, err = BillingMonth("2025-12-01T08:00:00+02:00")
	require.NoError(t, err)
	require.Equal(t, "2025-12", m)

	_, err = BillingMonth("yesterday")
	require.Error(t, err)
}

func TestIngestRequestValidate(t *testing.T) {
	req := IngestRequest{
		Report: IngestReport{Date: "2025-03-14", Manager: "Sipho", Status: "complete"},
		Calls: []IngestCall{
			{
				Timestamp: "2025-03-14T08:00:00Z", ManagerName: "Sipho", CalledAbout: "daily", Status: "ended", Duration: 2.5, Cost: 0.4,
				Transcription: &IngestTranscription{FullText: "All good", Timestamp: "2025-03-14T08:00:00Z"},
				Summary:       &IngestSummary{SummaryText: "No issues"},
			},
		},
	}
	require.Empty(t, req.Validate())

	missing := req
	missing.Calls = []IngestCall{req.Calls[0]}
	missing.Calls[0].Transcription = nil
	missing.Calls[0].Summary = nil
	require.ElementsMatch(t, []string{"calls[0].transcription is required", "calls[0].summary is required"}, missing.Validate())

	missing.Calls = nil
	require.Equal(t, []string{"calls is required"}, missing.Validate())

	req.Report.Manager = ""
	req.Calls[0].Status = " "
	req.Calls[0].Cost = -1
	problems := req.Validate()
	require.Contains(t, problems, "report.manager is required")
	require.Contains(t, problems, "calls[0].status is required")
	require.Contains(t, problems, "calls[0]: duration and cost must not be negative")
}

func TestTemplateIsCopied(t *testing.T) {
	tpl, ok := Template(WORKFLOW_TYPE_INCIDENT_ESCALATION)
	require.True(t, ok)
	tpl.DefaultCaptureFields[0].Options[0] = "changed"
	again, _ := Template(WORKFLOW_TYPE_INCIDENT_ESCALATION)
	require.Equal(t, "Safety", again.DefaultCaptureFields[0].Options[0])

	_, ok = Template("weekly")
	require.False(t, ok)
}
