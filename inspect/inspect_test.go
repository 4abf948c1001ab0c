package inspect

import (
	"testing"

	"github.com/mohitkumar/checkin/generator"
	"github.com/mohitkumar/checkin/model"
	"github.com/stretchr/testify/require"
)

func staffMember(id string, order int, purpose string, fieldName string) model.Staff {
	return model.Staff{
		Id:        id,
		Name:      id,
		Phone:     "+27-" + id,
		Position:  model.POSITION_MANAGER,
		CallOrder: &order,
		CallConfig: &model.CallConfig{
			Enabled:       true,
			CallPurpose:   purpose,
			CaptureFields: []model.CaptureField{{Name: fieldName, Label: fieldName, Type: model.FIELD_TYPE_TEXT}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	dept := model.Department{Id: "dept_1", Name: "Construction"}
	// B is listed first; call order decides
	wf := generator.GenerateVAPIWorkflow(dept, []model.Staff{
		staffMember("B", 2, "p2", "f2"),
		staffMember("A", 1, "p1", "f1"),
	})

	doc, err := NewDocument(wf)
	require.NoError(t, err)

	ids, err := doc.StepIds()
	require.NoError(t, err)
	require.Equal(t, []string{"call_A", "call_B", "generate_report"}, ids)

	fields, err := doc.ReportFields()
	require.NoError(t, err)
	require.Contains(t, fields, "f1")
	require.Contains(t, fields, "f2")

	targets, err := doc.CallTargets()
	require.NoError(t, err)
	require.Equal(t, []string{"+27-A", "+27-B"}, targets)

	purpose, err := doc.Query("$.steps[1].params.purpose")
	require.NoError(t, err)
	require.Equal(t, "p2", purpose)

	storage, err := doc.Query("$.steps[2].params.storage")
	require.NoError(t, err)
	require.Equal(t, "reports/dept_1/{{timestamp}}.pdf", storage)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("not json"))
	require.Error(t, err)
	_, err = Parse([]byte(`[1,2]`))
	require.Error(t, err)

	doc, err := Parse([]byte(`{"name":"x","steps":[{"type":"call","stepId":"call_1","params":{"target":"+1"}}]}`))
	require.NoError(t, err)
	_, err = doc.ReportFields()
	require.EqualError(t, err, "workflow has no report step")
	_, err = doc.Query("$.missing")
	require.Error(t, err)
}
