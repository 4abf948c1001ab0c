package generator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/mohitkumar/checkin/model"
)

//go:embed function_call.js.tmpl
var functionCallSource string

var functionCallTemplate = template.Must(template.New("function_call").Parse(functionCallSource))

var nonSymbol = regexp.MustCompile(`[^a-zA-Z0-9]`)

var lineBreaks = regexp.MustCompile(`[\r\n\x{2028}\x{2029}]+`)

// symbol turns a department name into an identifier fragment. Names starting with a digit
// are prefixed so the generated declarations stay valid.
func symbol(name string) string {
	s := nonSymbol.ReplaceAllString(name, "")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "Department" + s
	}
	return s
}

type staffConfiguration struct {
	Id         string            `json:"id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Role       model.Position    `json:"role"`
	CallOrder  *int              `json:"callOrder,omitempty"`
	CallConfig *model.CallConfig `json:"callConfig"`
}

type functionCallData struct {
	Department       model.Department
	Schedule         model.Schedule
	Title            string
	Symbol           string
	DepartmentJSON   string
	StaffJSON        string
	ScheduleJSON     string
	WorkflowIdJSON   string
	DepartmentIdJSON string
	CronJSON         string
	TimeZoneJSON     string
}

// GenerateFunctionCall renders the executor integration snippet for a department. The
// snippet is a configuration artifact; nothing here calls the telephony provider.
func GenerateFunctionCall(final model.FinalDepartmentObject) (string, error) {
	enabled := enabledStaff(final.Department.Staff)
	configs := make([]staffConfiguration, 0, len(enabled))
	for _, s := range enabled {
		configs = append(configs, staffConfiguration{
			Id:         s.Id,
			Name:       s.Name,
			Phone:      s.Phone,
			Role:       s.Position,
			CallOrder:  s.CallOrder,
			CallConfig: s.CallConfig,
		})
	}

	data := functionCallData{
		Department: final.Department,
		Schedule:   final.Schedule,
		Title:      lineBreaks.ReplaceAllString(final.Department.Name, " "),
		Symbol:     symbol(final.Department.Name),
	}
	var err error
	for _, v := range []struct {
		dst *string
		src any
	}{
		{&data.DepartmentJSON, final.Department},
		{&data.StaffJSON, configs},
		{&data.ScheduleJSON, final.Schedule},
		{&data.WorkflowIdJSON, final.Workflow.Id},
		{&data.DepartmentIdJSON, final.Department.Id},
		{&data.CronJSON, final.Schedule.Cron},
		{&data.TimeZoneJSON, final.Schedule.TimeZone},
	} {
		if *v.dst, err = indentJSON(v.src); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := functionCallTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render function call for %s: %w", final.Department.Id, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func indentJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "    ", "    ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
