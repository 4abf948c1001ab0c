package table

import (
	"strconv"

	"github.com/mohitkumar/checkin/model"
)

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var Reports = Definition[model.Report]{
	Columns: []Column[model.Report]{
		{Id: "id", Value: func(r model.Report) string { return r.Id }},
		{Id: "date", Value: func(r model.Report) string { return r.Date }},
		{Id: "manager", Value: func(r model.Report) string { return r.Manager }},
		{Id: "status", Value: func(r model.Report) string { return r.Status }},
		{Id: "summary", Value: func(r model.Report) string { return r.Summary }},
		{Id: "total_cost", Value: func(r model.Report) string { return number(r.TotalCost) }},
	},
	Filters: []string{"status", "manager"},
}

var Calls = Definition[model.Call]{
	Columns: []Column[model.Call]{
		{Id: "id", Value: func(c model.Call) string { return c.Id }},
		{Id: "manager_name", Value: func(c model.Call) string { return c.ManagerName }},
		{Id: "called_about", Value: func(c model.Call) string { return c.CalledAbout }},
		{Id: "status", Value: func(c model.Call) string { return c.Status }},
		{Id: "timestamp", Value: func(c model.Call) string { return c.Timestamp }},
		{Id: "report_id", Value: func(c model.Call) string { return c.ReportId }},
	},
	Filters: []string{"status", "manager_name", "report_id"},
}

var Summaries = Definition[model.Summary]{
	Columns: []Column[model.Summary]{
		{Id: "id", Value: func(s model.Summary) string { return s.Id }},
		{Id: "call_id", Value: func(s model.Summary) string { return s.CallId }},
		{Id: "summary_text", Value: func(s model.Summary) string { return s.SummaryText }},
	},
	Filters: []string{"call_id"},
}

var Transcriptions = Definition[model.Transcription]{
	Columns: []Column[model.Transcription]{
		{Id: "id", Value: func(t model.Transcription) string { return t.Id }},
		{Id: "call_id", Value: func(t model.Transcription) string { return t.CallId }},
		{Id: "full_text", Value: func(t model.Transcription) string { return t.FullText }},
		{Id: "timestamp", Value: func(t model.Transcription) string { return t.Timestamp }},
	},
	Filters: []string{"call_id"},
}

var Usage = Definition[model.Usage]{
	Columns: []Column[model.Usage]{
		{Id: "billing_month", Value: func(u model.Usage) string { return u.BillingMonth }},
		{Id: "total_cost", Value: func(u model.Usage) string { return number(u.TotalCost) }},
		{Id: "total_usage", Value: func(u model.Usage) string { return number(u.TotalUsage) }},
	},
	Filters: []string{"billing_month"},
}

var Departments = Definition[model.Department]{
	Columns: []Column[model.Department]{
		{Id: "id", Value: func(d model.Department) string { return d.Id }},
		{Id: "name", Value: func(d model.Department) string { return d.Name }},
		{Id: "description", Value: func(d model.Department) string { return d.Description }},
		{Id: "active", Value: func(d model.Department) string { return strconv.FormatBool(d.IsActive) }},
	},
	Filters: []string{"active"},
}
