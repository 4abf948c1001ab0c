package model

import (
	"fmt"
	"strings"
	"time"
)

type Report struct {
	Id            string    `json:"id"`
	Date          string    `json:"date"`
	Manager       string    `json:"manager"`
	Status        string    `json:"status"`
	Summary       string    `json:"summary"`
	TotalCost     float64   `json:"total_cost"`
	TotalDuration float64   `json:"total_duration"`
	PdfLink       string    `json:"pdf_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Call struct {
	Id          string  `json:"id"`
	ReportId    string  `json:"report_id"`
	CalledAbout string  `json:"called_about"`
	ManagerName string  `json:"manager_name"`
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Duration    float64 `json:"duration"`
	Cost        float64 `json:"cost"`
}

type Summary struct {
	Id          string `json:"id"`
	CallId      string `json:"call_id"`
	SummaryText string `json:"summary_text"`
}

type Transcription struct {
	Id        string `json:"id"`
	CallId    string `json:"call_id"`
	FullText  string `json:"full_text"`
	Timestamp string `json:"timestamp"`
}

// Usage is the monthly billing rollup. TotalUsage is in call minutes.
type Usage struct {
	BillingMonth string  `json:"billing_month"`
	TotalCost    float64 `json:"total_cost"`
	TotalUsage   float64 `json:"total_usage"`
}

type UsageByCall struct {
	BillingMonth string  `json:"billing_month"`
	CallId       string  `json:"call_id"`
	ReportId     string  `json:"report_id"`
	Cost         float64 `json:"cost"`
	Duration     float64 `json:"duration"`
	Timestamp    string  `json:"timestamp"`
}

type UsageByReport struct {
	BillingMonth string  `json:"billing_month"`
	ReportId     string  `json:"report_id"`
	CallCount    int     `json:"call_count"`
	Cost         float64 `json:"cost"`
	Duration     float64 `json:"duration"`
	Manager      string  `json:"manager"`
	ReportDate   string  `json:"report_date"`
}

type ReportDetail struct {
	Report
	CallIds []string `json:"call_ids"`
}

type CallDetail struct {
	Call
	Summary       *Summary       `json:"summary,omitempty"`
	Transcription *Transcription `json:"transcription,omitempty"`
}

type IngestReport struct {
	Date          string  `json:"date"`
	Manager       string  `json:"manager"`
	Status        string  `json:"status"`
	Summary       string  `json:"summary"`
	TotalCost     float64 `json:"total_cost"`
	TotalDuration float64 `json:"total_duration"`
}

type IngestTranscription struct {
	FullText  string `json:"full_text"`
	Timestamp string `json:"timestamp"`
}

type IngestSummary struct {
	SummaryText string `json:"summary_text"`
}

// IngestCall is one executed call. Transcription and summary are required; they are
// pointers so a missing object can be told apart from an empty one.
type IngestCall struct {
	Timestamp     string               `json:"timestamp"`
	ManagerName   string               `json:"manager_name"`
	CalledAbout   string               `json:"called_about"`
	Status        string               `json:"status"`
	Duration      float64              `json:"duration"`
	Cost          float64              `json:"cost"`
	Transcription *IngestTranscription `json:"transcription"`
	Summary       *IngestSummary       `json:"summary"`
}

// IngestRequest is the payload pushed by the call executor after a workflow run.
type IngestRequest struct {
	Report IngestReport `json:"report"`
	Calls  []IngestCall `json:"calls"`
}

// Validate lists every problem with the payload; an empty result means valid.
func (r IngestRequest) Validate() []string {
	var problems []string
	required := func(path, v string) {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, fmt.Sprintf("%s is required", path))
		}
	}
	required("report.date", r.Report.Date)
	required("report.manager", r.Report.Manager)
	required("report.status", r.Report.Status)
	if r.Report.Date != "" {
		if _, err := BillingMonth(r.Report.Date); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if r.Report.TotalCost < 0 || r.Report.TotalDuration < 0 {
		problems = append(problems, "report totals must not be negative")
	}
	if r.Calls == nil {
		problems = append(problems, "calls is required")
	}
	for i, c := range r.Calls {
		prefix := fmt.Sprintf("calls[%d]", i)
		required(prefix+".timestamp", c.Timestamp)
		required(prefix+".manager_name", c.ManagerName)
		required(prefix+".called_about", c.CalledAbout)
		required(prefix+".status", c.Status)
		if c.Transcription == nil {
			problems = append(problems, prefix+".transcription is required")
		}
		if c.Summary == nil {
			problems = append(problems, prefix+".summary is required")
		}
		if c.Duration < 0 || c.Cost < 0 {
			problems = append(problems, prefix+": duration and cost must not be negative")
		}
	}
	return problems
}

// BillingMonth derives the YYYY-MM billing month from a report date given as
// YYYY-MM-DD or RFC 3339.
func BillingMonth(date string) (string, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01"), nil
		}
	}
	return "", fmt.Errorf("report.date %q is not a date", date)
}

// DispatchRequest asks the call executor to run a department workflow.
type DispatchRequest struct {
	DepartmentId string       `json:"departmentId"`
	WorkflowId   string       `json:"workflowId"`
	ScheduleId   string       `json:"scheduleId"`
	ScheduledFor time.Time    `json:"scheduledFor"`
	Workflow     VAPIWorkflow `json:"workflow"`
}
