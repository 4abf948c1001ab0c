package model

import (
	"encoding/json"
	"fmt"
)

type StepType string

const STEP_TYPE_CALL StepType = "call"
const STEP_TYPE_REPORT StepType = "report"

const REPORT_STEP_ID = "generate_report"
const REPORT_OUTPUT_PDF = "pdf"
const REPORT_TEMPLATE = "department_workflow_report"
const VOICE_AI = "ai"

// TimestampToken is left unresolved in report storage paths; the executor substitutes it.
const TimestampToken = "{{timestamp}}"

const ESCALATION_REQUESTED_FIELD = "escalation_requested"
const ESCALATION_RESPONSE_FIELD = "escalation_response"
const ESCALATION_APPROVED_FIELD = "escalation_approved"

// ESCALATION_CONDITION is evaluated by the executor against the call's captured answers.
const ESCALATION_CONDITION = "escalation_requested === true"

type VAPIWorkflow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// CallSteps returns the call steps in workflow order.
func (w VAPIWorkflow) CallSteps() []Step {
	out := make([]Step, 0, len(w.Steps))
	for _, s := range w.Steps {
		if s.Type == STEP_TYPE_CALL {
			out = append(out, s)
		}
	}
	return out
}

// ReportStep returns the terminal report step, if any.
func (w VAPIWorkflow) ReportStep() (Step, bool) {
	for i := len(w.Steps) - 1; i >= 0; i-- {
		if w.Steps[i].Type == STEP_TYPE_REPORT {
			return w.Steps[i], true
		}
	}
	return Step{}, false
}

type StaffMemberRef struct {
	Id        string   `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Role      Position `json:"role"`
	CallOrder *int     `json:"callOrder,omitempty"`
}

type ContactRef struct {
	Id    string   `json:"id"`
	Name  string   `json:"name"`
	Phone string   `json:"phone"`
	Role  Position `json:"role"`
}

type CaptureSpec struct {
	Field    string    `json:"field"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

type CallParams struct {
	Target         string   `json:"target"`
	Voice          string   `json:"voice"`
	Script         []string `json:"script"`
	TimeoutMinutes int      `json:"timeout_minutes"`
	MaxRetries     int      `json:"max_retries"`
	Purpose        string   `json:"purpose"`
}

type EscalationBlock struct {
	Enabled  bool          `json:"enabled"`
	If       string        `json:"if"`
	Reason   string        `json:"reason"`
	Contacts []ContactRef  `json:"contacts"`
	Script   []string      `json:"script"`
	Capture  []CaptureSpec `json:"capture"`
}

type CallStep struct {
	StaffMember StaffMemberRef
	Params      CallParams
	Capture     []CaptureSpec
	Escalation  *EscalationBlock
}

type DepartmentRef struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type ReportParams struct {
	Fields     []string      `json:"fields"`
	Output     string        `json:"output"`
	Storage    string        `json:"storage"`
	Template   string        `json:"template"`
	Department DepartmentRef `json:"department"`
}

// Step is either a call step or a report step; exactly one of Call and Report is set,
// matching Type.
type Step struct {
	Type   StepType
	StepId string
	Call   *CallStep
	Report *ReportParams
}

type callStepJSON struct {
	Type        StepType         `json:"type"`
	StepId      string           `json:"stepId"`
	StaffMember StaffMemberRef   `json:"staffMember"`
	Params      CallParams       `json:"params"`
	Capture     []CaptureSpec    `json:"capture"`
	Escalation  *EscalationBlock `json:"escalation,omitempty"`
}

type reportStepJSON struct {
	Type   StepType     `json:"type"`
	StepId string       `json:"stepId"`
	Params ReportParams `json:"params"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case STEP_TYPE_CALL:
		if s.Call == nil {
			return nil, fmt.Errorf("step %s: call body missing", s.StepId)
		}
		return json.Marshal(callStepJSON{
			Type:        s.Type,
			StepId:      s.StepId,
			StaffMember: s.Call.StaffMember,
			Params:      s.Call.Params,
			Capture:     s.Call.Capture,
			Escalation:  s.Call.Escalation,
		})
	case STEP_TYPE_REPORT:
		if s.Report == nil {
			return nil, fmt.Errorf("step %s: report params missing", s.StepId)
		}
		return json.Marshal(reportStepJSON{Type: s.Type, StepId: s.StepId, Params: *s.Report})
	default:
		return nil, fmt.Errorf("step %s: unknown step type %q", s.StepId, s.Type)
	}
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var head struct {
		Type StepType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case STEP_TYPE_CALL:
		var c callStepJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*s = Step{
			Type:   c.Type,
			StepId: c.StepId,
			Call: &CallStep{
				StaffMember: c.StaffMember,
				Params:      c.Params,
				Capture:     c.Capture,
				Escalation:  c.Escalation,
			},
		}
	case STEP_TYPE_REPORT:
		var r reportStepJSON
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		params := r.Params
		*s = Step{Type: r.Type, StepId: r.StepId, Report: &params}
	default:
		return fmt.Errorf("unknown step type %q", head.Type)
	}
	return nil
}
