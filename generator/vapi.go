package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mohitkumar/checkin/model"
)

const defaultTimeoutMinutes = 5
const defaultMaxRetries = 3

// GenerateVAPIWorkflow builds the call workflow document for a department. staff is the
// full roster; only call-enabled members get a call step, ordered by call order with
// ties kept in roster order. The result depends only on the arguments.
func GenerateVAPIWorkflow(department model.Department, staff []model.Staff) model.VAPIWorkflow {
	enabled := enabledStaff(staff)
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Order() < enabled[j].Order()
	})

	steps := make([]model.Step, 0, len(enabled)+1)
	for _, member := range enabled {
		steps = append(steps, callStep(department, member, staff))
	}
	steps = append(steps, reportStep(department, enabled))

	return model.VAPIWorkflow{
		Name:        fmt.Sprintf("%s Individual Staff Workflow", department.Name),
		Description: fmt.Sprintf("Multi-step AI workflow for %s department with individual staff configurations", department.Name),
		Steps:       steps,
	}
}

func enabledStaff(staff []model.Staff) []model.Staff {
	out := make([]model.Staff, 0, len(staff))
	for _, s := range staff {
		if s.CallEnabled() {
			out = append(out, s)
		}
	}
	return out
}

func callStep(department model.Department, member model.Staff, roster []model.Staff) model.Step {
	conf := member.CallConfig

	timeout := conf.TimeoutMinutes
	if timeout == 0 {
		timeout = defaultTimeoutMinutes
	}
	retries := conf.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	}

	capture := make([]model.CaptureSpec, 0, len(conf.CaptureFields))
	for _, f := range conf.CaptureFields {
		capture = append(capture, model.CaptureSpec{Field: f.Name, Label: f.Label, Type: f.Type, Required: f.Required})
	}

	call := &model.CallStep{
		StaffMember: model.StaffMemberRef{
			Id:        member.Id,
			Name:      member.Name,
			Phone:     member.Phone,
			Role:      member.Position,
			CallOrder: member.CallOrder,
		},
		Params: model.CallParams{
			Target:         member.Phone,
			Voice:          model.VOICE_AI,
			Script:         callScript(department, member),
			TimeoutMinutes: timeout,
			MaxRetries:     retries,
			Purpose:        conf.CallPurpose,
		},
		Capture: capture,
	}

	if conf.EscalationEnabled {
		contacts := resolveContacts(conf.EscalationContacts, roster)
		if len(contacts) > 0 {
			call.Escalation = escalationBlock(department, member, contacts)
		}
	}

	return model.Step{Type: model.STEP_TYPE_CALL, StepId: "call_" + member.Id, Call: call}
}

func callScript(department model.Department, member model.Staff) []string {
	conf := member.CallConfig
	if len(conf.CustomScript) > 0 {
		return append([]string(nil), conf.CustomScript...)
	}
	lines := []string{
		fmt.Sprintf("Good morning %s! This is your AI assistant calling from the %s department.", member.Name, department.Name),
		conf.CallPurpose,
	}
	for _, f := range conf.CaptureFields {
		label := strings.ToLower(f.Label)
		if f.Required {
			lines = append(lines, fmt.Sprintf("I need to collect %s - this is required.", label))
		} else {
			lines = append(lines, fmt.Sprintf("Can you provide information about %s?", label))
		}
	}
	if conf.EscalationEnabled {
		lines = append(lines, "If you need to escalate anything, just let me know.")
	}
	return nonEmpty(lines)
}

// resolveContacts returns the roster members referenced by ids, in roster order.
// Unknown ids are dropped.
func resolveContacts(ids []string, roster []model.Staff) []model.Staff {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []model.Staff
	for _, s := range roster {
		if wanted[s.Id] {
			out = append(out, s)
		}
	}
	return out
}

func escalationBlock(department model.Department, member model.Staff, contacts []model.Staff) *model.EscalationBlock {
	conf := member.CallConfig

	refs := make([]model.ContactRef, 0, len(contacts))
	for _, c := range contacts {
		refs = append(refs, model.ContactRef{Id: c.Id, Name: c.Name, Phone: c.Phone, Role: c.Position})
	}

	script := append([]string(nil), conf.EscalationScript...)
	if len(script) == 0 {
		reason := conf.EscalationReason
		if reason == "" {
			reason = "Issue requires attention"
		}
		script = []string{
			fmt.Sprintf("Hi %s, %s from %s has requested escalation.", contacts[0].Name, member.Name, department.Name),
			fmt.Sprintf("Reason: %s", reason),
			"Please provide your response or instructions.",
		}
	}

	return &model.EscalationBlock{
		Enabled:  true,
		If:       model.ESCALATION_CONDITION,
		Reason:   conf.EscalationReason,
		Contacts: refs,
		Script:   script,
		Capture: []model.CaptureSpec{
			{Field: model.ESCALATION_RESPONSE_FIELD, Label: "Escalation Response", Type: model.FIELD_TYPE_TEXT, Required: true},
			{Field: model.ESCALATION_APPROVED_FIELD, Label: "Escalation Approved", Type: model.FIELD_TYPE_BOOLEAN, Required: true},
		},
	}
}

// reportStep aggregates every capture field name of the enabled staff followed by the
// escalation outcome fields. Duplicate names are kept.
func reportStep(department model.Department, enabled []model.Staff) model.Step {
	var fields []string
	for _, s := range enabled {
		for _, f := range s.CallConfig.CaptureFields {
			fields = append(fields, f.Name)
		}
	}
	fields = append(fields,
		model.ESCALATION_REQUESTED_FIELD,
		model.ESCALATION_RESPONSE_FIELD,
		model.ESCALATION_APPROVED_FIELD,
	)

	return model.Step{
		Type:   model.STEP_TYPE_REPORT,
		StepId: model.REPORT_STEP_ID,
		Report: &model.ReportParams{
			Fields:     nonEmpty(fields),
			Output:     model.REPORT_OUTPUT_PDF,
			Storage:    fmt.Sprintf("reports/%s/%s.pdf", department.Id, model.TimestampToken),
			Template:   model.REPORT_TEMPLATE,
			Department: model.DepartmentRef{Id: department.Id, Name: department.Name},
		},
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
