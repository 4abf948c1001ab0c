package simulate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"go.uber.org/zap"
)

const conditionTimeout = 200 * time.Millisecond

// Answers holds what each call would capture, keyed by step id then field name.
type Answers map[string]map[string]any

type StepOutcome struct {
	StepId             string         `json:"stepId"`
	StaffId            string         `json:"staffId"`
	Captured           map[string]any `json:"captured"`
	Missing            []string       `json:"missing,omitempty"`
	Escalated          bool           `json:"escalated"`
	EscalationContacts []string       `json:"escalationContacts,omitempty"`
}

type Result struct {
	Steps       []StepOutcome    `json:"steps"`
	Escalations []string         `json:"escalations"`
	Report      map[string][]any `json:"report"`
	Complete    bool             `json:"complete"`
}

// Run walks the workflow in order against sample answers. A call step escalates when its
// escalation condition holds for the answers captured on that call. Report fields collect
// every captured value in step order.
func Run(wf model.VAPIWorkflow, answers Answers) (Result, error) {
	res := Result{Escalations: []string{}, Report: map[string][]any{}, Complete: true}
	collected := map[string][]any{}

	for _, step := range wf.Steps {
		switch step.Type {
		case model.STEP_TYPE_CALL:
			outcome, err := runCall(step, answers[step.StepId])
			if err != nil {
				return Result{}, err
			}
			if len(outcome.Missing) > 0 {
				res.Complete = false
			}
			if outcome.Escalated {
				res.Escalations = append(res.Escalations, step.StepId)
			}
			for _, name := range capturedOrder(step, outcome) {
				collected[name] = append(collected[name], outcome.Captured[name])
			}
			res.Steps = append(res.Steps, outcome)
		case model.STEP_TYPE_REPORT:
			for _, f := range step.Report.Fields {
				if values, ok := collected[f]; ok {
					res.Report[f] = values
				}
			}
		}
	}
	return res, nil
}

func runCall(step model.Step, given map[string]any) (StepOutcome, error) {
	call := step.Call
	outcome := StepOutcome{
		StepId:   step.StepId,
		StaffId:  call.StaffMember.Id,
		Captured: map[string]any{},
	}
	capture(call.Capture, given, &outcome)
	if v, ok := given[model.ESCALATION_REQUESTED_FIELD]; ok {
		outcome.Captured[model.ESCALATION_REQUESTED_FIELD] = v
	}

	esc := call.Escalation
	if esc == nil || !esc.Enabled {
		return outcome, nil
	}
	cond := esc.If
	if cond == "" {
		cond = model.ESCALATION_CONDITION
	}
	escalated, err := EvalCondition(cond, outcome.Captured)
	if err != nil {
		return StepOutcome{}, fmt.Errorf("step %s: %w", step.StepId, err)
	}
	if !escalated {
		return outcome, nil
	}
	outcome.Escalated = true
	for _, c := range esc.Contacts {
		outcome.EscalationContacts = append(outcome.EscalationContacts, c.Id)
	}
	capture(esc.Capture, given, &outcome)
	logger.Debug("simulated escalation", zap.String("step", step.StepId), zap.Strings("contacts", outcome.EscalationContacts))
	return outcome, nil
}

func capture(specs []model.CaptureSpec, given map[string]any, outcome *StepOutcome) {
	for _, spec := range specs {
		v, ok := given[spec.Field]
		if !ok || v == nil || v == "" {
			if spec.Required {
				outcome.Missing = append(outcome.Missing, spec.Field)
			}
			continue
		}
		outcome.Captured[spec.Field] = v
	}
}

func capturedOrder(step model.Step, outcome StepOutcome) []string {
	var names []string
	add := func(name string) {
		if _, ok := outcome.Captured[name]; ok {
			names = append(names, name)
		}
	}
	for _, spec := range step.Call.Capture {
		add(spec.Field)
	}
	add(model.ESCALATION_REQUESTED_FIELD)
	if outcome.Escalated {
		for _, spec := range step.Call.Escalation.Capture {
			add(spec.Field)
		}
	}
	return names
}

// EvalCondition evaluates a JavaScript boolean expression. Every captured field is a
// global and the whole map is available as $. escalation_requested defaults to false.
func EvalCondition(expression string, captured map[string]any) (bool, error) {
	data, err := json.Marshal(captured)
	if err != nil {
		return false, err
	}
	vm := goja.New()
	timer := time.AfterFunc(conditionTimeout, func() {
		vm.Interrupt("condition timed out")
	})
	defer timer.Stop()

	script := fmt.Sprintf("var $ = %s;\nvar %s = false;\n", data, model.ESCALATION_REQUESTED_FIELD)
	if _, err := vm.RunString(script); err != nil {
		return false, fmt.Errorf("error executing javascript %w", err)
	}
	for name, value := range captured {
		if err := vm.Set(name, value); err != nil {
			return false, err
		}
	}
	val, err := vm.RunString(expression)
	if err != nil {
		return false, fmt.Errorf("error executing javascript %w", err)
	}
	return val.ToBoolean(), nil
}
