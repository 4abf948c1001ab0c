package generator

import (
	"fmt"

	"github.com/mohitkumar/checkin/model"
)

// Warnings lists degenerate parts of a generated department that were accepted without
// error but are unlikely to be intended.
func Warnings(final model.FinalDepartmentObject) []string {
	var warnings []string

	callSteps := final.VapiWorkflow.CallSteps()
	if len(callSteps) == 0 {
		warnings = append(warnings, "workflow has no call steps: no staff member is enabled for calls")
	}

	stepByStaff := make(map[string]model.Step, len(callSteps))
	for _, step := range callSteps {
		stepByStaff[step.Call.StaffMember.Id] = step
		if len(step.Call.Params.Script) == 0 {
			warnings = append(warnings, fmt.Sprintf("call step %s has an empty script", step.StepId))
		}
		if len(step.Call.Capture) == 0 {
			warnings = append(warnings, fmt.Sprintf("call step %s captures no fields", step.StepId))
		}
	}

	for _, s := range final.Department.Staff {
		if !s.CallEnabled() || !s.CallConfig.EscalationEnabled {
			continue
		}
		if step, ok := stepByStaff[s.Id]; ok && step.Call.Escalation == nil {
			warnings = append(warnings, fmt.Sprintf("staff %s has escalation enabled but none of its contacts are on the roster", s.Name))
		}
	}
	if report, ok := final.VapiWorkflow.ReportStep(); ok && report.Report != nil {
		seen := make(map[string]int, len(report.Report.Fields))
		for _, f := range report.Report.Fields {
			seen[f]++
			if seen[f] == 2 {
				warnings = append(warnings, fmt.Sprintf("report field %s is collected from more than one call", f))
			}
		}
	}
	return warnings
}
