package wizard

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mohitkumar/checkin/model"
	"github.com/robfig/cron/v3"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every problem found on a step.
type ValidationError struct {
	Step   Step
	Errors []FieldError
}

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("%s step is invalid: %s", e.Step, strings.Join(msgs, "; "))
}

func (e ValidationError) Details() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return out
}

func asError(step Step, errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return ValidationError{Step: step, Errors: errs}
}

// Validate checks the part of the draft a step owns.
func Validate(step Step, d model.DepartmentRequest) error {
	switch step {
	case STEP_DEPARTMENT:
		return ValidateDepartment(d.Department)
	case STEP_STAFF:
		return ValidateStaff(d.Staff)
	case STEP_WORKFLOW:
		return ValidateWorkflow(d.Workflow)
	case STEP_ESCALATION:
		return ValidateEscalation(d.Workflow, d.Staff)
	case STEP_SCHEDULE:
		return ValidateSchedule(d.Schedule)
	case STEP_REVIEW:
		return ValidateAll(d)
	}
	return fmt.Errorf("unknown wizard step %d", int(step))
}

// ValidateAll runs every step validator and returns the first failure.
func ValidateAll(d model.DepartmentRequest) error {
	for _, step := range Steps()[:5] {
		if err := Validate(step, d); err != nil {
			return err
		}
	}
	return nil
}

func ValidateDepartment(d model.DepartmentDraft) error {
	return asError(STEP_DEPARTMENT, ValidateValues(DepartmentForm, map[string]any{
		"name":                d.Name,
		"description":         d.Description,
		"keyResponsibilities": d.KeyResponsibilities,
	}))
}

// ValidateStaff checks the roster: every member needs a name, phone and position; call
// orders are unique among call-enabled members; call-enabled members need a purpose and
// at least one capture field; escalation contacts must be other members of the roster.
func ValidateStaff(staff []model.Staff) error {
	var errs []FieldError
	if len(staff) == 0 {
		return asError(STEP_STAFF, []FieldError{{Field: "staff", Message: "add at least one staff member"}})
	}

	ids := make(map[string]bool, len(staff))
	for _, s := range staff {
		ids[s.Id] = true
	}
	orders := make(map[int]string)

	for i, s := range staff {
		prefix := fmt.Sprintf("staff[%d]", i)
		values := map[string]any{
			"name":     s.Name,
			"phone":    s.Phone,
			"position": string(s.Position),
		}
		if s.CallOrder != nil {
			values["callOrder"] = *s.CallOrder
		}
		if s.CallConfig != nil {
			values["timeoutMinutes"] = s.CallConfig.TimeoutMinutes
			values["maxRetries"] = s.CallConfig.MaxRetries
			if s.CallConfig.TimeoutMinutes == 0 {
				delete(values, "timeoutMinutes")
			}
		}
		for _, fe := range ValidateValues(StaffForm, values) {
			errs = append(errs, FieldError{Field: prefix + "." + fe.Field, Message: fe.Message})
		}

		if !s.CallEnabled() {
			continue
		}
		conf := s.CallConfig
		if s.CallOrder != nil {
			if other, dup := orders[*s.CallOrder]; dup {
				errs = append(errs, FieldError{Field: prefix + ".callOrder", Message: fmt.Sprintf("call order %d is already used by %s", *s.CallOrder, other)})
			} else {
				orders[*s.CallOrder] = s.Name
			}
		}
		if strings.TrimSpace(conf.CallPurpose) == "" {
			errs = append(errs, FieldError{Field: prefix + ".callPurpose", Message: fmt.Sprintf("set a call purpose for %s", s.Name)})
		}
		if len(conf.CaptureFields) == 0 {
			errs = append(errs, FieldError{Field: prefix + ".captureFields", Message: fmt.Sprintf("add at least one capture field for %s", s.Name)})
		}
		errs = append(errs, validateCaptureFields(prefix+".captureFields", conf.CaptureFields)...)

		if conf.EscalationEnabled {
			if len(conf.EscalationContacts) == 0 {
				errs = append(errs, FieldError{Field: prefix + ".escalationContacts", Message: "escalation needs at least one contact"})
			}
			for _, c := range conf.EscalationContacts {
				switch {
				case c == s.Id:
					errs = append(errs, FieldError{Field: prefix + ".escalationContacts", Message: "a staff member cannot escalate to themselves"})
				case !ids[c]:
					errs = append(errs, FieldError{Field: prefix + ".escalationContacts", Message: fmt.Sprintf("contact %s is not on the roster", c)})
				}
			}
		}
	}
	return asError(STEP_STAFF, errs)
}

func validateCaptureFields(path string, fields []model.CaptureField) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		p := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, FieldError{Field: p + ".name", Message: "field name is required"})
		} else if seen[f.Name] {
			errs = append(errs, FieldError{Field: p + ".name", Message: fmt.Sprintf("field %s is listed twice", f.Name)})
		}
		seen[f.Name] = true
		if strings.TrimSpace(f.Label) == "" {
			errs = append(errs, FieldError{Field: p + ".label", Message: "field label is required"})
		}
		if !f.Type.Valid() {
			errs = append(errs, FieldError{Field: p + ".type", Message: fmt.Sprintf("unknown field type %q", f.Type)})
		}
		if f.Type == model.FIELD_TYPE_SELECT && len(f.Options) == 0 {
			errs = append(errs, FieldError{Field: p + ".options", Message: "select fields need options"})
		}
	}
	return errs
}

func ValidateWorkflow(w model.WorkflowDraft) error {
	errs := ValidateValues(WorkflowForm, map[string]any{
		"name":        w.Name,
		"description": w.Description,
		"baseType":    string(w.BaseType),
		"callPurpose": w.CallPurpose,
	})
	if len(w.CaptureFields) == 0 {
		errs = append(errs, FieldError{Field: "captureFields", Message: "at least one capture field is required"})
	}
	if len(w.ReportFields) == 0 {
		errs = append(errs, FieldError{Field: "reportFields", Message: "at least one report field is required"})
	}
	errs = append(errs, validateCaptureFields("reportFields", w.ReportFields)...)
	return asError(STEP_WORKFLOW, errs)
}

// ValidateEscalation checks the workflow level escalation settings. Contacts must be
// managers or directors on the roster, or members a staff call config escalates to.
func ValidateEscalation(w model.WorkflowDraft, staff []model.Staff) error {
	if !w.EscalationEnabled {
		return nil
	}
	section, _ := Form(STEP_ESCALATION, staff)
	errs := ValidateValues(section, map[string]any{
		"escalationEnabled":  w.EscalationEnabled,
		"escalationContacts": w.EscalationContacts,
		"escalationReason":   w.EscalationReason,
	})
	if len(w.EscalationContacts) == 0 {
		errs = append(errs, FieldError{Field: "escalationContacts", Message: "select at least one escalation contact"})
	}
	return asError(STEP_ESCALATION, errs)
}

// ValidateSchedule accepts the manual sentinel or a standard five field cron expression.
func ValidateSchedule(s model.ScheduleDraft) error {
	var errs []FieldError
	if strings.TrimSpace(s.Cron) == "" {
		errs = append(errs, FieldError{Field: "cron", Message: "Schedule is required"})
	} else if s.Cron != model.MANUAL_CRON {
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			errs = append(errs, FieldError{Field: "cron", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	if strings.TrimSpace(s.TimeZone) == "" {
		errs = append(errs, FieldError{Field: "timeZone", Message: "Timezone is required"})
	} else if _, err := time.LoadLocation(s.TimeZone); err != nil {
		errs = append(errs, FieldError{Field: "timeZone", Message: fmt.Sprintf("unknown time zone %s", s.TimeZone)})
	}
	return asError(STEP_SCHEDULE, errs)
}
