package wizard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mohitkumar/checkin/model"
)

// FieldKind is the closed set of form field kinds. Every kind carries its own
// constraints; ValidateValues switches over the concrete types.
type FieldKind interface {
	kindName() string
}

type TextKind struct {
	Multiline bool
	MaxLength int
}

type NumberKind struct {
	Integer bool
	Min     *float64
	Max     *float64
}

type SelectKind struct {
	Options []string
}

type MultiSelectKind struct {
	Options  []string
	MinItems int
}

type CheckboxKind struct{}

// TimeKind accepts a 24-hour HH:MM value.
type TimeKind struct{}

type PhoneKind struct{}

func (TextKind) kindName() string        { return "text" }
func (NumberKind) kindName() string      { return "number" }
func (SelectKind) kindName() string      { return "select" }
func (MultiSelectKind) kindName() string { return "multiselect" }
func (CheckboxKind) kindName() string    { return "checkbox" }
func (TimeKind) kindName() string        { return "time" }
func (PhoneKind) kindName() string       { return "phone" }

type FormField struct {
	Name        string
	Label       string
	Description string
	Required    bool
	Kind        FieldKind
}

type FormSection struct {
	Step        Step        `json:"step,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Fields      []FormField `json:"fields"`
}

func (f FormField) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":     f.Name,
		"label":    f.Label,
		"required": f.Required,
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	switch k := f.Kind.(type) {
	case TextKind:
		out["type"] = "text"
		if k.Multiline {
			out["type"] = "textarea"
		}
		if k.MaxLength > 0 {
			out["maxLength"] = k.MaxLength
		}
	case NumberKind:
		out["type"] = "number"
		out["integer"] = k.Integer
		if k.Min != nil {
			out["min"] = *k.Min
		}
		if k.Max != nil {
			out["max"] = *k.Max
		}
	case SelectKind:
		out["type"] = "select"
		out["options"] = k.Options
	case MultiSelectKind:
		out["type"] = "multiselect"
		out["options"] = k.Options
	case nil:
		return nil, fmt.Errorf("form field %s has no kind", f.Name)
	default:
		out["type"] = k.kindName()
	}
	return json.Marshal(out)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,}$`)
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ValidateValues checks raw form values against a section. Values decoded from JSON are
// expected: strings, float64 numbers, bools and []any or []string lists.
func ValidateValues(section FormSection, values map[string]any) []FieldError {
	var errs []FieldError
	for _, f := range section.Fields {
		raw, present := values[f.Name]
		if !present || isEmpty(raw) {
			if f.Required {
				errs = append(errs, FieldError{Field: f.Name, Message: f.Label + " is required"})
			}
			continue
		}
		if msg := checkKind(f.Kind, raw); msg != "" {
			errs = append(errs, FieldError{Field: f.Name, Message: fmt.Sprintf("%s %s", f.Label, msg)})
		}
	}
	return errs
}

func checkKind(kind FieldKind, raw any) string {
	switch k := kind.(type) {
	case TextKind:
		s, ok := raw.(string)
		if !ok {
			return "must be text"
		}
		if k.MaxLength > 0 && len(s) > k.MaxLength {
			return fmt.Sprintf("must be at most %d characters", k.MaxLength)
		}
	case PhoneKind:
		s, ok := raw.(string)
		if !ok || !phonePattern.MatchString(strings.TrimSpace(s)) {
			return "must be a phone number"
		}
	case TimeKind:
		s, ok := raw.(string)
		if !ok || !timePattern.MatchString(s) {
			return "must be a time as HH:MM"
		}
	case NumberKind:
		n, ok := toFloat(raw)
		if !ok {
			return "must be a number"
		}
		if k.Integer && n != float64(int64(n)) {
			return "must be a whole number"
		}
		if k.Min != nil && n < *k.Min {
			return fmt.Sprintf("must be at least %g", *k.Min)
		}
		if k.Max != nil && n > *k.Max {
			return fmt.Sprintf("must be at most %g", *k.Max)
		}
	case CheckboxKind:
		if _, ok := raw.(bool); !ok {
			return "must be true or false"
		}
	case SelectKind:
		s, ok := raw.(string)
		if !ok || !contains(k.Options, s) {
			return "must be one of " + strings.Join(k.Options, ", ")
		}
	case MultiSelectKind:
		items, ok := toStrings(raw)
		if !ok {
			return "must be a list"
		}
		if len(items) < k.MinItems {
			return fmt.Sprintf("needs at least %d selection(s)", k.MinItems)
		}
		for _, item := range items {
			if k.Options != nil && !contains(k.Options, item) {
				return fmt.Sprintf("has unknown option %q", item)
			}
		}
	}
	return ""
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func float(f float64) *float64 {
	return &f
}

var TimeZones = []string{
	"Africa/Johannesburg",
	"UTC",
	"America/New_York",
	"America/Los_Angeles",
	"Europe/London",
	"Europe/Berlin",
	"Asia/Tokyo",
	"Australia/Sydney",
}

var Weekdays = []string{"0", "1", "2", "3", "4", "5", "6"}

func positionOptions() []string {
	out := make([]string, 0, len(model.Positions))
	for _, p := range model.Positions {
		out = append(out, string(p))
	}
	return out
}

func workflowTypeOptions() []string {
	out := make([]string, 0, len(model.WorkflowTypes))
	for _, t := range model.WorkflowTypes {
		out = append(out, string(t))
	}
	return out
}

var DepartmentForm = FormSection{
	Step:        STEP_DEPARTMENT,
	Title:       "Department Details",
	Description: "Basic information about the department",
	Fields: []FormField{
		{Name: "name", Label: "Department name", Required: true, Kind: TextKind{MaxLength: 120}},
		{Name: "description", Label: "Description", Required: true, Kind: TextKind{Multiline: true}},
		{Name: "keyResponsibilities", Label: "Key responsibilities", Kind: TextKind{Multiline: true}},
	},
}

var StaffForm = FormSection{
	Step:        STEP_STAFF,
	Title:       "Configure Staff & Individual Workflows",
	Description: "Staff members with their own call purpose, capture fields and escalation rules",
	Fields: []FormField{
		{Name: "name", Label: "Name", Required: true, Kind: TextKind{MaxLength: 120}},
		{Name: "phone", Label: "Phone number", Required: true, Kind: PhoneKind{}},
		{Name: "position", Label: "Position", Required: true, Kind: SelectKind{Options: positionOptions()}},
		{Name: "callOrder", Label: "Call order", Kind: NumberKind{Integer: true, Min: float(0)}},
		{Name: "enabled", Label: "Enable calls", Kind: CheckboxKind{}},
		{Name: "timeoutMinutes", Label: "Timeout (minutes)", Kind: NumberKind{Integer: true, Min: float(1), Max: float(60)}},
		{Name: "maxRetries", Label: "Max retries", Kind: NumberKind{Integer: true, Min: float(0), Max: float(10)}},
		{Name: "callPurpose", Label: "Call purpose", Kind: TextKind{Multiline: true}},
		{Name: "escalationEnabled", Label: "Enable escalation", Kind: CheckboxKind{}},
		{Name: "escalationReason", Label: "Escalation reason", Kind: TextKind{Multiline: true}},
	},
}

var WorkflowForm = FormSection{
	Step:        STEP_WORKFLOW,
	Title:       "Configure Workflow",
	Description: "Workflow template and aggregated capture and report fields",
	Fields: []FormField{
		{Name: "name", Label: "Workflow name", Kind: TextKind{MaxLength: 160}},
		{Name: "description", Label: "Description", Kind: TextKind{Multiline: true}},
		{Name: "baseType", Label: "Workflow type", Required: true, Kind: SelectKind{Options: workflowTypeOptions()}},
		{Name: "callPurpose", Label: "Call purpose", Kind: TextKind{Multiline: true}},
	},
}

var EscalationForm = FormSection{
	Step:        STEP_ESCALATION,
	Title:       "Escalation & Callback Settings",
	Description: "When and how issues are escalated to management",
	Fields: []FormField{
		{Name: "escalationEnabled", Label: "Enable escalation", Kind: CheckboxKind{}},
		{Name: "escalationContacts", Label: "Escalation contacts", Kind: MultiSelectKind{}},
		{Name: "escalationReason", Label: "Escalation reason", Kind: TextKind{Multiline: true}},
	},
}

var ScheduleForm = FormSection{
	Step:        STEP_SCHEDULE,
	Title:       "Schedule Settings",
	Description: "When the workflow runs automatically",
	Fields: []FormField{
		{Name: "manual", Label: "Manual only", Kind: CheckboxKind{}},
		{Name: "days", Label: "Days", Kind: MultiSelectKind{Options: Weekdays}},
		{Name: "time", Label: "Time", Kind: TimeKind{}},
		{Name: "timeZone", Label: "Time zone", Required: true, Kind: SelectKind{Options: TimeZones}},
		{Name: "enabled", Label: "Enabled", Kind: CheckboxKind{}},
	},
}

var ReviewForm = FormSection{
	Step:        STEP_REVIEW,
	Title:       "Review & Save",
	Description: "Check the generated configuration before saving",
}

// Form returns the descriptor for a step. The escalation contact options are filled
// from the roster's managers and directors.
func Form(step Step, roster []model.Staff) (FormSection, error) {
	switch step {
	case STEP_DEPARTMENT:
		return DepartmentForm, nil
	case STEP_STAFF:
		return StaffForm, nil
	case STEP_WORKFLOW:
		return WorkflowForm, nil
	case STEP_ESCALATION:
		section := EscalationForm
		section.Fields = append([]FormField(nil), EscalationForm.Fields...)
		section.Fields[1].Kind = MultiSelectKind{Options: escalationCandidates(roster)}
		return section, nil
	case STEP_SCHEDULE:
		return ScheduleForm, nil
	case STEP_REVIEW:
		return ReviewForm, nil
	}
	return FormSection{}, fmt.Errorf("no form for %s", step)
}

// escalationCandidates lists managers and directors, plus any roster member a call
// config already escalates to, in roster order.
func escalationCandidates(roster []model.Staff) []string {
	referenced := make(map[string]bool)
	for _, s := range roster {
		if s.CallEnabled() && s.CallConfig.EscalationEnabled {
			for _, id := range s.CallConfig.EscalationContacts {
				referenced[id] = true
			}
		}
	}
	out := []string{}
	for _, s := range roster {
		if s.Position == model.POSITION_MANAGER || s.Position == model.POSITION_DIRECTOR || referenced[s.Id] {
			out = append(out, s.Id)
		}
	}
	return out
}

// ScheduleValues is the schedule step as the operator fills it in.
type ScheduleValues struct {
	Manual   bool     `json:"manual"`
	Days     []string `json:"days"`
	Time     string   `json:"time"`
	TimeZone string   `json:"timeZone"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

func (v ScheduleValues) values() map[string]any {
	out := map[string]any{
		"manual":   v.Manual,
		"days":     v.Days,
		"time":     v.Time,
		"timeZone": v.TimeZone,
	}
	if v.Enabled != nil {
		out["enabled"] = *v.Enabled
	}
	return out
}

// ToDraft validates the values and builds the schedule draft. A non-manual schedule
// needs at least one day and a time.
func (v ScheduleValues) ToDraft() (model.ScheduleDraft, error) {
	errs := ValidateValues(ScheduleForm, v.values())
	if !v.Manual {
		if len(v.Days) == 0 {
			errs = append(errs, FieldError{Field: "days", Message: "select at least one day"})
		}
		if v.Time == "" {
			errs = append(errs, FieldError{Field: "time", Message: "Time is required"})
		}
	}
	if len(errs) > 0 {
		return model.ScheduleDraft{}, ValidationError{Step: STEP_SCHEDULE, Errors: errs}
	}
	draft := model.ScheduleDraft{TimeZone: v.TimeZone, Enabled: v.Enabled}
	if v.Manual {
		draft.Cron = model.MANUAL_CRON
		return draft, nil
	}
	t, err := time.Parse("15:04", v.Time)
	if err != nil {
		return model.ScheduleDraft{}, err
	}
	draft.Cron = fmt.Sprintf("%d %d * * %s", t.Minute(), t.Hour(), strings.Join(v.Days, ","))
	return draft, nil
}
