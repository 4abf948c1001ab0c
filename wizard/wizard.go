package wizard

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mohitkumar/checkin/generator"
	"github.com/mohitkumar/checkin/model"
)

const DEFAULT_WIZARD_CRON = "0 8 * * 1,2,3,4,5"

var ErrInvalidTransition = errors.New("invalid wizard transition")

// WrongStepError is returned when a section is edited while the wizard is on another step.
type WrongStepError struct {
	Current Step
	Wanted  Step
}

func (e WrongStepError) Error() string {
	return fmt.Sprintf("wizard is on the %s step, cannot edit %s", e.Current, e.Wanted)
}

// NewDraft returns the draft a fresh wizard starts from.
func NewDraft() model.DepartmentRequest {
	enabled := true
	return model.DepartmentRequest{
		Staff: []model.Staff{},
		Workflow: model.WorkflowDraft{
			BaseType:      model.WORKFLOW_TYPE_DAILY_CHECK_IN,
			CaptureFields: []model.CaptureField{},
			ReportFields:  []model.CaptureField{},
		},
		Schedule: model.ScheduleDraft{
			Cron:     DEFAULT_WIZARD_CRON,
			TimeZone: model.DEFAULT_TIME_ZONE,
			Enabled:  &enabled,
		},
	}
}

// Wizard walks one editing session through the six department steps. Methods are safe
// for concurrent use.
type Wizard struct {
	mu        sync.Mutex
	id        string
	step      Step
	draft     model.DepartmentRequest
	existing  *model.FinalDepartmentObject
	generator *generator.Generator
}

// State is a snapshot of a wizard.
type State struct {
	Id        string                  `json:"id"`
	Step      Step                    `json:"step"`
	Title     string                  `json:"title"`
	Progress  int                     `json:"progress"`
	Draft     model.DepartmentRequest `json:"draft"`
	EditingId string                  `json:"editingId,omitempty"`
}

func New(gen *generator.Generator) *Wizard {
	return &Wizard{
		id:        uuid.NewString(),
		step:      STEP_DEPARTMENT,
		draft:     NewDraft(),
		generator: gen,
	}
}

// NewForExisting starts an edit session seeded from a saved department. Save then
// regenerates the department in place.
func NewForExisting(gen *generator.Generator, existing model.FinalDepartmentObject) *Wizard {
	w := New(gen)
	enabled := existing.Schedule.Enabled
	w.draft = model.DepartmentRequest{
		Department: model.DepartmentDraft{
			Id:                  existing.Department.Id,
			Name:                existing.Department.Name,
			Description:         existing.Department.Description,
			KeyResponsibilities: existing.Department.KeyResponsibilities,
		},
		Staff: existing.Department.Staff,
		Workflow: model.WorkflowDraft{
			Name:          existing.Workflow.Name,
			Description:   existing.Workflow.Description,
			BaseType:      existing.Workflow.BaseType,
			CallPurpose:   existing.Workflow.CallPurpose,
			CaptureFields: existing.Workflow.CaptureFields,
			ReportFields:  existing.Workflow.ReportFields,
		},
		Schedule: model.ScheduleDraft{
			Cron:     existing.Schedule.Cron,
			TimeZone: existing.Schedule.TimeZone,
			Enabled:  &enabled,
		},
	}
	if esc := existing.Workflow.Escalation; esc != nil {
		w.draft.Workflow.EscalationEnabled = esc.Enabled
		w.draft.Workflow.EscalationReason = esc.Reason
		for _, c := range esc.Contacts {
			w.draft.Workflow.EscalationContacts = append(w.draft.Workflow.EscalationContacts, c.Id)
		}
	}
	w.existing = &existing
	return w
}

func (w *Wizard) Id() string {
	return w.id
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := State{
		Id:       w.id,
		Step:     w.step,
		Title:    w.step.Title(),
		Progress: int(w.step) * 100 / len(Steps()),
		Draft:    w.draft,
	}
	if w.existing != nil {
		s.EditingId = w.existing.Department.Id
	}
	return s
}

// Next validates the current step and moves forward.
func (w *Wizard) Next() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, ok := forward[w.step]
	if !ok {
		return w.step, ErrInvalidTransition
	}
	if err := Validate(w.step, w.draft); err != nil {
		return w.step, err
	}
	if next == STEP_WORKFLOW {
		SummarizeWorkflow(&w.draft)
	}
	w.step = next
	return w.step, nil
}

func (w *Wizard) Back() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, ok := backward[w.step]
	if !ok {
		return w.step, ErrInvalidTransition
	}
	w.step = prev
	return w.step, nil
}

// Edit jumps back to an earlier step, as the review screen does.
func (w *Wizard) Edit(step Step) (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := stepNames[step]; !ok || step >= w.step {
		return w.step, ErrInvalidTransition
	}
	w.step = step
	return w.step, nil
}

func (w *Wizard) requireStep(step Step) error {
	if w.step != step {
		return WrongStepError{Current: w.step, Wanted: step}
	}
	return nil
}

func (w *Wizard) SetDepartment(d model.DepartmentDraft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStep(STEP_DEPARTMENT); err != nil {
		return err
	}
	d.Id = w.draft.Department.Id
	w.draft.Department = d
	return nil
}

// SetStaff replaces the roster. Members without an id get one so escalation contacts can
// refer to them.
func (w *Wizard) SetStaff(staff []model.Staff) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStep(STEP_STAFF); err != nil {
		return err
	}
	roster := make([]model.Staff, len(staff))
	copy(roster, staff)
	for i := range roster {
		if strings.TrimSpace(roster[i].Id) == "" {
			roster[i].Id = model.StaffIdPrefix + uuid.NewString()
		}
	}
	w.draft.Staff = roster
	return nil
}

func (w *Wizard) SetWorkflow(d model.WorkflowDraft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStep(STEP_WORKFLOW); err != nil {
		return err
	}
	d.EscalationEnabled = w.draft.Workflow.EscalationEnabled
	d.EscalationContacts = w.draft.Workflow.EscalationContacts
	d.EscalationReason = w.draft.Workflow.EscalationReason
	w.draft.Workflow = d
	return nil
}

// EscalationSettings is the escalation step section of the workflow draft.
type EscalationSettings struct {
	Enabled  bool     `json:"escalationEnabled"`
	Contacts []string `json:"escalationContacts"`
	Reason   string   `json:"escalationReason"`
}

// SetEscalation updates the workflow escalation. Disabling clears contacts and reason.
func (w *Wizard) SetEscalation(e EscalationSettings) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStep(STEP_ESCALATION); err != nil {
		return err
	}
	w.draft.Workflow.EscalationEnabled = e.Enabled
	if e.Enabled {
		w.draft.Workflow.EscalationContacts = e.Contacts
		w.draft.Workflow.EscalationReason = e.Reason
	} else {
		w.draft.Workflow.EscalationContacts = []string{}
		w.draft.Workflow.EscalationReason = ""
	}
	return nil
}

func (w *Wizard) SetSchedule(s model.ScheduleDraft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStep(STEP_SCHEDULE); err != nil {
		return err
	}
	w.draft.Schedule = s
	return nil
}

// ApplyTemplate switches the workflow base type and seeds its fields from the template.
func (w *Wizard) ApplyTemplate(t model.WorkflowType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStep(STEP_WORKFLOW); err != nil {
		return err
	}
	tpl, ok := model.Template(t)
	if !ok {
		return ValidationError{Step: STEP_WORKFLOW, Errors: []FieldError{{Field: "baseType", Message: fmt.Sprintf("unknown workflow type %q", t)}}}
	}
	w.draft.Workflow.BaseType = t
	w.draft.Workflow.CaptureFields = tpl.DefaultCaptureFields
	w.draft.Workflow.ReportFields = tpl.DefaultReportFields
	if w.draft.Workflow.Description == "" {
		w.draft.Workflow.Description = tpl.Description
	}
	return nil
}

// SummarizeWorkflow fills empty workflow sections from the enabled staff configurations.
func SummarizeWorkflow(d *model.DepartmentRequest) {
	wf := &d.Workflow
	var fields []model.CaptureField
	var purposes []string
	count := 0
	for _, s := range d.Staff {
		if !s.CallEnabled() {
			continue
		}
		count++
		fields = append(fields, s.CallConfig.CaptureFields...)
		purposes = append(purposes, fmt.Sprintf("%s: %s", s.Name, s.CallConfig.CallPurpose))
	}
	if wf.Name == "" && d.Department.Name != "" {
		wf.Name = fmt.Sprintf("%s Individual Staff Workflow", d.Department.Name)
	}
	if wf.Description == "" {
		wf.Description = fmt.Sprintf("AI workflow with individual configurations for %d staff members", count)
	}
	if wf.CallPurpose == "" && len(purposes) > 0 {
		wf.CallPurpose = "Multi-step workflow with individual purposes: " + strings.Join(purposes, "; ")
	}
	if len(wf.CaptureFields) == 0 {
		wf.CaptureFields = model.CloneFields(fields)
	}
	if len(wf.ReportFields) == 0 {
		wf.ReportFields = model.CloneFields(fields)
	}
}

// Preview generates the department from the current draft without validating it.
func (w *Wizard) Preview() model.FinalDepartmentObject {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generate()
}

func (w *Wizard) generate() model.FinalDepartmentObject {
	if w.existing != nil {
		return w.generator.Regenerate(*w.existing, w.draft)
	}
	return w.generator.GenerateFinalDepartmentObject(w.draft.Department, w.draft.Staff, w.draft.Workflow, w.draft.Schedule)
}

// Save is only possible from the review step. Every step is validated again before the
// department is generated.
func (w *Wizard) Save() (model.FinalDepartmentObject, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != STEP_REVIEW {
		return model.FinalDepartmentObject{}, WrongStepError{Current: w.step, Wanted: STEP_REVIEW}
	}
	if err := ValidateAll(w.draft); err != nil {
		return model.FinalDepartmentObject{}, err
	}
	return w.generate(), nil
}
