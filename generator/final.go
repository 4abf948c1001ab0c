package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/checkin/model"
)

const escalationReason = "Individual staff escalation requirements"

type Option func(*Generator)

// WithIdSource replaces the random id source. Every call must return a fresh value.
func WithIdSource(fn func() string) Option {
	return func(g *Generator) {
		g.newId = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(g *Generator) {
		g.now = fn
	}
}

// Generator produces persisted department objects. It holds no state besides its id
// source and clock and is safe for concurrent use when they are.
type Generator struct {
	newId func() string
	now   func() time.Time
}

func New(opts ...Option) *Generator {
	g := &Generator{
		newId: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = New()

// GenerateFinalDepartmentObject builds a new department with fresh ids using the
// default generator.
func GenerateFinalDepartmentObject(department model.DepartmentDraft, staff []model.Staff, workflow model.WorkflowDraft, schedule model.ScheduleDraft) model.FinalDepartmentObject {
	return defaultGenerator.GenerateFinalDepartmentObject(department, staff, workflow, schedule)
}

type identity struct {
	departmentId string
	workflowId   string
	scheduleId   string
	createdAt    time.Time
	version      int
	active       bool
}

// GenerateFinalDepartmentObject builds a new department. Input is not validated:
// missing values are carried into the output as empty values.
func (g *Generator) GenerateFinalDepartmentObject(department model.DepartmentDraft, staff []model.Staff, workflow model.WorkflowDraft, schedule model.ScheduleDraft) model.FinalDepartmentObject {
	id := identity{
		departmentId: "dept_" + g.newId(),
		workflowId:   "workflow_" + g.newId(),
		scheduleId:   "schedule_" + g.newId(),
		createdAt:    g.now(),
		version:      1,
		active:       true,
	}
	return g.build(id, department, staff, workflow, schedule)
}

// Regenerate rebuilds an existing department from edited drafts. Ids, creation time and
// active flag are kept and the workflow version is incremented.
func (g *Generator) Regenerate(existing model.FinalDepartmentObject, req model.DepartmentRequest) model.FinalDepartmentObject {
	id := identity{
		departmentId: existing.Department.Id,
		workflowId:   existing.Workflow.Id,
		scheduleId:   existing.Schedule.Id,
		createdAt:    existing.Department.CreatedAt,
		version:      existing.Workflow.Version + 1,
		active:       existing.Department.IsActive,
	}
	return g.build(id, req.Department, req.Staff, req.Workflow, req.Schedule)
}

func (g *Generator) build(id identity, draft model.DepartmentDraft, staff []model.Staff, workflow model.WorkflowDraft, schedule model.ScheduleDraft) model.FinalDepartmentObject {
	roster := g.normalizeStaff(staff)

	department := model.Department{
		Id:                  id.departmentId,
		Name:                draft.Name,
		Description:         draft.Description,
		KeyResponsibilities: draft.KeyResponsibilities,
		Staff:               roster,
		WorkflowId:          id.workflowId,
		ScheduleId:          id.scheduleId,
		CreatedAt:           id.createdAt,
		UpdatedAt:           g.now(),
		IsActive:            id.active,
	}
	if id.version == 1 {
		department.UpdatedAt = id.createdAt
	}

	return model.FinalDepartmentObject{
		Department:       department,
		Workflow:         workflowConfig(id, department, roster, workflow),
		Schedule:         scheduleConfig(id, schedule),
		StaffCallConfigs: roster,
		VapiWorkflow:     GenerateVAPIWorkflow(department, roster),
	}
}

// normalizeStaff copies the roster, giving every id without the staff prefix a new
// prefixed id. Escalation contact references follow the rename.
func (g *Generator) normalizeStaff(staff []model.Staff) []model.Staff {
	renamed := make(map[string]string)
	out := make([]model.Staff, len(staff))
	for i, s := range staff {
		out[i] = cloneStaff(s)
		if !strings.HasPrefix(s.Id, model.StaffIdPrefix) {
			newId := model.StaffIdPrefix + g.newId()
			if s.Id != "" {
				renamed[s.Id] = newId
			}
			out[i].Id = newId
		}
	}
	if len(renamed) == 0 {
		return out
	}
	for i := range out {
		conf := out[i].CallConfig
		if conf == nil {
			continue
		}
		for j, ref := range conf.EscalationContacts {
			if newId, ok := renamed[ref]; ok {
				conf.EscalationContacts[j] = newId
			}
		}
	}
	return out
}

func cloneStaff(s model.Staff) model.Staff {
	out := s
	if s.CallOrder != nil {
		order := *s.CallOrder
		out.CallOrder = &order
	}
	if s.CallConfig != nil {
		conf := *s.CallConfig
		conf.CustomScript = cloneStrings(conf.CustomScript)
		conf.CaptureFields = model.CloneFields(conf.CaptureFields)
		conf.EscalationContacts = cloneStrings(conf.EscalationContacts)
		conf.EscalationScript = cloneStrings(conf.EscalationScript)
		out.CallConfig = &conf
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func workflowConfig(id identity, department model.Department, roster []model.Staff, draft model.WorkflowDraft) model.WorkflowConfig {
	enabled := enabledStaff(roster)

	purposes := make([]string, 0, len(enabled))
	captureFields := []model.CaptureField{}
	escalation := false
	for _, s := range enabled {
		purposes = append(purposes, fmt.Sprintf("%s: %s", s.Name, s.CallConfig.CallPurpose))
		captureFields = append(captureFields, s.CallConfig.CaptureFields...)
		escalation = escalation || s.CallConfig.EscalationEnabled
	}

	baseType := draft.BaseType
	if baseType == "" {
		baseType = model.WORKFLOW_TYPE_DAILY_CHECK_IN
	}

	conf := model.WorkflowConfig{
		Id:            id.workflowId,
		DepartmentId:  id.departmentId,
		Name:          fmt.Sprintf("%s Individual Staff Workflow", department.Name),
		Description:   fmt.Sprintf("AI workflow with individual configurations for %d staff members", len(enabled)),
		BaseType:      baseType,
		CallPurpose:   "Multi-step workflow with individual purposes: " + strings.Join(purposes, "; "),
		CaptureFields: captureFields,
		ReportFields:  model.CloneFields(captureFields),
		Version:       id.version,
	}
	if escalation {
		conf.Escalation = &model.Escalation{
			Enabled:  true,
			Contacts: referencedContacts(roster, enabled),
			Reason:   escalationReason,
		}
	}
	return conf
}

// referencedContacts returns, in roster order and once each, every roster member named
// as an escalation contact by an enabled staff member.
func referencedContacts(roster []model.Staff, enabled []model.Staff) []model.Staff {
	referenced := make(map[string]bool)
	for _, s := range enabled {
		for _, id := range s.CallConfig.EscalationContacts {
			referenced[id] = true
		}
	}
	contacts := []model.Staff{}
	for _, s := range roster {
		if referenced[s.Id] {
			contacts = append(contacts, cloneStaff(s))
			delete(referenced, s.Id)
		}
	}
	return contacts
}

func scheduleConfig(id identity, draft model.ScheduleDraft) model.Schedule {
	cron := draft.Cron
	if cron == "" {
		cron = model.DEFAULT_CRON
	}
	tz := draft.TimeZone
	if tz == "" {
		tz = model.DEFAULT_TIME_ZONE
	}
	return model.Schedule{
		Id:           id.scheduleId,
		DepartmentId: id.departmentId,
		WorkflowId:   id.workflowId,
		Cron:         cron,
		TimeZone:     tz,
		Enabled:      draft.Enabled == nil || *draft.Enabled,
	}
}
