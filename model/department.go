package model

import "time"

type Position string

const POSITION_MANAGER Position = "Manager"
const POSITION_SUPERVISOR Position = "Supervisor"
const POSITION_ASSISTANT Position = "Assistant"
const POSITION_DIRECTOR Position = "Director"

var Positions = []Position{POSITION_MANAGER, POSITION_SUPERVISOR, POSITION_ASSISTANT, POSITION_DIRECTOR}

func (p Position) Valid() bool {
	for _, v := range Positions {
		if v == p {
			return true
		}
	}
	return false
}

type FieldType string

const FIELD_TYPE_TEXT FieldType = "text"
const FIELD_TYPE_NUMBER FieldType = "number"
const FIELD_TYPE_BOOLEAN FieldType = "boolean"
const FIELD_TYPE_DATE FieldType = "date"
const FIELD_TYPE_SELECT FieldType = "select"

var FieldTypes = []FieldType{FIELD_TYPE_TEXT, FIELD_TYPE_NUMBER, FIELD_TYPE_BOOLEAN, FIELD_TYPE_DATE, FIELD_TYPE_SELECT}

func (f FieldType) Valid() bool {
	for _, v := range FieldTypes {
		if v == f {
			return true
		}
	}
	return false
}

// StaffIdPrefix marks a normalized staff id.
const StaffIdPrefix = "staff_"

type CaptureField struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required" yaml:"required"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

type CallConfig struct {
	Enabled            bool           `json:"enabled" yaml:"enabled"`
	TimeoutMinutes     int            `json:"timeoutMinutes" yaml:"timeoutMinutes"`
	MaxRetries         int            `json:"maxRetries" yaml:"maxRetries"`
	CustomScript       []string       `json:"customScript,omitempty" yaml:"customScript,omitempty"`
	CallPurpose        string         `json:"callPurpose" yaml:"callPurpose"`
	CaptureFields      []CaptureField `json:"captureFields" yaml:"captureFields"`
	EscalationEnabled  bool           `json:"escalationEnabled" yaml:"escalationEnabled"`
	EscalationContacts []string       `json:"escalationContacts,omitempty" yaml:"escalationContacts,omitempty"`
	EscalationReason   string         `json:"escalationReason,omitempty" yaml:"escalationReason,omitempty"`
	EscalationScript   []string       `json:"escalationScript,omitempty" yaml:"escalationScript,omitempty"`
}

type Staff struct {
	Id         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Phone      string      `json:"phone" yaml:"phone"`
	Position   Position    `json:"position" yaml:"position"`
	CallOrder  *int        `json:"callOrder,omitempty" yaml:"callOrder,omitempty"`
	CallConfig *CallConfig `json:"callConfig,omitempty" yaml:"callConfig,omitempty"`
}

// CallEnabled reports whether the staff member takes part in the call workflow.
func (s Staff) CallEnabled() bool {
	return s.CallConfig != nil && s.CallConfig.Enabled
}

// Order returns the call order, 0 when unset.
func (s Staff) Order() int {
	if s.CallOrder == nil {
		return 0
	}
	return *s.CallOrder
}

type Department struct {
	Id                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	KeyResponsibilities string    `json:"keyResponsibilities"`
	Staff               []Staff   `json:"staff"`
	WorkflowId          string    `json:"workflowId,omitempty"`
	ScheduleId          string    `json:"scheduleId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	IsActive            bool      `json:"isActive"`
}

type Escalation struct {
	Enabled  bool           `json:"enabled"`
	Contacts []Staff        `json:"contacts"`
	Reason   string         `json:"reason"`
	Fields   []CaptureField `json:"fields,omitempty"`
}

type WorkflowConfig struct {
	Id            string         `json:"id"`
	DepartmentId  string         `json:"departmentId"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	BaseType      WorkflowType   `json:"baseType"`
	CallPurpose   string         `json:"callPurpose"`
	CaptureFields []CaptureField `json:"captureFields"`
	Escalation    *Escalation    `json:"escalation,omitempty"`
	ReportFields  []CaptureField `json:"reportFields"`
	Version       int            `json:"version"`
}

// MANUAL_CRON disables automatic execution of a schedule.
const MANUAL_CRON = "manual"

const DEFAULT_CRON = "0 9 * * 1-5"
const DEFAULT_TIME_ZONE = "Africa/Johannesburg"

type Schedule struct {
	Id           string `json:"id"`
	DepartmentId string `json:"departmentId"`
	WorkflowId   string `json:"workflowId"`
	Cron         string `json:"cron"`
	TimeZone     string `json:"timeZone"`
	Enabled      bool   `json:"enabled"`
}

func (s Schedule) Manual() bool {
	return s.Cron == MANUAL_CRON
}

// FinalDepartmentObject is the persisted form of a configured department.
type FinalDepartmentObject struct {
	Department       Department     `json:"department"`
	Workflow         WorkflowConfig `json:"workflow"`
	Schedule         Schedule       `json:"schedule"`
	StaffCallConfigs []Staff        `json:"staffCallConfigs"`
	VapiWorkflow     VAPIWorkflow   `json:"vapiWorkflow"`
}

// DepartmentDraft is the department step of the wizard.
type DepartmentDraft struct {
	Id                  string `json:"id,omitempty" yaml:"id,omitempty"`
	Name                string `json:"name" yaml:"name"`
	Description         string `json:"description" yaml:"description"`
	KeyResponsibilities string `json:"keyResponsibilities,omitempty" yaml:"keyResponsibilities,omitempty"`
}

type WorkflowDraft struct {
	Name               string         `json:"name" yaml:"name"`
	Description        string         `json:"description" yaml:"description"`
	BaseType           WorkflowType   `json:"baseType" yaml:"baseType"`
	CallPurpose        string         `json:"callPurpose" yaml:"callPurpose"`
	CaptureFields      []CaptureField `json:"captureFields" yaml:"captureFields"`
	EscalationEnabled  bool           `json:"escalationEnabled" yaml:"escalationEnabled"`
	EscalationReason   string         `json:"escalationReason,omitempty" yaml:"escalationReason,omitempty"`
	EscalationContacts []string       `json:"escalationContacts,omitempty" yaml:"escalationContacts,omitempty"`
	ReportFields       []CaptureField `json:"reportFields" yaml:"reportFields"`
}

// ScheduleDraft leaves Enabled nil when the operator did not decide, which means enabled.
type ScheduleDraft struct {
	Cron     string `json:"cron" yaml:"cron"`
	TimeZone string `json:"timeZone" yaml:"timeZone"`
	Enabled  *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// DepartmentRequest carries every wizard section in one document.
type DepartmentRequest struct {
	Department DepartmentDraft `json:"department" yaml:"department"`
	Staff      []Staff         `json:"staff" yaml:"staff"`
	Workflow   WorkflowDraft   `json:"workflow" yaml:"workflow"`
	Schedule   ScheduleDraft   `json:"schedule" yaml:"schedule"`
}
