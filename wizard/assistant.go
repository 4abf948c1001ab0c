package wizard

import (
	"fmt"

	"github.com/mohitkumar/checkin/model"
)

var Industries = []string{
	"manufacturing", "healthcare", "technology", "retail", "finance", "construction",
	"education", "hospitality", "transportation", "energy", "agriculture", "other",
}

var Languages = []string{
	"english", "spanish", "french", "german", "portuguese", "italian",
	"dutch", "chinese", "japanese", "korean", "arabic", "russian",
}

var Personalities = []string{
	"professional", "empathetic", "concise", "friendly", "analytical", "supportive", "direct", "enthusiastic",
}

var Tones = []string{"polite", "assertive", "calm", "warm", "neutral", "confident", "reassuring"}

var DepartmentOptions = []string{
	"cutting", "welding", "sales", "production", "quality-control", "maintenance",
	"shipping", "receiving", "assembly", "packaging", "inventory", "customer-service",
}

var Roles = []string{
	"supervisor", "manager", "director", "team-lead", "assistant-manager", "coo", "department-head", "shift-supervisor",
}

var ReportRequiredFields = []string{
	"timestamp", "department", "respondent-name", "respondent-role", "production-status",
	"safety-incidents", "equipment-status", "staff-attendance", "quality-issues", "ncrs",
	"jobs-scheduled", "jobs-completed", "maintenance-requests", "resource-requirements",
	"call-duration", "follow-up-required", "priority-level", "notes-comments",
}

var CrmSystems = []string{
	"airtable", "hubspot", "salesforce", "google-sheets", "microsoft-365", "notion",
	"monday", "trello", "asana", "custom", "none",
}

// AssistantForm is the AI voice assistant configuration form. Its sections are not
// wizard steps and carry no step.
var AssistantForm = []FormSection{
	{
		Title:       "Company Information",
		Description: "Who the agent calls on behalf of and when",
		Fields: []FormField{
			{Name: "companyName", Label: "Company name", Required: true, Kind: TextKind{MaxLength: 160}},
			{Name: "industryType", Label: "Industry type", Required: true, Kind: SelectKind{Options: Industries}},
			{Name: "primaryLanguage", Label: "Primary language", Required: true, Kind: SelectKind{Options: Languages}},
			{Name: "timezone", Label: "Timezone", Required: true, Kind: SelectKind{Options: TimeZones}},
			{Name: "operationalHoursStart", Label: "Start time", Required: true, Kind: TimeKind{}},
			{Name: "operationalHoursEnd", Label: "End time", Required: true, Kind: TimeKind{}},
		},
	},
	{
		Title:       "Voice Agent Identity",
		Description: "Name and manner of the agent on the call",
		Fields: []FormField{
			{Name: "agentName", Label: "Agent name", Required: true, Kind: TextKind{MaxLength: 80}},
			{Name: "personality", Label: "Personality", Required: true, Kind: SelectKind{Options: Personalities}},
			{Name: "toneOfVoice", Label: "Tone of voice", Required: true, Kind: SelectKind{Options: Tones}},
			{Name: "formalityLevel", Label: "Formality level", Required: true, Kind: SelectKind{Options: []string{model.FORMALITY_FORMAL, model.FORMALITY_NEUTRAL, model.FORMALITY_INFORMAL}}},
		},
	},
	{
		Title:       "Department Structure",
		Description: "Departments the agent covers",
		Fields: []FormField{
			{Name: "departments", Label: "Departments", Required: true, Kind: MultiSelectKind{Options: DepartmentOptions, MinItems: 1}},
			{Name: "dailyCallDepartments", Label: "Daily call departments", Kind: MultiSelectKind{Options: DepartmentOptions}},
			{Name: "departmentSpecificQuestions", Label: "Department specific questions", Kind: TextKind{Multiline: true}},
		},
	},
	{
		Title:       "Call Workflow",
		Description: "Who is called, in which order, and who gets the report",
		Fields: []FormField{
			{Name: "rolesToContact", Label: "Roles to contact", Required: true, Kind: MultiSelectKind{Options: Roles, MinItems: 1}},
			{Name: "callOrder", Label: "Call order", Required: true, Kind: MultiSelectKind{Options: Roles, MinItems: 1}},
			{Name: "reportRecipients", Label: "Report recipients", Required: true, Kind: MultiSelectKind{MinItems: 1}},
		},
	},
	{
		Title:       "Question Set",
		Description: "Questions asked on every call",
		Fields: []FormField{
			{Name: "useDefaultQuestionSet", Label: "Use default question set", Kind: CheckboxKind{}},
			{Name: "complianceChecks", Label: "Compliance checks", Kind: TextKind{Multiline: true}},
			{Name: "businessTerms", Label: "Business terms", Kind: TextKind{Multiline: true}},
		},
	},
	{
		Title:       "Prompt Structure",
		Description: "System prompt and safety boundaries",
		Fields: []FormField{
			{Name: "customSystemPrompt", Label: "Custom system prompt", Kind: TextKind{Multiline: true}},
			{Name: "sensitiveTopics", Label: "Sensitive topics", Kind: TextKind{Multiline: true}},
			{Name: "escalationProtocols", Label: "Escalation protocols", Kind: TextKind{Multiline: true}},
		},
	},
	{
		Title:       "Summary Requirements",
		Description: "Shape of the summary produced after the calls",
		Fields: []FormField{
			{Name: "summaryStructure", Label: "Summary structure", Required: true, Kind: SelectKind{Options: []string{"bullet-points", "full-paragraph", "key-highlights"}}},
			{Name: "preferredFormat", Label: "Preferred format", Required: true, Kind: SelectKind{Options: []string{"json", "csv", "slack", "email"}}},
			{Name: "requiredFields", Label: "Required fields", Kind: MultiSelectKind{Options: ReportRequiredFields}},
			{Name: "dataValidation", Label: "Data validation", Kind: TextKind{Multiline: true}},
		},
	},
	{
		Title:       "Cost and Duration",
		Description: "Call duration and cost tracking",
		Fields: []FormField{
			{Name: "calculateDurations", Label: "Calculate durations", Kind: CheckboxKind{}},
			{Name: "includeCosting", Label: "Include costing", Kind: CheckboxKind{}},
			{Name: "costPerMinute", Label: "Cost per minute", Kind: NumberKind{Min: float(0)}},
		},
	},
	{
		Title:       "Integration Settings",
		Description: "Where reports are delivered",
		Fields: []FormField{
			{Name: "crmSystem", Label: "CRM system", Kind: SelectKind{Options: CrmSystems}},
			{Name: "webhookUrl", Label: "Webhook URL", Kind: TextKind{MaxLength: 2048}},
			{Name: "apiKeys", Label: "API keys", Kind: TextKind{Multiline: true}},
		},
	},
}

func assistantValues(c model.AssistantConfig) map[string]any {
	values := map[string]any{
		"companyName":                 c.CompanyName,
		"industryType":                c.IndustryType,
		"primaryLanguage":             c.PrimaryLanguage,
		"timezone":                    c.Timezone,
		"operationalHoursStart":       c.OperationalHoursStart,
		"operationalHoursEnd":         c.OperationalHoursEnd,
		"agentName":                   c.AgentName,
		"personality":                 c.Personality,
		"toneOfVoice":                 c.ToneOfVoice,
		"formalityLevel":              c.FormalityLevel,
		"departments":                 c.Departments,
		"dailyCallDepartments":        c.DailyCallDepartments,
		"departmentSpecificQuestions": c.DepartmentSpecificQuestions,
		"rolesToContact":              c.RolesToContact,
		"callOrder":                   c.CallOrder,
		"reportRecipients":            c.ReportRecipients,
		"useDefaultQuestionSet":       c.UseDefaultQuestionSet,
		"complianceChecks":            c.ComplianceChecks,
		"businessTerms":               c.BusinessTerms,
		"customSystemPrompt":          c.CustomSystemPrompt,
		"sensitiveTopics":             c.SensitiveTopics,
		"escalationProtocols":         c.EscalationProtocols,
		"summaryStructure":            c.SummaryStructure,
		"preferredFormat":             c.PreferredFormat,
		"requiredFields":              c.RequiredFields,
		"dataValidation":              c.DataValidation,
		"calculateDurations":          c.CalculateDurations,
		"includeCosting":              c.IncludeCosting,
		"crmSystem":                   c.CrmSystem,
		"webhookUrl":                  c.WebhookUrl,
		"apiKeys":                     c.ApiKeys,
	}
	if c.CostPerMinute != nil {
		values["costPerMinute"] = *c.CostPerMinute
	}
	return values
}

// ValidateAssistant checks every section of the assistant form. Daily call departments
// must be among the covered departments and costing needs a per minute rate.
func ValidateAssistant(c model.AssistantConfig) []FieldError {
	values := assistantValues(c)
	var errs []FieldError
	for _, section := range AssistantForm {
		errs = append(errs, ValidateValues(section, values)...)
	}
	for _, d := range c.DailyCallDepartments {
		if !contains(c.Departments, d) {
			errs = append(errs, FieldError{Field: "dailyCallDepartments", Message: fmt.Sprintf("%s is not one of the covered departments", d)})
		}
	}
	if c.IncludeCosting && c.CostPerMinute == nil {
		errs = append(errs, FieldError{Field: "costPerMinute", Message: "Cost per minute is required when costing is included"})
	}
	return errs
}
