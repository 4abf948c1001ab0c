package model

type WorkflowType string

const WORKFLOW_TYPE_DAILY_CHECK_IN WorkflowType = "daily-check-in"
const WORKFLOW_TYPE_INCIDENT_ESCALATION WorkflowType = "incident-escalation"
const WORKFLOW_TYPE_STOCK_UPDATE WorkflowType = "stock-update"
const WORKFLOW_TYPE_RESOURCE_UPDATE WorkflowType = "resource-update"

var WorkflowTypes = []WorkflowType{
	WORKFLOW_TYPE_DAILY_CHECK_IN,
	WORKFLOW_TYPE_INCIDENT_ESCALATION,
	WORKFLOW_TYPE_STOCK_UPDATE,
	WORKFLOW_TYPE_RESOURCE_UPDATE,
}

func (w WorkflowType) Valid() bool {
	_, ok := WorkflowTemplates[w]
	return ok
}

type WorkflowTemplate struct {
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	DefaultCaptureFields []CaptureField `json:"defaultCaptureFields"`
	DefaultReportFields  []CaptureField `json:"defaultReportFields"`
}

var WorkflowTemplates = map[WorkflowType]WorkflowTemplate{
	WORKFLOW_TYPE_DAILY_CHECK_IN: {
		Name:        "Daily Check-In",
		Description: "Morning calls to department managers to collect operational status",
		DefaultCaptureFields: []CaptureField{
			{Name: "jobs_today", Label: "Jobs Today", Type: FIELD_TYPE_NUMBER},
			{Name: "onsite_issues", Label: "Onsite Issues", Type: FIELD_TYPE_TEXT},
			{Name: "blockers", Label: "Blockers", Type: FIELD_TYPE_TEXT},
			{Name: "ncrs", Label: "NCRs", Type: FIELD_TYPE_NUMBER},
			{Name: "supervisor_notes", Label: "Supervisor Notes", Type: FIELD_TYPE_TEXT},
		},
		DefaultReportFields: []CaptureField{
			{Name: "summary", Label: "Manager Summary", Type: FIELD_TYPE_TEXT},
			{Name: "status", Label: "Department Status", Type: FIELD_TYPE_SELECT, Options: []string{"Good", "Issues", "Critical"}},
		},
	},
	WORKFLOW_TYPE_INCIDENT_ESCALATION: {
		Name:        "Incident Escalation",
		Description: "Immediate escalation calls for urgent incidents",
		DefaultCaptureFields: []CaptureField{
			{Name: "incident_type", Label: "Incident Type", Type: FIELD_TYPE_SELECT, Options: []string{"Safety", "Equipment", "Quality", "Other"}},
			{Name: "severity", Label: "Severity", Type: FIELD_TYPE_SELECT, Options: []string{"Low", "Medium", "High", "Critical"}},
			{Name: "description", Label: "Description", Type: FIELD_TYPE_TEXT},
			{Name: "immediate_action", Label: "Immediate Action Taken", Type: FIELD_TYPE_TEXT},
		},
		DefaultReportFields: []CaptureField{
			{Name: "resolution", Label: "Resolution", Type: FIELD_TYPE_TEXT},
			{Name: "follow_up_required", Label: "Follow-up Required", Type: FIELD_TYPE_BOOLEAN},
		},
	},
	WORKFLOW_TYPE_STOCK_UPDATE: {
		Name:        "Stock Update",
		Description: "Regular stock and resource status updates",
		DefaultCaptureFields: []CaptureField{
			{Name: "stock_levels", Label: "Stock Levels", Type: FIELD_TYPE_SELECT, Options: []string{"Good", "Low", "Critical"}},
			{Name: "missing_items", Label: "Missing Items", Type: FIELD_TYPE_TEXT},
			{Name: "delivery_schedule", Label: "Delivery Schedule", Type: FIELD_TYPE_TEXT},
		},
		DefaultReportFields: []CaptureField{
			{Name: "procurement_needed", Label: "Procurement Needed", Type: FIELD_TYPE_BOOLEAN},
			{Name: "priority_items", Label: "Priority Items", Type: FIELD_TYPE_TEXT},
		},
	},
	WORKFLOW_TYPE_RESOURCE_UPDATE: {
		Name:        "Resource Update",
		Description: "Personnel and equipment resource status updates",
		DefaultCaptureFields: []CaptureField{
			{Name: "staff_count", Label: "Staff Count", Type: FIELD_TYPE_NUMBER},
			{Name: "equipment_status", Label: "Equipment Status", Type: FIELD_TYPE_SELECT, Options: []string{"All Working", "Minor Issues", "Major Issues"}},
			{Name: "resource_needs", Label: "Resource Needs", Type: FIELD_TYPE_TEXT},
		},
		DefaultReportFields: []CaptureField{
			{Name: "resource_allocation", Label: "Resource Allocation", Type: FIELD_TYPE_TEXT},
			{Name: "efficiency_rating", Label: "Efficiency Rating", Type: FIELD_TYPE_SELECT, Options: []string{"Excellent", "Good", "Average", "Poor"}},
		},
	},
}

// Template returns a copy of the template so callers may modify the field lists.
func Template(t WorkflowType) (WorkflowTemplate, bool) {
	tpl, ok := WorkflowTemplates[t]
	if !ok {
		return WorkflowTemplate{}, false
	}
	tpl.DefaultCaptureFields = CloneFields(tpl.DefaultCaptureFields)
	tpl.DefaultReportFields = CloneFields(tpl.DefaultReportFields)
	return tpl, true
}

func CloneFields(in []CaptureField) []CaptureField {
	if in == nil {
		return nil
	}
	out := make([]CaptureField, len(in))
	for i, f := range in {
		out[i] = f
		if f.Options != nil {
			out[i].Options = append([]string(nil), f.Options...)
		}
	}
	return out
}
