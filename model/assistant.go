package model

const ASSISTANT_CONFIG_SOURCE = "checkin-ai-assistant-config"

const (
	FORMALITY_FORMAL   = "formal"
	FORMALITY_NEUTRAL  = "neutral"
	FORMALITY_INFORMAL = "informal"
)

// AssistantConfig describes how the voice agent behaves for a company: identity, call
// flow, summary output and integration targets.
type AssistantConfig struct {
	CompanyName           string `json:"companyName"`
	IndustryType          string `json:"industryType"`
	PrimaryLanguage       string `json:"primaryLanguage"`
	Timezone              string `json:"timezone"`
	OperationalHoursStart string `json:"operationalHoursStart"`
	OperationalHoursEnd   string `json:"operationalHoursEnd"`

	AgentName      string `json:"agentName"`
	Personality    string `json:"personality"`
	ToneOfVoice    string `json:"toneOfVoice"`
	FormalityLevel string `json:"formalityLevel"`

	Departments                 []string `json:"departments"`
	DailyCallDepartments        []string `json:"dailyCallDepartments"`
	DepartmentSpecificQuestions string   `json:"departmentSpecificQuestions,omitempty"`

	RolesToContact   []string `json:"rolesToContact"`
	CallOrder        []string `json:"callOrder"`
	ReportRecipients []string `json:"reportRecipients"`

	UseDefaultQuestionSet bool   `json:"useDefaultQuestionSet"`
	ComplianceChecks      string `json:"complianceChecks,omitempty"`
	BusinessTerms         string `json:"businessTerms,omitempty"`

	CustomSystemPrompt  string `json:"customSystemPrompt,omitempty"`
	SensitiveTopics     string `json:"sensitiveTopics,omitempty"`
	EscalationProtocols string `json:"escalationProtocols,omitempty"`

	SummaryStructure string   `json:"summaryStructure"`
	PreferredFormat  string   `json:"preferredFormat"`
	RequiredFields   []string `json:"requiredFields"`
	DataValidation   string   `json:"dataValidation,omitempty"`

	CalculateDurations bool     `json:"calculateDurations"`
	IncludeCosting     bool     `json:"includeCosting"`
	CostPerMinute      *float64 `json:"costPerMinute,omitempty"`

	CrmSystem  string `json:"crmSystem,omitempty"`
	WebhookUrl string `json:"webhookUrl,omitempty"`
	ApiKeys    string `json:"apiKeys,omitempty"`
}

// AssistantSubmission is the envelope posted to the assistant webhook.
type AssistantSubmission struct {
	Source  string          `json:"source"`
	Payload AssistantConfig `json:"payload"`
}
