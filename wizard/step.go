package wizard

import "fmt"

type Step int

const (
	STEP_DEPARTMENT Step = iota + 1
	STEP_STAFF
	STEP_WORKFLOW
	STEP_ESCALATION
	STEP_SCHEDULE
	STEP_REVIEW
)

var stepNames = map[Step]string{
	STEP_DEPARTMENT: "department",
	STEP_STAFF:      "staff",
	STEP_WORKFLOW:   "workflow",
	STEP_ESCALATION: "escalation",
	STEP_SCHEDULE:   "schedule",
	STEP_REVIEW:     "review",
}

var stepTitles = map[Step]string{
	STEP_DEPARTMENT: "Department Details",
	STEP_STAFF:      "Assign Staff",
	STEP_WORKFLOW:   "Configure Workflow",
	STEP_ESCALATION: "Escalation Settings",
	STEP_SCHEDULE:   "Schedule Settings",
	STEP_REVIEW:     "Review & Save",
}

// forward and backward form a single chain; there are no cycles.
var forward = map[Step]Step{
	STEP_DEPARTMENT: STEP_STAFF,
	STEP_STAFF:      STEP_WORKFLOW,
	STEP_WORKFLOW:   STEP_ESCALATION,
	STEP_ESCALATION: STEP_SCHEDULE,
	STEP_SCHEDULE:   STEP_REVIEW,
}

var backward = map[Step]Step{
	STEP_STAFF:      STEP_DEPARTMENT,
	STEP_WORKFLOW:   STEP_STAFF,
	STEP_ESCALATION: STEP_WORKFLOW,
	STEP_SCHEDULE:   STEP_ESCALATION,
	STEP_REVIEW:     STEP_SCHEDULE,
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) Title() string {
	return stepTitles[s]
}

func (s Step) MarshalText() ([]byte, error) {
	if _, ok := stepNames[s]; !ok {
		return nil, fmt.Errorf("unknown wizard step %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	step, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if n == name {
			return step, nil
		}
	}
	return 0, fmt.Errorf("unknown wizard step %q", name)
}

// Steps lists the wizard steps in order.
func Steps() []Step {
	return []Step{STEP_DEPARTMENT, STEP_STAFF, STEP_WORKFLOW, STEP_ESCALATION, STEP_SCHEDULE, STEP_REVIEW}
}
