package inspect

import (
	"encoding/json"
	"fmt"

	"github.com/mohitkumar/checkin/model"
	"github.com/oliveagle/jsonpath"
)

// Document is a generated workflow decoded into generic JSON values, the shape the call
// executor sees.
type Document struct {
	data any
}

func NewDocument(wf model.VAPIWorkflow) (*Document, error) {
	raw, err := json.Marshal(wf)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes a workflow document from JSON.
func Parse(raw []byte) (*Document, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("workflow document is not valid json: %w", err)
	}
	if _, ok := data.(map[string]any); !ok {
		return nil, fmt.Errorf("workflow document must be a json object")
	}
	return &Document{data: data}, nil
}

// Query evaluates a JSONPath expression such as $.steps[0].params.script.
func (d *Document) Query(path string) (any, error) {
	if _, err := jsonpath.Compile(path); err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", path, err)
	}
	res, err := jsonpath.JsonPathLookup(d.data, path)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", path, err)
	}
	return res, nil
}

func (d *Document) strings(path string) ([]string, error) {
	res, err := d.Query(path)
	if err != nil {
		return nil, err
	}
	list, ok := res.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list", path)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s holds a non string value %v", path, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *Document) StepIds() ([]string, error) {
	return d.strings("$.steps[*].stepId")
}

func (d *Document) StepTypes() ([]string, error) {
	return d.strings("$.steps[*].type")
}

// ReportFields returns the field list of the last report step.
func (d *Document) ReportFields() ([]string, error) {
	types, err := d.StepTypes()
	if err != nil {
		return nil, err
	}
	for i := len(types) - 1; i >= 0; i-- {
		if types[i] == string(model.STEP_TYPE_REPORT) {
			return d.strings(fmt.Sprintf("$.steps[%d].params.fields", i))
		}
	}
	return nil, fmt.Errorf("workflow has no report step")
}

// CallTargets returns the phone number of every call step in order.
func (d *Document) CallTargets() ([]string, error) {
	types, err := d.StepTypes()
	if err != nil {
		return nil, err
	}
	var out []string
	for i, t := range types {
		if t != string(model.STEP_TYPE_CALL) {
			continue
		}
		res, err := d.Query(fmt.Sprintf("$.steps[%d].params.target", i))
		if err != nil {
			return nil, err
		}
		target, _ := res.(string)
		out = append(out, target)
	}
	return out, nil
}
