package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mohitkumar/checkin/analytics"
	"github.com/mohitkumar/checkin/generator"
	"github.com/mohitkumar/checkin/inspect"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/simulate"
	"github.com/mohitkumar/checkin/wizard"
	"go.uber.org/zap"
)

// Generated is a generator result together with the warnings about degenerate output.
type Generated struct {
	Final    model.FinalDepartmentObject `json:"final"`
	Warnings []string                    `json:"warnings"`
}

type DepartmentService struct {
	store     persistence.DepartmentStore
	generator *generator.Generator
	now       func() time.Time
}

func NewDepartmentService(store persistence.DepartmentStore, gen *generator.Generator) *DepartmentService {
	return &DepartmentService{
		store:     store,
		generator: gen,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *DepartmentService) Generator() *generator.Generator {
	return s.generator
}

func (s *DepartmentService) Store() persistence.DepartmentStore {
	return s.store
}

// NewGenerated pairs a generated department with its warnings.
func NewGenerated(final model.FinalDepartmentObject) Generated {
	warnings := generator.Warnings(final)
	if warnings == nil {
		warnings = []string{}
	}
	return Generated{Final: final, Warnings: warnings}
}

// Preview runs the generator without validating or storing anything.
func (s *DepartmentService) Preview(req model.DepartmentRequest) Generated {
	return NewGenerated(s.generator.GenerateFinalDepartmentObject(req.Department, req.Staff, req.Workflow, req.Schedule))
}

// Create validates every wizard section, generates the department and stores it. Empty
// workflow sections are summarized from the staff first, as the wizard does.
func (s *DepartmentService) Create(ctx context.Context, req model.DepartmentRequest) (Generated, error) {
	wizard.SummarizeWorkflow(&req)
	if err := wizard.ValidateAll(req); err != nil {
		return Generated{}, err
	}
	return s.Save(ctx, s.generator.GenerateFinalDepartmentObject(req.Department, req.Staff, req.Workflow, req.Schedule))
}

// Save stores an already generated department, as produced by a wizard session.
func (s *DepartmentService) Save(ctx context.Context, final model.FinalDepartmentObject) (Generated, error) {
	if err := s.store.Save(ctx, final); err != nil {
		return Generated{}, err
	}
	logger.Info("department saved", zap.String("department", final.Department.Id), zap.Int("version", final.Workflow.Version))
	analytics.RecordDepartmentSaved(final.Department.Id, final.Workflow.Version, len(final.VapiWorkflow.CallSteps()))
	return NewGenerated(final), nil
}

// Update regenerates a stored department from edited sections, keeping its identity.
func (s *DepartmentService) Update(ctx context.Context, id string, req model.DepartmentRequest) (Generated, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Generated{}, err
	}
	wizard.SummarizeWorkflow(&req)
	if err := wizard.ValidateAll(req); err != nil {
		return Generated{}, err
	}
	return s.Save(ctx, s.generator.Regenerate(*existing, req))
}

func (s *DepartmentService) Get(ctx context.Context, id string) (*model.FinalDepartmentObject, error) {
	return s.store.Get(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context) ([]model.FinalDepartmentObject, error) {
	return s.store.List(ctx)
}

func (s *DepartmentService) Deactivate(ctx context.Context, id string) error {
	if err := s.store.Deactivate(ctx, id, s.now()); err != nil {
		return err
	}
	logger.Info("department deactivated", zap.String("department", id))
	return nil
}

func (s *DepartmentService) Workflow(ctx context.Context, id string) (*model.VAPIWorkflow, error) {
	final, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &final.VapiWorkflow, nil
}

func (s *DepartmentService) FunctionCall(ctx context.Context, id string) (string, error) {
	final, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return generator.GenerateFunctionCall(*final)
}

func (s *DepartmentService) Simulate(ctx context.Context, id string, answers simulate.Answers) (simulate.Result, error) {
	final, err := s.store.Get(ctx, id)
	if err != nil {
		return simulate.Result{}, err
	}
	return simulate.Run(final.VapiWorkflow, answers)
}

func (s *DepartmentService) Inspect(ctx context.Context, id string, path string) (any, error) {
	final, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := inspect.NewDocument(final.VapiWorkflow)
	if err != nil {
		return nil, fmt.Errorf("department %s: %w", id, err)
	}
	res, err := doc.Query(path)
	if err != nil {
		return nil, InvalidRequestError{Details: []string{err.Error()}}
	}
	return res, nil
}
