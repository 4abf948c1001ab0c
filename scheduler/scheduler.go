package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/mohitkumar/checkin/analytics"
	"github.com/mohitkumar/checkin/config"
	"github.com/mohitkumar/checkin/logger"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DEFAULT_TICK_INTERVAL = 30 * time.Second
const dispatchCapacity = 64

// Scheduler turns enabled department schedules into dispatch requests on the queue the call
// executor polls. The first time a schedule is seen it is only marked, so activations from
// before the service knew about it are never replayed. A schedule is marked only after its
// request reached the queue; a failed or dropped push is picked up again on a later tick.
type Scheduler struct {
	departments persistence.DepartmentStore
	marks       persistence.ScheduleMarks
	queue       persistence.Queue
	conf        config.SchedulerConfig
	stop        chan struct{}
	wg          *sync.WaitGroup
	tickWorker  *util.TickWorker
	dispatcher  *util.Worker
	now         func() time.Time
	mu          sync.Mutex
	inflight    map[string]bool
}

type dispatchTask struct {
	Request model.DispatchRequest
	MarkAt  time.Time
}

func NewScheduler(departments persistence.DepartmentStore, marks persistence.ScheduleMarks, queue persistence.Queue, conf config.SchedulerConfig, wg *sync.WaitGroup) *Scheduler {
	if conf.TickInterval <= 0 {
		conf.TickInterval = DEFAULT_TICK_INTERVAL
	}
	if conf.RetryDelay <= 0 {
		conf.RetryDelay = time.Second
	}
	s := &Scheduler{
		departments: departments,
		marks:       marks,
		queue:       queue,
		conf:        conf,
		stop:        make(chan struct{}),
		wg:          wg,
		now:         time.Now,
		inflight:    make(map[string]bool),
	}
	s.dispatcher = util.NewWorker("dispatcher", wg, s.dispatch, dispatchCapacity)
	s.tickWorker = util.NewTickWorker("scheduler", conf.TickInterval, s.stop, func() {
		if _, err := s.Tick(context.Background()); err != nil {
			logger.Error("scheduler tick failed", zap.Error(err))
		}
	}, wg)
	return s
}

func (s *Scheduler) Start() {
	s.dispatcher.Start()
	s.tickWorker.Start()
}

func (s *Scheduler) Stop() error {
	logger.Info("stopping scheduler")
	s.tickWorker.Stop()
	s.dispatcher.Stop()
	return nil
}

// Tick hands every due schedule to the dispatcher and returns how many were due.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	due := 0
	for _, final := range departments {
		req, ok, err := s.due(ctx, final, now)
		if err != nil {
			logger.Error("error evaluating schedule", zap.String("department", final.Department.Id), zap.String("schedule", final.Schedule.Id), zap.Error(err))
			continue
		}
		if !ok || !s.claim(req.ScheduleId) {
			continue
		}
		s.dispatcher.Sender() <- dispatchTask{Request: req, MarkAt: now}
		due++
	}
	return due, nil
}

// claim reports false when the schedule already has a request waiting for the dispatcher.
func (s *Scheduler) claim(scheduleId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[scheduleId] {
		return false
	}
	s.inflight[scheduleId] = true
	return true
}

func (s *Scheduler) release(scheduleId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, scheduleId)
}

func (s *Scheduler) due(ctx context.Context, final model.FinalDepartmentObject, now time.Time) (model.DispatchRequest, bool, error) {
	sc := final.Schedule
	if !final.Department.IsActive || !sc.Enabled || sc.Manual() || sc.Id == "" {
		return model.DispatchRequest{}, false, nil
	}
	next, ok, err := s.NextRun(ctx, sc, now)
	if err != nil || !ok || next.After(now) {
		return model.DispatchRequest{}, false, err
	}
	return model.DispatchRequest{
		DepartmentId: final.Department.Id,
		WorkflowId:   final.Workflow.Id,
		ScheduleId:   sc.Id,
		ScheduledFor: next,
		Workflow:     final.VapiWorkflow,
	}, true, nil
}

// NextRun returns the first activation after the schedule's last mark, evaluated in the
// schedule's time zone. An unmarked schedule is marked now and reports no activation.
func (s *Scheduler) NextRun(ctx context.Context, sc model.Schedule, now time.Time) (time.Time, bool, error) {
	loc, err := time.LoadLocation(sc.TimeZone)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("schedule %s: %w", sc.Id, err)
	}
	expr, err := cron.ParseStandard(sc.Cron)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("schedule %s: %w", sc.Id, err)
	}
	last, ok, err := s.marks.LastRun(ctx, sc.Id)
	if err != nil {
		return time.Time{}, false, err
	}
	if !ok {
		return time.Time{}, false, s.marks.MarkRun(ctx, sc.Id, now)
	}
	return expr.Next(last.In(loc)), true, nil
}

func (s *Scheduler) dispatch(task util.Task) error {
	t, ok := task.(dispatchTask)
	if !ok {
		return fmt.Errorf("unexpected dispatch task %T", task)
	}
	req := t.Request
	defer s.release(req.ScheduleId)
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	ctx := context.Background()
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.conf.RetryDelay), s.conf.PushRetries)
	err = backoff.Retry(func() error {
		return s.queue.Push(ctx, data)
	}, b)
	if err != nil {
		return fmt.Errorf("push dispatch for department %s: %w", req.DepartmentId, err)
	}
	if err := s.marks.MarkRun(ctx, req.ScheduleId, t.MarkAt); err != nil {
		return fmt.Errorf("mark schedule %s: %w", req.ScheduleId, err)
	}
	logger.Info("workflow dispatched", zap.String("department", req.DepartmentId), zap.Time("scheduledFor", req.ScheduledFor))
	analytics.RecordWorkflowDispatched(req.DepartmentId, req.ScheduleId, req.ScheduledFor.Format(time.RFC3339))
	return nil
}

var ErrDepartmentInactive = errors.New("department is inactive")

// Trigger queues an immediate run of the workflow owning scheduleId. It works whether or
// not the schedule is enabled and leaves the schedule mark untouched.
func Trigger(ctx context.Context, departments persistence.DepartmentStore, queue persistence.Queue, scheduleId string, now time.Time) (model.DispatchRequest, error) {
	departmentId, err := departments.DepartmentForSchedule(ctx, scheduleId)
	if err != nil {
		return model.DispatchRequest{}, err
	}
	final, err := departments.Get(ctx, departmentId)
	if err != nil {
		return model.DispatchRequest{}, err
	}
	if !final.Department.IsActive {
		return model.DispatchRequest{}, ErrDepartmentInactive
	}
	req := model.DispatchRequest{
		DepartmentId: final.Department.Id,
		WorkflowId:   final.Workflow.Id,
		ScheduleId:   scheduleId,
		ScheduledFor: now,
		Workflow:     final.VapiWorkflow,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return model.DispatchRequest{}, err
	}
	if err := queue.Push(ctx, data); err != nil {
		return model.DispatchRequest{}, err
	}
	logger.Info("workflow triggered", zap.String("department", req.DepartmentId), zap.String("schedule", scheduleId))
	analytics.RecordWorkflowDispatched(req.DepartmentId, scheduleId, now.Format(time.RFC3339))
	return req, nil
}

// Poll pops up to batchSize dispatch requests for the call executor.
func Poll(ctx context.Context, queue persistence.Queue, batchSize int) ([]model.DispatchRequest, error) {
	messages, err := queue.Pop(ctx, batchSize)
	if err != nil {
		return nil, err
	}
	res := make([]model.DispatchRequest, 0, len(messages))
	for _, m := range messages {
		var req model.DispatchRequest
		if err := json.Unmarshal([]byte(m), &req); err != nil {
			logger.Error("dropping malformed dispatch request", zap.String("message", m), zap.Error(err))
			continue
		}
		res = append(res, req)
	}
	return res, nil
}
