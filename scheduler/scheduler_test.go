package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mohitkumar/checkin/config"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	rd "github.com/mohitkumar/checkin/persistence/redis"
	"github.com/mohitkumar/checkin/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeDepartments struct {
	persistence.DepartmentStore
	list []model.FinalDepartmentObject
}

func (f *fakeDepartments) List(ctx context.Context) ([]model.FinalDepartmentObject, error) {
	return f.list, nil
}

type fakeMarks struct {
	mu    sync.Mutex
	marks map[string]time.Time
}

func (f *fakeMarks) LastRun(ctx context.Context, id string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.marks[id]
	return at, ok, nil
}

func (f *fakeMarks) MarkRun(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[id] = at
	return nil
}

type fakeQueue struct {
	mu       sync.Mutex
	failures int
	messages []string
}

func (f *fakeQueue) Push(ctx context.Context, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("queue unavailable")
	}
	f.messages = append(f.messages, string(message))
	return nil
}

func (f *fakeQueue) Pop(ctx context.Context, batchSize int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := batchSize
	if n > len(f.messages) {
		n = len(f.messages)
	}
	out := f.messages[:n]
	f.messages = f.messages[n:]
	return out, nil
}

func (f *fakeQueue) remainingFailures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures
}

func inflight(s *Scheduler, scheduleId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[scheduleId]
}

func (f *fakeQueue) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func department(id string, cron string) model.FinalDepartmentObject {
	return model.FinalDepartmentObject{
		Department: model.Department{Id: id, IsActive: true},
		Workflow:   model.WorkflowConfig{Id: "workflow_" + id},
		Schedule:   model.Schedule{Id: "schedule_" + id, DepartmentId: id, Cron: cron, TimeZone: "Africa/Johannesburg", Enabled: true},
		VapiWorkflow: model.VAPIWorkflow{Name: id},
	}
}

// Monday 2024-06-03 08:00 in Johannesburg.
var monday = time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)

func TestTickDispatchesDueSchedules(t *testing.T) {
	defer goleak.VerifyNone(t)

	inactive := department("dept_off", "0 9 * * 1-5")
	inactive.Department.IsActive = false
	manual := department("dept_manual", model.MANUAL_CRON)
	disabled := department("dept_disabled", "0 9 * * 1-5")
	disabled.Schedule.Enabled = false

	departments := &fakeDepartments{list: []model.FinalDepartmentObject{
		department("dept_1", "0 9 * * 1-5"),
		inactive, manual, disabled,
	}}
	marks := &fakeMarks{marks: map[string]time.Time{}}
	queue := &fakeQueue{failures: 2}
	var wg sync.WaitGroup
	s := NewScheduler(departments, marks, queue, config.SchedulerConfig{TickInterval: time.Hour, PushRetries: 3, RetryDelay: time.Millisecond}, &wg)
	s.Start()

	ctx := context.Background()
	s.now = func() time.Time { return monday }
	due, err := s.Tick(ctx)
	require.NoError(t, err)
	require.Zero(t, due)
	require.Len(t, marks.marks, 1)

	// 08:30 local, before the 09:00 activation
	s.now = func() time.Time { return monday.Add(30 * time.Minute) }
	due, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Zero(t, due)

	s.now = func() time.Time { return monday.Add(90 * time.Minute) }
	due, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, due)

	require.Eventually(t, func() bool { return queue.len() == 1 }, time.Second, 5*time.Millisecond)
	reqs, err := Poll(ctx, queue, 10)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	require.Equal(t, "dept_1", reqs[0].DepartmentId)
	require.Equal(t, "schedule_dept_1", reqs[0].ScheduleId)
	require.True(t, reqs[0].ScheduledFor.Equal(monday.Add(time.Hour)))

	// already dispatched for today
	due, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Zero(t, due)

	require.NoError(t, s.Stop())
	wg.Wait()
}

func TestDispatchGivesUpAfterRetries(t *testing.T) {
	queue := &fakeQueue{failures: 10}
	s := NewScheduler(&fakeDepartments{}, &fakeMarks{marks: map[string]time.Time{}}, queue, config.SchedulerConfig{PushRetries: 2, RetryDelay: time.Millisecond}, &sync.WaitGroup{})
	marks := s.marks.(*fakeMarks)
	err := s.dispatch(dispatchTask{Request: model.DispatchRequest{DepartmentId: "dept_1", ScheduleId: "schedule_dept_1"}, MarkAt: monday})
	require.Error(t, err)
	require.Equal(t, 7, queue.failures)
	require.Empty(t, marks.marks)

	require.Error(t, s.dispatch("not a request"))
}

func TestFailedPushIsRetriedOnNextTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	departments := &fakeDepartments{list: []model.FinalDepartmentObject{department("dept_1", "0 9 * * 1-5")}}
	marks := &fakeMarks{marks: map[string]time.Time{"schedule_dept_1": monday}}
	queue := &fakeQueue{failures: 100}
	var wg sync.WaitGroup
	s := NewScheduler(departments, marks, queue, config.SchedulerConfig{TickInterval: time.Hour, PushRetries: 1, RetryDelay: time.Millisecond}, &wg)
	s.now = func() time.Time { return monday.Add(90 * time.Minute) }
	s.Start()

	ctx := context.Background()
	due, err := s.Tick(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, due)
	require.Eventually(t, func() bool { return queue.remainingFailures() == 98 && !inflight(s, "schedule_dept_1") }, time.Second, 5*time.Millisecond)
	last, _, _ := marks.LastRun(ctx, "schedule_dept_1")
	require.True(t, last.Equal(monday))

	queue.mu.Lock()
	queue.failures = 0
	queue.mu.Unlock()
	due, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, due)
	require.Eventually(t, func() bool {
		last, _, _ := marks.LastRun(ctx, "schedule_dept_1")
		return queue.len() == 1 && last.Equal(monday.Add(90*time.Minute))
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	wg.Wait()
}

func TestNextRunRejectsBadSchedules(t *testing.T) {
	s := NewScheduler(&fakeDepartments{}, &fakeMarks{marks: map[string]time.Time{}}, &fakeQueue{}, config.SchedulerConfig{}, &sync.WaitGroup{})
	_, _, err := s.NextRun(context.Background(), model.Schedule{Id: "s", Cron: "0 9 * * 1-5", TimeZone: "Mars/Olympus"}, monday)
	require.Error(t, err)
	_, _, err = s.NextRun(context.Background(), model.Schedule{Id: "s", Cron: "every day", TimeZone: "UTC"}, monday)
	require.Error(t, err)
}

func TestSchedulerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	conf := rd.Config{Addrs: []string{mr.Addr()}, Namespace: "test"}
	departments := rd.NewRedisDepartmentStore(conf, util.NewJsonEncoderDecoder[model.FinalDepartmentObject]())
	marks := rd.NewRedisScheduleMarks(conf)
	queue := rd.NewRedisQueue(conf, "dispatch")
	t.Cleanup(func() {
		departments.Close()
		marks.Close()
		queue.Close()
	})

	ctx := context.Background()
	require.NoError(t, departments.Save(ctx, department("dept_1", "*/5 * * * *")))
	require.NoError(t, marks.MarkRun(ctx, "schedule_dept_1", monday))

	var wg sync.WaitGroup
	s := NewScheduler(departments, marks, queue, config.SchedulerConfig{TickInterval: time.Hour}, &wg)
	s.now = func() time.Time { return monday.Add(6 * time.Minute) }
	s.Start()
	defer func() {
		s.Stop()
		wg.Wait()
	}()

	due, err := s.Tick(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, due)

	var reqs []model.DispatchRequest
	require.Eventually(t, func() bool {
		got, err := Poll(ctx, queue, 10)
		reqs = append(reqs, got...)
		return err == nil && len(reqs) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, "workflow_dept_1", reqs[0].WorkflowId)
	require.Equal(t, "dept_1", reqs[0].Workflow.Name)

	require.Eventually(t, func() bool {
		last, ok, err := marks.LastRun(ctx, "schedule_dept_1")
		return err == nil && ok && last.Equal(monday.Add(6*time.Minute))
	}, time.Second, 10*time.Millisecond)
}
