package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
	"github.com/mohitkumar/checkin/util"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	mr := miniredis.RunT(t)
	return Config{
		Addrs:     []string{mr.Addr()},
		Namespace: "test",
	}
}

func department(id string, created time.Time) model.FinalDepartmentObject {
	return model.FinalDepartmentObject{
		Department: model.Department{Id: id, Name: "Dept " + id, CreatedAt: created, IsActive: true},
		Workflow:   model.WorkflowConfig{Id: "workflow_" + id, DepartmentId: id, Version: 1},
		Schedule:   model.Schedule{Id: "schedule_" + id, DepartmentId: id, Cron: model.DEFAULT_CRON, TimeZone: model.DEFAULT_TIME_ZONE, Enabled: true},
		VapiWorkflow: model.VAPIWorkflow{
			Name: "Dept " + id + " Individual Staff Workflow",
			Steps: []model.Step{{
				Type:   model.STEP_TYPE_REPORT,
				StepId: model.REPORT_STEP_ID,
				Report: &model.ReportParams{Fields: []string{"escalation_requested"}, Output: model.REPORT_OUTPUT_PDF},
			}},
		},
	}
}

func TestDepartmentStore(t *testing.T) {
	for scenario, fn := range map[string]func(
		t *testing.T, store *redisDepartmentStore,
	){
		"save and get":           testSaveGet,
		"get missing":            testGetMissing,
		"list newest first":      testList,
		"deactivate":             testDeactivate,
		"schedule index":         testScheduleIndex,
		"save overwrites record": testOverwrite,
	} {
		t.Run(scenario, func(t *testing.T) {
			store := NewRedisDepartmentStore(testConfig(t), util.NewJsonEncoderDecoder[model.FinalDepartmentObject]())
			defer store.Close()
			fn(t, store)
		})
	}
}

func testSaveGet(t *testing.T, store *redisDepartmentStore) {
	ctx := context.Background()
	want := department("dept_1", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, "dept_1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("department mismatch (-want +got):\n%s", diff)
	}
}

func testGetMissing(t *testing.T, store *redisDepartmentStore) {
	_, err := store.Get(context.Background(), "dept_x")
	var nf persistence.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "department", nf.Kind)
}

func testList(t *testing.T, store *redisDepartmentStore) {
	ctx := context.Background()
	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, department("dept_a", base)))
	require.NoError(t, store.Save(ctx, department("dept_b", base.Add(time.Hour))))
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "dept_b", list[0].Department.Id)
	require.Equal(t, "dept_a", list[1].Department.Id)
}

func testDeactivate(t *testing.T, store *redisDepartmentStore) {
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, department("dept_1", time.Now().UTC())))
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Deactivate(ctx, "dept_1", at))

	got, err := store.Get(ctx, "dept_1")
	require.NoError(t, err)
	require.False(t, got.Department.IsActive)
	require.False(t, got.Schedule.Enabled)
	require.True(t, at.Equal(got.Department.UpdatedAt))

	require.Error(t, store.Deactivate(ctx, "dept_missing", at))
}

func testScheduleIndex(t *testing.T, store *redisDepartmentStore) {
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, department("dept_1", time.Now().UTC())))
	id, err := store.DepartmentForSchedule(ctx, "schedule_dept_1")
	require.NoError(t, err)
	require.Equal(t, "dept_1", id)

	_, err = store.DepartmentForSchedule(ctx, "schedule_missing")
	require.Error(t, err)
}

func testOverwrite(t *testing.T, store *redisDepartmentStore) {
	ctx := context.Background()
	d := department("dept_1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, d))
	d.Department.Name = "Renamed"
	d.Workflow.Version = 2
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, "dept_1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Department.Name)
	require.Equal(t, 2, got.Workflow.Version)
}

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	store := NewRedisBlobStore(testConfig(t))
	defer store.Close()

	pdf := []byte("%PDF-1.4 test")
	id, err := store.Put(ctx, pdf, "application/pdf")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, contentType, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, pdf, data)
	require.Equal(t, "application/pdf", contentType)

	_, _, err = store.Get(ctx, "missing")
	require.ErrorAs(t, err, &persistence.NotFoundError{})
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	queue := NewRedisQueue(testConfig(t), "dispatch")
	defer queue.Close()

	res, err := queue.Pop(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, res)

	for _, id := range []string{"dept_1", "dept_2", "dept_3"} {
		msg, _ := json.Marshal(model.DispatchRequest{DepartmentId: id})
		require.NoError(t, queue.Push(ctx, msg))
	}
	res, err = queue.Pop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Contains(t, res[0], "dept_1")
	require.Contains(t, res[1], "dept_2")

	res, err = queue.Pop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Contains(t, res[0], "dept_3")
}

func TestScheduleMarks(t *testing.T) {
	ctx := context.Background()
	marks := NewRedisScheduleMarks(testConfig(t))
	defer marks.Close()

	_, ok, err := marks.LastRun(ctx, "schedule_1")
	require.NoError(t, err)
	require.False(t, ok)

	at := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	require.NoError(t, marks.MarkRun(ctx, "schedule_1", at))
	got, ok, err := marks.LastRun(ctx, "schedule_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, at.Equal(got))
}
