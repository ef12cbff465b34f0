package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dverbeek84/raciflow/internal/adapters/http/middleware"
	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

var testTime = time.Date(2026, 3, 9, 15, 4, 5, 0, time.UTC)

// fakeTaskService implements ports.TaskService with per-method function
// fields. Tests set only the methods the handler under test should reach;
// an unexpected call panics on the nil field.
type fakeTaskService struct {
	createTask         func(ctx context.Context, in ports.CreateTaskInput, actor domain.Actor) (*task.Details, error)
	getTaskWithDetails func(ctx context.Context, id domain.ID) (*task.Details, error)
	listTasks          func(ctx context.Context, filter ports.TaskFilter) ([]task.Task, error)
	updateTask         func(ctx context.Context, id domain.ID, in ports.UpdateTaskInput, actor domain.Actor) (*task.Details, error)
	deleteTask         func(ctx context.Context, id domain.ID, actor domain.Actor) error
	createSubTask      func(ctx context.Context, taskID domain.ID, in ports.CreateSubTaskInput, actor domain.Actor) (*task.SubTaskDetails, error)
	updateSubTask      func(ctx context.Context, subTaskID domain.ID, completed bool, actor domain.Actor) (*task.SubTaskDetails, error)
	deleteSubTask      func(ctx context.Context, subTaskID domain.ID, actor domain.Actor) error
	canModifyTask      func(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error)
	canChangePhase     func(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error)
	isTaskLocked       func(ctx context.Context, taskID domain.ID) (*ports.TaskLock, error)
	lockTask           func(ctx context.Context, taskID domain.ID, actor domain.Actor) error
	unlockTask         func(ctx context.Context, taskID domain.ID, actor domain.Actor) error
}

func (f *fakeTaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput, actor domain.Actor) (*task.Details, error) {
	return f.createTask(ctx, in, actor)
}

func (f *fakeTaskService) GetTaskWithDetails(ctx context.Context, id domain.ID) (*task.Details, error) {
	return f.getTaskWithDetails(ctx, id)
}

func (f *fakeTaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]task.Task, error) {
	return f.listTasks(ctx, filter)
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, id domain.ID, in ports.UpdateTaskInput, actor domain.Actor) (*task.Details, error) {
	return f.updateTask(ctx, id, in, actor)
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, id domain.ID, actor domain.Actor) error {
	return f.deleteTask(ctx, id, actor)
}

func (f *fakeTaskService) CreateSubTask(ctx context.Context, taskID domain.ID, in ports.CreateSubTaskInput, actor domain.Actor) (*task.SubTaskDetails, error) {
	return f.createSubTask(ctx, taskID, in, actor)
}

func (f *fakeTaskService) UpdateSubTaskStatus(ctx context.Context, subTaskID domain.ID, completed bool, actor domain.Actor) (*task.SubTaskDetails, error) {
	return f.updateSubTask(ctx, subTaskID, completed, actor)
}

func (f *fakeTaskService) DeleteSubTask(ctx context.Context, subTaskID domain.ID, actor domain.Actor) error {
	return f.deleteSubTask(ctx, subTaskID, actor)
}

func (f *fakeTaskService) CanModifyTask(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error) {
	return f.canModifyTask(ctx, taskID, actor)
}

func (f *fakeTaskService) CanChangePhase(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error) {
	return f.canChangePhase(ctx, taskID, actor)
}

func (f *fakeTaskService) IsTaskLocked(ctx context.Context, taskID domain.ID) (*ports.TaskLock, error) {
	return f.isTaskLocked(ctx, taskID)
}

func (f *fakeTaskService) LockTaskForEditing(ctx context.Context, taskID domain.ID, actor domain.Actor) error {
	return f.lockTask(ctx, taskID, actor)
}

func (f *fakeTaskService) UnlockTaskAfterEditing(ctx context.Context, taskID domain.ID, actor domain.Actor) error {
	return f.unlockTask(ctx, taskID, actor)
}

func testActor() domain.Actor {
	return domain.Actor{UserID: "user-1", Role: domain.RoleContributor}
}

func validTask() task.Task {
	return task.Task{
		ID:        domain.NewID(),
		Phase:     task.PhaseD,
		Title:     "Migrate intranet search",
		Priority:  task.Priority(2),
		OwnerID:   "user-1",
		Progress:  0,
		CreatorID: "user-1",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

func validDetails() *task.Details {
	t := validTask()
	return &task.Details{
		Task: t,
		Raci: task.RaciMap{
			Responsible: []string{"user-1"},
			Accountable: []string{"user-2"},
		},
		SubTasks:         nil,
		ProfilesImpacted: []string{"editors"},
	}
}

func validSubTaskDetails(taskID domain.ID) *task.SubTaskDetails {
	return &task.SubTaskDetails{
		SubTask: task.SubTask{
			ID:        domain.NewID(),
			TaskID:    taskID,
			Title:     "Index legacy pages",
			Completed: false,
			CreatorID: "user-1",
			CreatedAt: testTime,
			UpdatedAt: testTime,
		},
		Raci: task.RaciMap{Responsible: []string{"user-1"}},
	}
}

// withChiParams attaches URL parameters the way the chi router would.
func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withActor attaches the caller identity the way the identity middleware would.
func withActor(r *http.Request, actor domain.Actor) *http.Request {
	return r.WithContext(middleware.WithActor(r.Context(), actor))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
