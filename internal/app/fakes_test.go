package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/profile"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// errInjected simulates a storage failure mid-transaction.
var errInjected = errors.New("injected storage failure")

// fakeStore is an in-memory implementation of every repository port. A
// snapshot-restoring TxManager on top of it gives the tests real
// commit/rollback semantics without a database.
type fakeStore struct {
	tasks        map[domain.ID]task.Task
	subtasks     map[domain.ID]task.SubTask
	subOrder     map[domain.ID][]domain.ID
	taskRaci     map[domain.ID][]task.Assignment
	subRaci      map[domain.ID][]task.Assignment
	catalog      map[profile.Code]profile.Profile
	taskProfiles map[domain.ID][]profile.Code

	// failOn makes the named mutation method return errInjected.
	failOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:        make(map[domain.ID]task.Task),
		subtasks:     make(map[domain.ID]task.SubTask),
		subOrder:     make(map[domain.ID][]domain.ID),
		taskRaci:     make(map[domain.ID][]task.Assignment),
		subRaci:      make(map[domain.ID][]task.Assignment),
		catalog:      map[profile.Code]profile.Profile{"TEC": {Code: "TEC", Label: "Technical"}},
		taskProfiles: make(map[domain.ID][]profile.Code),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	c := newFakeStore()
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.subtasks {
		c.subtasks[k] = v
	}
	for k, v := range s.subOrder {
		c.subOrder[k] = append([]domain.ID(nil), v...)
	}
	for k, v := range s.taskRaci {
		c.taskRaci[k] = append([]task.Assignment(nil), v...)
	}
	for k, v := range s.subRaci {
		c.subRaci[k] = append([]task.Assignment(nil), v...)
	}
	for k, v := range s.catalog {
		c.catalog[k] = v
	}
	for k, v := range s.taskProfiles {
		c.taskProfiles[k] = append([]profile.Code(nil), v...)
	}
	return c
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.tasks = snap.tasks
	s.subtasks = snap.subtasks
	s.subOrder = snap.subOrder
	s.taskRaci = snap.taskRaci
	s.subRaci = snap.subRaci
	s.catalog = snap.catalog
	s.taskProfiles = snap.taskProfiles
}

// --- ports.TaskRepository ---

func (s *fakeStore) GetByID(_ context.Context, id domain.ID) (*task.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *fakeStore) List(_ context.Context, filter ports.TaskFilter) ([]task.Task, error) {
	var out []task.Task
	for _, t := range s.tasks {
		if filter.Phase != nil && t.Phase != *filter.Phase {
			continue
		}
		if filter.OwnerID != nil && t.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, _ ports.Tx, t *task.Task) error {
	if s.failOn == "Insert" {
		return errInjected
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *fakeStore) Update(_ context.Context, _ ports.Tx, t *task.Task) error {
	if s.failOn == "Update" {
		return errInjected
	}
	if _, ok := s.tasks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *fakeStore) Delete(_ context.Context, _ ports.Tx, id domain.ID) error {
	if _, ok := s.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tasks, id)
	for _, stID := range s.subOrder[id] {
		delete(s.subtasks, stID)
		delete(s.subRaci, stID)
	}
	delete(s.subOrder, id)
	delete(s.taskRaci, id)
	delete(s.taskProfiles, id)
	return nil
}

// --- ports.SubTaskRepository (distinct receiver wrapping the same store) ---

type fakeSubTaskRepo struct{ s *fakeStore }

func (r fakeSubTaskRepo) GetByID(_ context.Context, id domain.ID) (*task.SubTask, error) {
	st, ok := r.s.subtasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (r fakeSubTaskRepo) ListByTask(_ context.Context, taskID domain.ID) ([]task.SubTask, error) {
	var out []task.SubTask
	for _, id := range r.s.subOrder[taskID] {
		out = append(out, r.s.subtasks[id])
	}
	return out, nil
}

func (r fakeSubTaskRepo) Insert(_ context.Context, _ ports.Tx, st *task.SubTask) error {
	if r.s.failOn == "SubTaskInsert" {
		return errInjected
	}
	r.s.subtasks[st.ID] = *st
	r.s.subOrder[st.TaskID] = append(r.s.subOrder[st.TaskID], st.ID)
	return nil
}

func (r fakeSubTaskRepo) Update(_ context.Context, _ ports.Tx, st *task.SubTask) error {
	if _, ok := r.s.subtasks[st.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.subtasks[st.ID] = *st
	return nil
}

func (r fakeSubTaskRepo) Delete(_ context.Context, _ ports.Tx, id domain.ID) error {
	st, ok := r.s.subtasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.s.subtasks, id)
	delete(r.s.subRaci, id)
	order := r.s.subOrder[st.TaskID]
	for i, sid := range order {
		if sid == id {
			r.s.subOrder[st.TaskID] = append(order[:i:i], order[i+1:]...)
			break
		}
	}
	return nil
}

// --- ports.RaciRepository ---

type fakeRaciRepo struct{ s *fakeStore }

func (r fakeRaciRepo) ListForTask(_ context.Context, taskID domain.ID) ([]task.Assignment, error) {
	return append([]task.Assignment(nil), r.s.taskRaci[taskID]...), nil
}

func (r fakeRaciRepo) ListForSubTask(_ context.Context, subTaskID domain.ID) ([]task.Assignment, error) {
	return append([]task.Assignment(nil), r.s.subRaci[subTaskID]...), nil
}

func upsert(set []task.Assignment, a task.Assignment) []task.Assignment {
	for i := range set {
		if set[i].UserID == a.UserID {
			set[i].Letter = a.Letter
			return set
		}
	}
	return append(set, a)
}

func (r fakeRaciRepo) SaveTaskAssignment(_ context.Context, _ ports.Tx, a task.Assignment) error {
	if r.s.failOn == "SaveTaskAssignment" {
		return errInjected
	}
	r.s.taskRaci[a.EntityID] = upsert(r.s.taskRaci[a.EntityID], a)
	return nil
}

func (r fakeRaciRepo) SaveSubTaskAssignment(_ context.Context, _ ports.Tx, a task.Assignment) error {
	r.s.subRaci[a.EntityID] = upsert(r.s.subRaci[a.EntityID], a)
	return nil
}

func (r fakeRaciRepo) ReplaceForTask(_ context.Context, _ ports.Tx, taskID domain.ID, assignments []task.Assignment) error {
	if r.s.failOn == "ReplaceForTask" {
		return errInjected
	}
	r.s.taskRaci[taskID] = append([]task.Assignment(nil), assignments...)
	return nil
}

func (r fakeRaciRepo) DeleteAllForTask(_ context.Context, _ ports.Tx, taskID domain.ID) error {
	delete(r.s.taskRaci, taskID)
	return nil
}

func (r fakeRaciRepo) DeleteAllForSubTask(_ context.Context, _ ports.Tx, subTaskID domain.ID) error {
	delete(r.s.subRaci, subTaskID)
	return nil
}

func (r fakeRaciRepo) CopyTaskToSubTask(_ context.Context, _ ports.Tx, taskID, subTaskID domain.ID) error {
	if r.s.failOn == "CopyTaskToSubTask" {
		return errInjected
	}
	for _, a := range r.s.taskRaci[taskID] {
		r.s.subRaci[subTaskID] = append(r.s.subRaci[subTaskID], task.Assignment{
			EntityID: subTaskID,
			UserID:   a.UserID,
			Letter:   a.Letter,
		})
	}
	return nil
}

// --- ports.ProfileRepository ---

type fakeProfileRepo struct{ s *fakeStore }

func (r fakeProfileRepo) List(_ context.Context) ([]profile.Profile, error) {
	var out []profile.Profile
	for _, p := range r.s.catalog {
		out = append(out, p)
	}
	return out, nil
}

func (r fakeProfileRepo) Exists(_ context.Context, code profile.Code) (bool, error) {
	_, ok := r.s.catalog[code]
	return ok, nil
}

func (r fakeProfileRepo) ListForTask(_ context.Context, taskID domain.ID) ([]profile.Code, error) {
	return append([]profile.Code(nil), r.s.taskProfiles[taskID]...), nil
}

func (r fakeProfileRepo) ReplaceForTask(_ context.Context, _ ports.Tx, taskID domain.ID, codes []profile.Code) error {
	if r.s.failOn == "ProfileReplaceForTask" {
		return errInjected
	}
	r.s.taskProfiles[taskID] = append([]profile.Code(nil), codes...)
	return nil
}

func (r fakeProfileRepo) DeleteAllForTask(_ context.Context, _ ports.Tx, taskID domain.ID) error {
	delete(r.s.taskProfiles, taskID)
	return nil
}

// --- ports.TxManager ---

// fakeTxManager snapshots the store before fn and restores it when fn fails,
// mirroring the commit-or-rollback contract.
type fakeTxManager struct{ s *fakeStore }

func (m fakeTxManager) WithinTx(_ context.Context, fn func(tx ports.Tx) error) error {
	snap := m.s.snapshot()
	if err := fn(struct{}{}); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

// --- ports.EventEmitter ---

type emittedEvent struct {
	kind   string
	taskID domain.ID
	userID string
}

// fakeEmitter records emissions in call order.
type fakeEmitter struct {
	events []emittedEvent
}

func (e *fakeEmitter) EmitTaskCreated(_ context.Context, d *task.Details) {
	e.events = append(e.events, emittedEvent{kind: "task.created", taskID: d.Task.ID})
}

func (e *fakeEmitter) EmitTaskUpdated(_ context.Context, d *task.Details) {
	e.events = append(e.events, emittedEvent{kind: "task.updated", taskID: d.Task.ID})
}

func (e *fakeEmitter) EmitTaskDeleted(_ context.Context, taskID domain.ID) {
	e.events = append(e.events, emittedEvent{kind: "task.deleted", taskID: taskID})
}

func (e *fakeEmitter) EmitSubTaskUpdated(_ context.Context, d *task.SubTaskDetails) {
	e.events = append(e.events, emittedEvent{kind: "subtask.updated", taskID: d.SubTask.TaskID})
}

func (e *fakeEmitter) EmitTaskLocked(_ context.Context, taskID domain.ID, userID string) {
	e.events = append(e.events, emittedEvent{kind: "task.locked", taskID: taskID, userID: userID})
}

func (e *fakeEmitter) EmitTaskUnlocked(_ context.Context, taskID domain.ID, userID string) {
	e.events = append(e.events, emittedEvent{kind: "task.unlocked", taskID: taskID, userID: userID})
}

func (e *fakeEmitter) kinds() []string {
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.kind)
	}
	return out
}

// newTestService wires a TaskService over a fresh fake store.
func newTestService() (*TaskService, *fakeStore, *fakeEmitter) {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	svc := NewTaskService(
		fakeTxManager{s: store},
		store,
		fakeSubTaskRepo{s: store},
		fakeRaciRepo{s: store},
		fakeProfileRepo{s: store},
		emitter,
		discardLogger(),
	)
	return svc, store, emitter
}
