package task

import (
	"errors"
	"testing"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
)

func TestNewSubTask(t *testing.T) {
	t.Parallel()

	t.Run("creates incomplete subtask", func(t *testing.T) {
		t.Parallel()
		parent := domain.NewID()

		st, err := NewSubTask(parent, "step1", "u1")
		if err != nil {
			t.Fatalf("NewSubTask() error = %v, want nil", err)
		}
		if st.Completed {
			t.Error("NewSubTask().Completed = true, want false")
		}
		if st.TaskID != parent {
			t.Errorf("NewSubTask().TaskID = %q, want %q", st.TaskID, parent)
		}
		if st.ID.IsZero() {
			t.Error("NewSubTask().ID is zero, want a generated ULID")
		}
	})

	t.Run("rejects missing parent reference", func(t *testing.T) {
		t.Parallel()
		_, err := NewSubTask("", "step1", "u1")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("NewSubTask() error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()
		_, err := NewSubTask(domain.NewID(), "  ", "u1")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("NewSubTask() error = %v, want ErrValidation", err)
		}
	})
}

func TestSubTask_SetCompleted(t *testing.T) {
	t.Parallel()
	st, err := NewSubTask(domain.NewID(), "step1", "u1")
	if err != nil {
		t.Fatalf("NewSubTask() error = %v, want nil", err)
	}
	before := st.UpdatedAt

	time.Sleep(time.Millisecond)
	st.SetCompleted(true)
	if !st.Completed {
		t.Error("Completed = false after SetCompleted(true)")
	}
	if !st.UpdatedAt.After(before) {
		t.Error("UpdatedAt not advanced after SetCompleted")
	}
}

func TestSubTask_UpdateTitle(t *testing.T) {
	t.Parallel()
	st, err := NewSubTask(domain.NewID(), "step1", "u1")
	if err != nil {
		t.Fatalf("NewSubTask() error = %v, want nil", err)
	}

	if err := st.UpdateTitle(""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateTitle(\"\") error = %v, want ErrValidation", err)
	}
	if st.Title != "step1" {
		t.Errorf("Title = %q after rejected mutation, want %q", st.Title, "step1")
	}

	if err := st.UpdateTitle("step1 revised"); err != nil {
		t.Errorf("UpdateTitle() error = %v, want nil", err)
	}
}

func TestCompletionProgress(t *testing.T) {
	t.Parallel()

	sub := func(completed bool) SubTask { return SubTask{Completed: completed} }

	tests := []struct {
		name     string
		subtasks []SubTask
		want     int
		wantOK   bool
	}{
		{name: "no subtasks skips recomputation", subtasks: nil, want: 0, wantOK: false},
		{name: "all completed", subtasks: []SubTask{sub(true), sub(true)}, want: 100, wantOK: true},
		{name: "none completed", subtasks: []SubTask{sub(false), sub(false)}, want: 0, wantOK: true},
		{name: "half completed", subtasks: []SubTask{sub(true), sub(false)}, want: 50, wantOK: true},
		{name: "one of three rounds to 33", subtasks: []SubTask{sub(true), sub(false), sub(false)}, want: 33, wantOK: true},
		{name: "two of three rounds to 67", subtasks: []SubTask{sub(true), sub(true), sub(false)}, want: 67, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := CompletionProgress(tt.subtasks)
			if ok != tt.wantOK {
				t.Fatalf("CompletionProgress() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("CompletionProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}
