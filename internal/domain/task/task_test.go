package task

import (
	"errors"
	"testing"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
)

func timePtr(t time.Time) *time.Time { return &t }

func validInput() NewTaskInput {
	return NewTaskInput{
		Phase:       PhaseD,
		Title:       "Migrate login page",
		Description: "Move the login page to the new layout",
		Priority:    2,
		OwnerID:     "u-owner",
	}
}

func mustNew(t *testing.T) *Task {
	t.Helper()
	tk, err := New(validInput(), "u-creator")
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	return tk
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates task with progress zero and fresh id", func(t *testing.T) {
		t.Parallel()
		tk, err := New(validInput(), "u-creator")
		if err != nil {
			t.Fatalf("New() error = %v, want nil", err)
		}
		if tk.Progress != 0 {
			t.Errorf("New().Progress = %d, want 0", tk.Progress)
		}
		if tk.ID.IsZero() {
			t.Error("New().ID is zero, want a generated ULID")
		}
		if tk.CreatorID != "u-creator" {
			t.Errorf("New().CreatorID = %q, want %q", tk.CreatorID, "u-creator")
		}
		if tk.CreatedAt.IsZero() || tk.UpdatedAt.IsZero() {
			t.Error("New() timestamps not set")
		}
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.Title = "   "

		_, err := New(in, "u-creator")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("New() error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects unknown phase", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.Phase = "X"

		_, err := New(in, "u-creator")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("New() error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects priority out of range", func(t *testing.T) {
		t.Parallel()
		for _, p := range []Priority{0, 6, -1} {
			in := validInput()
			in.Priority = p

			_, err := New(in, "u-creator")
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("New(priority=%d) error = %v, want ErrValidation", p, err)
			}
		}
	})

	t.Run("rejects planned end before planned start", func(t *testing.T) {
		t.Parallel()
		in := validInput()
		in.PlannedStart = timePtr(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
		in.PlannedEnd = timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

		_, err := New(in, "u-creator")
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New() error = %v, want *ValidationError", err)
		}
		if _, ok := verr.Fields["planned_end"]; !ok {
			t.Errorf("ValidationError.Fields = %v, want planned_end entry", verr.Fields)
		}
	})

	t.Run("accepts equal planned dates", func(t *testing.T) {
		t.Parallel()
		day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		in := validInput()
		in.PlannedStart = timePtr(day)
		in.PlannedEnd = timePtr(day)

		if _, err := New(in, "u-creator"); err != nil {
			t.Errorf("New() error = %v, want nil", err)
		}
	})

	t.Run("rejects missing creator", func(t *testing.T) {
		t.Parallel()
		_, err := New(validInput(), "")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("New() error = %v, want ErrValidation", err)
		}
	})
}

func TestTask_Mutators(t *testing.T) {
	t.Parallel()

	t.Run("rejected mutation leaves state untouched", func(t *testing.T) {
		t.Parallel()
		tk := mustNew(t)
		before := *tk

		if err := tk.UpdateTitle("  "); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("UpdateTitle() error = %v, want ErrValidation", err)
		}
		if tk.Title != before.Title {
			t.Errorf("Title = %q after rejected mutation, want %q", tk.Title, before.Title)
		}
		if !tk.UpdatedAt.Equal(before.UpdatedAt) {
			t.Error("UpdatedAt changed after rejected mutation")
		}
	})

	t.Run("successful mutation stamps updated at", func(t *testing.T) {
		t.Parallel()
		tk := mustNew(t)
		before := tk.UpdatedAt

		time.Sleep(time.Millisecond)
		if err := tk.UpdatePriority(4); err != nil {
			t.Fatalf("UpdatePriority() error = %v, want nil", err)
		}
		if tk.Priority != 4 {
			t.Errorf("Priority = %d, want 4", tk.Priority)
		}
		if !tk.UpdatedAt.After(before) {
			t.Error("UpdatedAt not advanced after successful mutation")
		}
	})

	t.Run("update phase validates the new phase", func(t *testing.T) {
		t.Parallel()
		tk := mustNew(t)

		if err := tk.UpdatePhase(PhaseP); err != nil {
			t.Fatalf("UpdatePhase(P) error = %v, want nil", err)
		}
		if err := tk.UpdatePhase("Z"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("UpdatePhase(Z) error = %v, want ErrValidation", err)
		}
		if tk.Phase != PhaseP {
			t.Errorf("Phase = %q after rejected mutation, want %q", tk.Phase, PhaseP)
		}
	})

	t.Run("update planned dates validates ordering", func(t *testing.T) {
		t.Parallel()
		tk := mustNew(t)
		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		err := tk.UpdatePlannedDates(timePtr(start), timePtr(end))
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("UpdatePlannedDates() error = %v, want ErrValidation", err)
		}
		if tk.PlannedStart != nil || tk.PlannedEnd != nil {
			t.Error("planned dates set after rejected mutation")
		}
	})

	t.Run("set progress bounds", func(t *testing.T) {
		t.Parallel()
		tk := mustNew(t)

		if err := tk.SetProgress(100); err != nil {
			t.Fatalf("SetProgress(100) error = %v, want nil", err)
		}
		if err := tk.SetProgress(101); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("SetProgress(101) error = %v, want ErrValidation", err)
		}
		if tk.Progress != 100 {
			t.Errorf("Progress = %d after rejected mutation, want 100", tk.Progress)
		}
	})
}

func TestTask_IsOwnedBy(t *testing.T) {
	t.Parallel()
	tk := mustNew(t)

	if !tk.IsOwnedBy("u-owner") {
		t.Error("IsOwnedBy(owner) = false, want true")
	}
	if tk.IsOwnedBy("u-other") {
		t.Error("IsOwnedBy(other) = true, want false")
	}

	if err := tk.UpdateOwner(""); err != nil {
		t.Fatalf("UpdateOwner(\"\") error = %v, want nil", err)
	}
	if tk.IsOwnedBy("") {
		t.Error("IsOwnedBy(\"\") = true for unowned task, want false")
	}
}
