package task

import (
	"errors"
	"testing"

	"github.com/dverbeek84/raciflow/internal/domain"
)

func TestLetter_IsValid(t *testing.T) {
	t.Parallel()

	for _, l := range Letters {
		if !l.IsValid() {
			t.Errorf("Letter(%q).IsValid() = false, want true", l)
		}
	}
	for _, l := range []Letter{"", "X", "r", "RA"} {
		if l.IsValid() {
			t.Errorf("Letter(%q).IsValid() = true, want false", l)
		}
	}
}

func TestLetter_CanModify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		letter Letter
		want   bool
	}{
		{LetterResponsible, true},
		{LetterAccountable, true},
		{LetterConsulted, false},
		{LetterInformed, false},
	}
	for _, tt := range tests {
		if got := tt.letter.CanModify(); got != tt.want {
			t.Errorf("Letter(%q).CanModify() = %v, want %v", tt.letter, got, tt.want)
		}
	}
}

func TestNewAssignment(t *testing.T) {
	t.Parallel()

	t.Run("valid assignment", func(t *testing.T) {
		t.Parallel()
		a, err := NewAssignment(domain.NewID(), "u1", LetterResponsible)
		if err != nil {
			t.Fatalf("NewAssignment() error = %v, want nil", err)
		}
		if a.Letter != LetterResponsible {
			t.Errorf("NewAssignment().Letter = %q, want R", a.Letter)
		}
	})

	t.Run("rejects invalid letter", func(t *testing.T) {
		t.Parallel()
		_, err := NewAssignment(domain.NewID(), "u1", "Q")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("NewAssignment() error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects missing user", func(t *testing.T) {
		t.Parallel()
		_, err := NewAssignment(domain.NewID(), "", LetterInformed)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("NewAssignment() error = %v, want ErrValidation", err)
		}
	})
}

func TestBuildRaciMap(t *testing.T) {
	t.Parallel()

	id := domain.NewID()
	assignments := []Assignment{
		{EntityID: id, UserID: "u1", Letter: LetterResponsible},
		{EntityID: id, UserID: "u2", Letter: LetterConsulted},
		{EntityID: id, UserID: "u3", Letter: LetterResponsible},
		{EntityID: id, UserID: "u4", Letter: LetterAccountable},
		{EntityID: id, UserID: "u5", Letter: LetterInformed},
	}

	m := BuildRaciMap(assignments)

	if len(m.Responsible) != 2 || m.Responsible[0] != "u1" || m.Responsible[1] != "u3" {
		t.Errorf("Responsible = %v, want [u1 u3] in input order", m.Responsible)
	}
	if len(m.Accountable) != 1 || m.Accountable[0] != "u4" {
		t.Errorf("Accountable = %v, want [u4]", m.Accountable)
	}
	if len(m.Consulted) != 1 || m.Consulted[0] != "u2" {
		t.Errorf("Consulted = %v, want [u2]", m.Consulted)
	}
	if len(m.Informed) != 1 || m.Informed[0] != "u5" {
		t.Errorf("Informed = %v, want [u5]", m.Informed)
	}
}

func TestLetterFor(t *testing.T) {
	t.Parallel()

	id := domain.NewID()
	assignments := []Assignment{
		{EntityID: id, UserID: "u1", Letter: LetterResponsible},
		{EntityID: id, UserID: "u2", Letter: LetterInformed},
	}

	if l, ok := LetterFor(assignments, "u2"); !ok || l != LetterInformed {
		t.Errorf("LetterFor(u2) = %q, %v; want I, true", l, ok)
	}
	if _, ok := LetterFor(assignments, "u9"); ok {
		t.Error("LetterFor(u9) ok = true, want false")
	}
}

func TestPhase_IsValid(t *testing.T) {
	t.Parallel()

	for _, p := range Phases {
		if !p.IsValid() {
			t.Errorf("Phase(%q).IsValid() = false, want true", p)
		}
	}
	for _, p := range []Phase{"", "B", "m", "A3"} {
		if p.IsValid() {
			t.Errorf("Phase(%q).IsValid() = true, want false", p)
		}
	}
}

func TestPriority_IsValid(t *testing.T) {
	t.Parallel()

	for p := Priority(1); p <= 5; p++ {
		if !p.IsValid() {
			t.Errorf("Priority(%d).IsValid() = false, want true", p)
		}
	}
	for _, p := range []Priority{0, 6, -2} {
		if p.IsValid() {
			t.Errorf("Priority(%d).IsValid() = true, want false", p)
		}
	}
}
