package task

// Phase is the fixed workflow stage a task belongs to. The seven codes are
// ordered stages of the delivery workflow; moving a task between them is
// gated more strictly than other edits.
type Phase string

const (
	PhaseM  Phase = "M"
	PhaseE  Phase = "E"
	PhaseD  Phase = "D"
	PhaseA  Phase = "A"
	PhaseC  Phase = "C"
	PhaseA2 Phase = "A2"
	PhaseP  Phase = "P"
)

// Phases lists all workflow phases in workflow order.
var Phases = []Phase{PhaseM, PhaseE, PhaseD, PhaseA, PhaseC, PhaseA2, PhaseP}

// IsValid returns true if the phase is one of the defined constants.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseM, PhaseE, PhaseD, PhaseA, PhaseC, PhaseA2, PhaseP:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}
