package task

// Priority bounds. Priorities are inclusive: 1 is the most urgent.
const (
	PriorityMin = 1
	PriorityMax = 5
)

// Priority is the urgency level of a task, in [PriorityMin, PriorityMax].
type Priority int

// IsValid returns true if the priority is within the allowed range.
func (p Priority) IsValid() bool {
	return p >= PriorityMin && p <= PriorityMax
}
