package task

import "math"

// CompletionProgress returns the parent progress derived from a subtask
// list: round(100 × completed / total). The boolean is false when the list
// is empty, in which case no recomputation must take place and the stored
// progress keeps its value.
func CompletionProgress(subtasks []SubTask) (int, bool) {
	if len(subtasks) == 0 {
		return 0, false
	}

	completed := 0
	for i := range subtasks {
		if subtasks[i].Completed {
			completed++
		}
	}

	progress := int(math.Round(100 * float64(completed) / float64(len(subtasks))))
	return progress, true
}
