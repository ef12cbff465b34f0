package task

// SubTaskDetails pairs a subtask with its own RACI map.
type SubTaskDetails struct {
	SubTask SubTask
	Raci    RaciMap
}

// Details is the composed read model for one task: the task itself, its
// bucketed RACI map, its subtasks (each with their own RACI map), and the
// impacted-profile codes. It is a plain data object ready for serialization
// by transport layers.
type Details struct {
	Task             Task
	Raci             RaciMap
	SubTasks         []SubTaskDetails
	ProfilesImpacted []string
}
