package task

// Context owns the ordered task list for one routine execution plus
// the cursor marking the current task. Tasks are stored by value in a
// contiguous slice; the current task is always tasks[cursor], so a
// replacement can never leave a stale alias behind.
//
// Game-specific state (counters, visited locations) belongs in a
// struct that embeds Context.
type Context struct {
	tasks  []Task
	cursor int
}

// NewContext creates a context over a defensive copy of tasks.
func NewContext(tasks []Task) *Context {
	owned := make([]Task, len(tasks))
	copy(owned, tasks)
	return &Context{tasks: owned}
}

// CurrentTask returns a pointer to the current task, or nil if the
// context was created empty. The pointer stays valid until the cursor
// advances or the task is replaced.
func (c *Context) CurrentTask() *Task {
	if len(c.tasks) == 0 {
		return nil
	}
	return &c.tasks[c.cursor]
}

// CurrentTaskIndex returns the 0-based index of the current task.
func (c *Context) CurrentTaskIndex() int {
	return c.cursor
}

// TaskCount returns the total number of tasks.
func (c *Context) TaskCount() int {
	return len(c.tasks)
}

// Tasks returns a copy of the task list.
func (c *Context) Tasks() []Task {
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// HasNextTask reports whether a task follows the current one.
func (c *Context) HasNextTask() bool {
	return c.cursor < len(c.tasks)-1
}

// NextTask advances the cursor one step. A no-op on the last task.
// Returns the new current task, or nil if there was no next task.
func (c *Context) NextTask() *Task {
	if !c.HasNextTask() {
		return nil
	}
	c.cursor++
	return &c.tasks[c.cursor]
}

// ReplaceCurrentTask swaps the current task for a new one. Used to
// resolve dynamic tasks into concrete ones at runtime; replacement
// rather than mutation keeps the arena the single source of truth.
func (c *Context) ReplaceCurrentTask(t Task) {
	if len(c.tasks) == 0 {
		return
	}
	c.tasks[c.cursor] = t
}

// IsComplete reports whether the cursor is on the last task and that
// task has reached the Done phase.
func (c *Context) IsComplete() bool {
	if len(c.tasks) == 0 {
		return true
	}
	return c.cursor == len(c.tasks)-1 && c.tasks[c.cursor].IsComplete()
}
