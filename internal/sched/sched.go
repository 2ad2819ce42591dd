// Package sched implements a cooperative interval scheduler: a single
// thread polls elapsed time against per-task intervals and runs due
// task bodies synchronously. There is no preemption; every body must
// return quickly so the other tasks keep their cadence.
package sched

// TaskFunc is a task body. It receives the poll timestamp in
// milliseconds and must not block.
type TaskFunc func(now uint32)

// Task owns the cadence bookkeeping for one body.
type Task struct {
	name     string
	interval uint32
	lastRun  uint32
	fn       TaskFunc
}

// Name returns the task's registration name.
func (t *Task) Name() string {
	return t.name
}

// Interval returns the task's configured interval in milliseconds.
func (t *Task) Interval() uint32 {
	return t.interval
}

// Scheduler dispatches registered tasks from a polling loop.
// Registration order is the priority order: when several tasks are due
// on the same poll they run in the order they were added.
type Scheduler struct {
	tasks []*Task
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add registers a task. The task first fires once its interval has
// elapsed after registration.
func (s *Scheduler) Add(name string, intervalMs uint32, fn TaskFunc) *Task {
	t := &Task{name: name, interval: intervalMs, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Poll runs every task whose interval has elapsed and stamps its
// last-run time with now. Elapsed time is computed with uint32
// subtraction, which stays correct across a single wrap of the
// millisecond counter. Returns the number of tasks run.
func (s *Scheduler) Poll(now uint32) int {
	ran := 0
	for _, t := range s.tasks {
		if now-t.lastRun >= t.interval {
			t.fn(now)
			t.lastRun = now
			ran++
		}
	}
	return ran
}
