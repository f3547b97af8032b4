package epio

import (
	"context"
	"fmt"
	"runtime/trace"
	"strings"

	"github.com/webriots/coro"
)

const (
	schedTraceTaskType  = "epio-scheduler"
	taskTraceRegionType = "epio-task"
	taskTraceCategory   = "epio"
)

// Task is a fire-and-forget coroutine held in a Scheduler's arena. It
// is created by Scheduler.Spawn and lives until its function returns,
// at which point its slot is recycled.
type Task struct {
	ctx     context.Context
	fn      func(context.Context, *Task)
	yield   func(Interest) struct{}
	suspend func() struct{}
	resume  func(struct{}) (Interest, bool)
	cancel  func()
	sched   *Scheduler
	slot    int
	started bool
	parked  bool
}

func newTask(sched *Scheduler, slot int, fn func(context.Context, *Task)) *Task {
	task := &Task{
		fn:    fn,
		sched: sched,
		slot:  slot,
	}

	resume, cancel := coro.New(
		func(yield func(Interest) struct{}, suspend func() struct{}) (z Interest) {
			region := trace.StartRegion(task.ctx, taskTraceRegionType)
			defer region.End()

			task.yield = yield
			task.suspend = suspend

			task.fn(task.ctx, task)

			return
		},
	)

	task.resume = resume
	task.cancel = cancel
	return task
}

// Go spawns fn as a new task on the same scheduler. The new task is
// independent of t; it first runs after t next suspends.
func (t *Task) Go(fn func(context.Context, *Task)) {
	t.Log("GO")
	t.sched.Spawn(fn)
}

// Group returns an ErrGroup whose tasks are spawned on t's scheduler.
func (t *Task) Group() ErrGroup {
	return newErrGroup(t)
}

// Slot returns the arena slot holding t. Slots are reused once a task
// completes.
func (t *Task) Slot() int {
	return t.slot
}

// Scheduler returns the scheduler running t.
func (t *Task) Scheduler() *Scheduler {
	return t.sched
}

// Context returns the context t was started with.
func (t *Task) Context() context.Context {
	return t.ctx
}

// wait suspends t until want becomes ready.
func (t *Task) wait(want Interest) {
	t.Logf("WAIT fd=%d events=%v", want.FD, want.Events)
	t.yield(want)
}

// park suspends t without registering any interest. It is resumed
// only after wake.
func (t *Task) park() {
	t.Log("PARK")
	t.parked = true
	t.suspend()
}

// wake queues a parked task to be resumed before the scheduler next
// blocks. t stays parked until then so readiness events for its stale
// registrations are ignored.
func (t *Task) wake() {
	t.Log("WAKE")
	t.sched.woken.PushBack(t.slot)
}

func (t *Task) Log(msg string) {
	if trace.IsEnabled() && t.ctx != nil {
		var sb strings.Builder
		taskpath(&sb, t)
		sb.WriteString(msg)
		trace.Log(t.ctx, taskTraceCategory, sb.String())
	}
}

func (t *Task) Logf(format string, args ...any) {
	if trace.IsEnabled() && t.ctx != nil {
		var sb strings.Builder
		taskpath(&sb, t)
		fmt.Fprintf(&sb, format, args...)
		trace.Log(t.ctx, taskTraceCategory, sb.String())
	}
}

func taskpath(sb *strings.Builder, t *Task) {
	fmt.Fprintf(sb, "%p|%d ", t, t.slot)
}
