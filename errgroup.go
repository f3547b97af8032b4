package epio

import "context"

// ErrGroup manages a group of tasks and collects the first error that
// occurs. It provides methods to spawn tasks and wait for all of them
// to complete.
type ErrGroup interface {
	// Go spawns a task running f with the group's context.
	Go(f func(context.Context) error)
	// GoWithContext spawns a task running f with ctx, which must
	// belong to the task that created the group.
	GoWithContext(ctx context.Context, f func(context.Context) error)
	// Wait parks task until every task in the group has completed and
	// returns the first error encountered.
	Wait(task *Task) error
}

// errGroup implements the ErrGroup interface. It tracks tasks,
// manages their lifecycles, and collects errors.
type errGroup struct {
	task   *Task           // The task that created this error group
	ctx    context.Context // Context shared by all tasks in the group
	cancel func(error)     // Function to cancel the context with an error
	wg     WaitGroup       // WaitGroup to track when all tasks are done
	err    error           // The first error encountered by any task
}

// newErrGroup creates a new error group associated with the given
// task. It creates a cancellable context that will be shared by all
// tasks in the group.
func newErrGroup(task *Task) *errGroup {
	ctx, cancel := context.WithCancelCause(task.Context())
	return &errGroup{task: task, ctx: ctx, cancel: cancel}
}

func (g *errGroup) Go(f func(context.Context) error) {
	g.spawn(g.ctx, f)
}

func (g *errGroup) GoWithContext(ctx context.Context, f func(context.Context) error) {
	if task := MustTaskFromContext(ctx); task != g.task {
		panic("epio: ctx task does not match errgroup task")
	}
	g.spawn(ctx, f)
}

// spawn starts a new task that runs f with ctx. The spawned task is
// retrievable from ctx inside f.
func (g *errGroup) spawn(ctx context.Context, f func(context.Context) error) {
	g.wg.Add(1)
	g.task.Go(func(_ context.Context, t *Task) {
		defer g.wg.Done()
		if err := f(withTaskContext(ctx, t)); err != nil && g.err == nil {
			g.err = err
			g.cancel(err)
		}
	})
}

func (g *errGroup) Wait(task *Task) error {
	g.wg.Wait(task)
	g.cancel(g.err)
	return g.err
}
