package epio

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"
)

// Scheduler owns the task arena, the descriptor registry and the
// Poller. All of its methods, and everything tasks do, run on the
// goroutine calling Run.
type Scheduler struct {
	ctx      context.Context
	poller   Poller
	tasks    []*Task          // arena; nil entries are free
	free     deque.Deque[int] // recycled slots, reused LIFO
	fresh    deque.Deque[int] // spawned slots not yet polled, LIFO
	woken    deque.Deque[int] // parked slots ready to resume, FIFO
	registry *registry
	events   []Event
	log      zerolog.Logger
	metrics  *metrics
}

// New creates a Scheduler. Unless WithPoller is given it opens the
// platform Poller; failing to do so leaves nothing to drive tasks with
// and is returned as an error.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, fmt.Errorf("epio: register metrics: %w", err)
	}

	p := cfg.poller
	if p == nil {
		if p, err = newPoller(); err != nil {
			return nil, fmt.Errorf("epio: create poller: %w", err)
		}
	}

	return &Scheduler{
		ctx:      context.Background(),
		poller:   p,
		registry: newRegistry(),
		events:   make([]Event, cfg.maxEvents),
		log:      cfg.logger,
		metrics:  m,
	}, nil
}

// Spawn submits fn as a fire-and-forget task. The task is first polled
// by Run before it next blocks for readiness. Errors inside fn are fn's
// own to handle.
func (s *Scheduler) Spawn(fn func(context.Context, *Task)) {
	var slot int
	if s.free.Len() > 0 {
		slot = s.free.PopBack()
		s.tasks[slot] = newTask(s, slot, fn)
	} else {
		slot = len(s.tasks)
		s.tasks = append(s.tasks, newTask(s, slot, fn))
	}
	s.fresh.PushBack(slot)

	s.metrics.spawned.Inc()
	s.metrics.live.Inc()
}

// Live returns the number of tasks that have not completed.
func (s *Scheduler) Live() int {
	return len(s.tasks) - s.free.Len()
}

// Run drives tasks until none are left. Each iteration polls every
// newly spawned or woken task once, blocks for readiness, then resumes
// the task registered for each ready descriptor.
//
// Run returns nil when the arena is empty. Poller registration and
// wait failures (other than interruption, which is retried) are
// unrecoverable and returned as errors; the scheduler must not be
// used afterwards. ctx is handed to every task started by this call
// and is only checked between waits, since a wait never times out.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, tracer := trace.NewTask(ctx, schedTraceTaskType)
	defer tracer.End()

	s.ctx = ctx
	trace.Log(ctx, taskTraceCategory, "RUN")

	for {
		if err := s.drain(); err != nil {
			return err
		}

		if s.Live() == 0 {
			trace.Log(ctx, taskTraceCategory, "RUN DONE")
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.wait()
		if err != nil {
			return err
		}

		if err := s.dispatch(n); err != nil {
			return err
		}
	}
}

// Close releases the Poller and cancels every task still in the
// arena. It must not be called while Run is executing.
func (s *Scheduler) Close() error {
	for slot, t := range s.tasks {
		if t == nil {
			continue
		}
		t.cancel()
		s.tasks[slot] = nil
	}
	return s.poller.Close()
}

// drain polls each newly spawned task, and each task woken since the
// last drain, exactly once, registering the interest of those that
// suspend.
func (s *Scheduler) drain() error {
	for s.fresh.Len() > 0 || s.woken.Len() > 0 {
		var slot int
		if s.fresh.Len() > 0 {
			slot = s.fresh.PopBack()
		} else {
			slot = s.woken.PopFront()
		}

		t := s.tasks[slot]
		if t == nil {
			continue
		}
		t.parked = false

		want, suspended := s.poll(slot)
		if !suspended {
			continue
		}

		if err := s.register(slot, want); err != nil {
			return err
		}
	}
	return nil
}

// wait blocks for readiness, retrying interrupted waits.
func (s *Scheduler) wait() (int, error) {
	for {
		n, err := s.poller.Wait(s.events)
		if err == nil {
			s.metrics.waits.Inc()
			s.metrics.events.Add(float64(n))
			return n, nil
		}

		if errors.Is(err, ErrInterrupted) {
			s.metrics.interrupts.Inc()
			s.log.Debug().Msg("poller wait interrupted, retrying")
			continue
		}

		s.log.Error().Err(err).Msg("poller wait failed")
		return 0, fmt.Errorf("epio: poller wait: %w", err)
	}
}

// dispatch resumes the task registered for each of the first n events.
//
// When a resumed task suspends on a different descriptor, the new
// descriptor is registered and the one that fired keeps its registry
// entry and Poller registration until its owner closes it. Readiness
// on that stale registration resumes the task again.
func (s *Scheduler) dispatch(n int) error {
	for i := 0; i < n; i++ {
		fd := s.events[i].FD

		reg, ok := s.registry.lookup(fd)
		if !ok {
			s.skip(fd, "descriptor not registered")
			continue
		}

		t := s.tasks[reg.slot]
		switch {
		case t == nil || t.parked:
			s.skip(fd, "no runnable task")
			continue
		case !t.started:
			// A stale entry can name a slot reused by a task that drain
			// has not polled yet.
			s.skip(fd, "task not started")
			continue
		}

		want, suspended := s.poll(reg.slot)
		if !suspended {
			continue
		}

		if want.FD == fd && want.Events == reg.events {
			continue
		}

		if err := s.register(reg.slot, want); err != nil {
			return err
		}
	}
	return nil
}

// poll resumes the task in slot once. It reports the interest the task
// suspended with; suspended is false when the task completed (and its
// slot was recycled) or parked.
func (s *Scheduler) poll(slot int) (want Interest, suspended bool) {
	t := s.tasks[slot]
	if !t.started {
		t.started = true
		t.ctx = withTaskContext(s.ctx, t)
	}

	s.metrics.polls.Inc()

	want, ok := t.resume(struct{}{})
	if !ok {
		s.complete(slot)
		return Interest{}, false
	}

	if t.parked {
		return Interest{}, false
	}

	return want, true
}

func (s *Scheduler) complete(slot int) {
	s.tasks[slot] = nil
	s.free.PushBack(slot)

	s.metrics.completed.Inc()
	s.metrics.live.Dec()
	s.log.Debug().Int("slot", slot).Msg("task completed")
}

// register makes the registry and the Poller agree that slot waits on
// want.
func (s *Scheduler) register(slot int, want Interest) error {
	reg, ok := s.registry.lookup(want.FD)
	switch {
	case !ok:
		if err := s.poller.Add(want.FD, want.Events); err != nil {
			return s.fatal("add", want, err)
		}
		s.metrics.registrations.WithLabelValues("add").Inc()

	case reg.events != want.Events:
		if err := s.poller.Modify(want.FD, want.Events); err != nil {
			return s.fatal("modify", want, err)
		}
		s.metrics.registrations.WithLabelValues("modify").Inc()
	}

	s.registry.insert(want.FD, slot, want.Events)

	s.log.Debug().
		Int("slot", slot).
		Int("fd", want.FD).
		Stringer("events", want.Events).
		Msg("task suspended")
	return nil
}

func (s *Scheduler) fatal(op string, want Interest, err error) error {
	s.log.Error().
		Err(err).
		Str("op", op).
		Int("fd", want.FD).
		Stringer("events", want.Events).
		Msg("poller registration failed")
	return fmt.Errorf("epio: poller %s fd %d (%v): %w", op, want.FD, want.Events, err)
}

func (s *Scheduler) skip(fd int, reason string) {
	s.metrics.stale.Inc()
	s.log.Debug().Int("fd", fd).Str("reason", reason).Msg("readiness event skipped")
}
